package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// SQLite keeps documents as JSON text in the documents table created by
// database.Migrate. Filters and updates are evaluated by SQLite's JSON functions.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an open, migrated database.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) FindOne(ctx context.Context, collection string, filter Filter, out any) (bool, error) {
	where, args, err := whereClause(collection, filter)
	if err != nil {
		return false, encodingErr("find", collection, err)
	}

	var body string
	err = s.db.QueryRowContext(ctx, "SELECT body FROM documents WHERE "+where+" LIMIT 1", args...).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, backendErr("find", collection, err)
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return false, encodingErr("find", collection, err)
	}
	return true, nil
}

func (s *SQLite) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	d, err := toDocument(doc)
	if err != nil {
		return "", encodingErr("insert", collection, err)
	}
	id := uuid.New().String()
	d[IDField] = id

	body, err := json.Marshal(d)
	if err != nil {
		return "", encodingErr("insert", collection, err)
	}

	stmt, err := s.db.PrepareContext(ctx, "INSERT INTO documents(collection, id, body) VALUES(?, ?, ?)")
	if err != nil {
		return "", backendErr("insert", collection, err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, collection, id, string(body)); err != nil {
		return "", backendErr("insert", collection, err)
	}
	return id, nil
}

func (s *SQLite) UpdateOne(ctx context.Context, collection string, filter Filter, update Update) error {
	if update.Empty() {
		return nil
	}
	where, whereArgs, err := whereClause(collection, filter)
	if err != nil {
		return encodingErr("update", collection, err)
	}

	setKeys := withoutID(sortedKeys(update.Set))
	unsetKeys := withoutID(update.Unset)
	if len(setKeys) == 0 && len(unsetKeys) == 0 {
		return nil
	}

	expr := "body"
	var args []any
	if len(setKeys) > 0 {
		var b strings.Builder
		b.WriteString("json_set(body")
		for _, k := range setKeys {
			v, err := json.Marshal(update.Set[k])
			if err != nil {
				return encodingErr("update", collection, err)
			}
			b.WriteString(", ?, json(?)")
			args = append(args, jsonPath(k), string(v))
		}
		b.WriteString(")")
		expr = b.String()
	}
	if len(unsetKeys) > 0 {
		var b strings.Builder
		b.WriteString("json_remove(" + expr)
		for _, k := range unsetKeys {
			b.WriteString(", ?")
			args = append(args, jsonPath(k))
		}
		b.WriteString(")")
		expr = b.String()
	}

	query := "UPDATE documents SET body = " + expr +
		" WHERE rowid = (SELECT rowid FROM documents WHERE " + where + " LIMIT 1)"
	if _, err := s.db.ExecContext(ctx, query, append(args, whereArgs...)...); err != nil {
		return backendErr("update", collection, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close(context.Context) error {
	return s.db.Close()
}

// whereClause builds an AND of json_extract equality tests. Keys are sorted so
// the generated SQL is stable for a given filter shape.
func whereClause(collection string, filter Filter) (string, []any, error) {
	clauses := []string{"collection = ?"}
	args := []any{collection}
	for _, k := range sortedKeys(filter) {
		v, err := json.Marshal(filter[k])
		if err != nil {
			return "", nil, err
		}
		clauses = append(clauses, "json_extract(body, ?) = json_extract(?, '$')")
		args = append(args, jsonPath(k), string(v))
	}
	return strings.Join(clauses, " AND "), args, nil
}

func jsonPath(field string) string {
	return `$."` + strings.ReplaceAll(field, `"`, `\"`) + `"`
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// withoutID drops the identifier field, which updates may not touch.
func withoutID(keys []string) []string {
	out := keys[:0:0]
	for _, k := range keys {
		if k != IDField {
			out = append(out, k)
		}
	}
	return out
}
