package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo is a Store backed by a MongoDB database. Each call is bounded by the
// configured timeout; a zero timeout leaves the caller's context untouched.
type Mongo struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

// NewMongo connects to uri and verifies the connection with a ping.
func NewMongo(ctx context.Context, uri, database string, timeout time.Duration) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout(timeout))
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Mongo{client: client, db: client.Database(database), timeout: timeout}, nil
}

func pingTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

func (m *Mongo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, m.timeout)
}

func (m *Mongo) FindOne(ctx context.Context, collection string, filter Filter, out any) (bool, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	res := m.db.Collection(collection).FindOne(ctx, bson.M(filter))
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, backendErr("find", collection, err)
	}
	if err := res.Decode(out); err != nil {
		return false, encodingErr("find", collection, err)
	}
	return true, nil
}

func (m *Mongo) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	d, err := toBSONDocument(doc)
	if err != nil {
		return "", encodingErr("insert", collection, err)
	}
	id := uuid.New().String()
	d[IDField] = id

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	if _, err := m.db.Collection(collection).InsertOne(ctx, d); err != nil {
		return "", backendErr("insert", collection, err)
	}
	return id, nil
}

func (m *Mongo) UpdateOne(ctx context.Context, collection string, filter Filter, update Update) error {
	u := toBSONUpdate(update)
	if len(u) == 0 {
		return nil
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()
	if _, err := m.db.Collection(collection).UpdateOne(ctx, bson.M(filter), u); err != nil {
		return backendErr("update", collection, err)
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func toBSONDocument(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	d := bson.M{}
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// toBSONUpdate renders an Update as $set / $unset operators, leaving out
// the identifier field.
func toBSONUpdate(update Update) bson.M {
	out := bson.M{}
	set := bson.M{}
	for k, v := range update.Set {
		if k != IDField {
			set[k] = v
		}
	}
	if len(set) > 0 {
		out["$set"] = set
	}
	unset := bson.M{}
	for _, k := range update.Unset {
		if k != IDField {
			unset[k] = ""
		}
	}
	if len(unset) > 0 {
		out["$unset"] = unset
	}
	return out
}
