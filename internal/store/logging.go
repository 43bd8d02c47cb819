package store

import (
	"context"

	"github.com/rs/zerolog/log"
)

type logged struct {
	inner Store
}

// WithLogging wraps s so that every failed operation is logged with full
// detail. Results are passed through unchanged.
func WithLogging(s Store) Store {
	return &logged{inner: s}
}

func (l *logged) FindOne(ctx context.Context, collection string, filter Filter, out any) (bool, error) {
	found, err := l.inner.FindOne(ctx, collection, filter, out)
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("Error fetching from db")
	}
	return found, err
}

func (l *logged) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	id, err := l.inner.InsertOne(ctx, collection, doc)
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("Error inserting to db")
	}
	return id, err
}

func (l *logged) UpdateOne(ctx context.Context, collection string, filter Filter, update Update) error {
	err := l.inner.UpdateOne(ctx, collection, filter, update)
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("Error updating db")
	}
	return err
}

func (l *logged) Close(ctx context.Context) error {
	return l.inner.Close(ctx)
}
