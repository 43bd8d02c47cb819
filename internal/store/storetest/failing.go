// Package storetest provides Store doubles for tests in other packages.
package storetest

import (
	"context"
	"errors"

	"github.com/isdelr/account-service/internal/store"
)

// ErrUnavailable is the cause carried by Failing's errors.
var ErrUnavailable = errors.New("connection refused")

// Failing wraps a Store and makes the selected operations fail with a
// backend error. Operations not selected are delegated.
type Failing struct {
	store.Store
	Find   bool
	Insert bool
	Update bool
}

func fail(op, collection string) error {
	return &store.Error{Op: op, Collection: collection, Kind: store.ErrBackend, Err: ErrUnavailable}
}

func (f *Failing) FindOne(ctx context.Context, collection string, filter store.Filter, out any) (bool, error) {
	if f.Find {
		return false, fail("find", collection)
	}
	return f.Store.FindOne(ctx, collection, filter, out)
}

func (f *Failing) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	if f.Insert {
		return "", fail("insert", collection)
	}
	return f.Store.InsertOne(ctx, collection, doc)
}

func (f *Failing) UpdateOne(ctx context.Context, collection string, filter store.Filter, update store.Update) error {
	if f.Update {
		return fail("update", collection)
	}
	return f.Store.UpdateOne(ctx, collection, filter, update)
}
