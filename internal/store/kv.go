package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Backend is a durable document store partitioned by namespace.
type Backend interface {
	// Get returns the document stored under (namespace, key).
	// found is false when the key has never been written.
	Get(ctx context.Context, namespace, key string) (value []byte, found bool, err error)

	// Set replaces the document stored under (namespace, key).
	Set(ctx context.Context, namespace, key string, value []byte) error
}

// KV is the persistent store contract consumed by the engine.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// DefaultNamespace is the namespace used by the application's documents.
const DefaultNamespace = "style-mirror"

// Namespace binds a backend to one namespace.
func Namespace(b Backend, namespace string) KV {
	return &bucket{backend: b, namespace: namespace}
}

// bucket adapts Backend to KV and classifies every failure as a *Error.
type bucket struct {
	backend   Backend
	namespace string
}

func (b *bucket) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, found, err := b.backend.Get(ctx, b.namespace, key)
	if err != nil {
		return nil, false, b.classify(ErrCodeRead, key, err)
	}
	return value, found, nil
}

func (b *bucket) Set(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return b.classify(ErrCodeWrite, key, fmt.Errorf("value is not a JSON document"))
	}
	if err := b.backend.Set(ctx, b.namespace, key, value); err != nil {
		return b.classify(ErrCodeWrite, key, err)
	}
	return nil
}

// classify wraps err unless a backend already produced a *Error.
func (b *bucket) classify(code ErrorCode, key string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Code: code, Namespace: b.namespace, Key: key, Err: err}
}
