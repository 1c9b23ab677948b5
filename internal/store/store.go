// Package store is the keyed record store conversation state lives in.
// Records are JSON documents addressed by (namespace, key).
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no record exists for a key.
var ErrNotFound = errors.New("record not found")

// Store persists opaque records by namespace and key.
type Store interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
	Delete(ctx context.Context, namespace, key string) error
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, "|", `\|`)

// Key builds a composite key such as sender|branch. Separators inside a
// part are escaped, so distinct parts never produce the same key.
func Key(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = keyEscaper.Replace(p)
	}
	return strings.Join(escaped, "|")
}

// Records is a typed JSON view over one namespace of a Store.
type Records[T any] struct {
	store     Store
	namespace string
}

// NewRecords binds a namespace of s to the record type T.
func NewRecords[T any](s Store, namespace string) *Records[T] {
	return &Records[T]{store: s, namespace: namespace}
}

// Get loads and decodes the record stored under key.
func (r *Records[T]) Get(ctx context.Context, key string) (T, error) {
	var out T
	raw, err := r.store.Get(ctx, r.namespace, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s/%s: %w", r.namespace, key, err)
	}
	return out, nil
}

// Put encodes and stores value under key.
func (r *Records[T]) Put(ctx context.Context, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", r.namespace, key, err)
	}
	return r.store.Put(ctx, r.namespace, key, raw)
}

// Delete removes the record under key. Deleting a missing key is not an error.
func (r *Records[T]) Delete(ctx context.Context, key string) error {
	return r.store.Delete(ctx, r.namespace, key)
}
