// Package store implements the document store that holds all financial
// records and user settings.
//
// Documents are addressed by slash separated paths. Paths with an odd
// number of segments name collections, paths with an even number of
// segments name documents:
//
//	users/{userId}/financialData/{YYYY-MM}/entries   (collection)
//	users/{userId}/userConfig/settings               (document)
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidPath  = errors.New("invalid document path")
	ErrInvalidField = errors.New("invalid filter field")
)

// Document is a stored document.
type Document struct {
	ID        string         // Last path segment
	Path      string         // Full path of the document
	Data      map[string]any // Fields of the document
	CreatedAt time.Time
}

// SetOptions configures Set.
type SetOptions struct {
	// Merge keeps existing fields that are not part of the new data.
	Merge bool
}

// Filter matches documents whose field equals the value.
type Filter struct {
	Field string
	Value string
}

// Eq returns an equality filter.
func Eq(field, value string) Filter {
	return Filter{Field: field, Value: value}
}

// Unsubscribe tears down a subscription. After it returns, the
// subscription callbacks are not invoked anymore. It must not be called
// from within a callback of the same subscription.
type Unsubscribe func()

// Store is the capability surface of a document store.
type Store interface {
	// Get returns the document at path or ErrNotFound.
	Get(ctx context.Context, path string) (Document, error)

	// Set writes the document at path, creating it if needed.
	Set(ctx context.Context, path string, data map[string]any, opts SetOptions) error

	// Update merges fields into an existing document or returns ErrNotFound.
	Update(ctx context.Context, path string, fields map[string]any) error

	// Delete removes an existing document or returns ErrNotFound.
	Delete(ctx context.Context, path string) error

	// Add creates a document with a generated ID in the collection.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)

	// Query returns the documents of a collection matching all filters
	// in the order they were created.
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)

	// Subscribe delivers the current state of a document or collection
	// to onChange and does so again after every change. Failures to load
	// the state are passed to onError.
	Subscribe(ctx context.Context, path string, onChange func([]Document), onError func(error)) (Unsubscribe, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close(ctx context.Context) error
}

var fieldName = regexp.MustCompile("^[A-Za-z][A-Za-z0-9_]*$")

func validateFilters(filters []Filter) error {
	for _, f := range filters {
		if !fieldName.MatchString(f.Field) {
			return fmt.Errorf("%w '%s'", ErrInvalidField, f.Field)
		}
	}

	return nil
}

func segments(path string) ([]string, error) {
	s := strings.Split(path, "/")
	for _, segment := range s {
		if segment == "" {
			return nil, fmt.Errorf("%w '%s'", ErrInvalidPath, path)
		}
	}

	return s, nil
}

// IsCollection reports whether path names a collection.
func IsCollection(path string) bool {
	s, err := segments(path)
	return err == nil && len(s)%2 == 1
}

func documentPath(path string) (parent, id string, err error) {
	s, err := segments(path)
	if err != nil {
		return "", "", err
	}

	if len(s)%2 != 0 {
		return "", "", fmt.Errorf("%w '%s': not a document", ErrInvalidPath, path)
	}

	return strings.Join(s[:len(s)-1], "/"), s[len(s)-1], nil
}

func collectionPath(path string) error {
	s, err := segments(path)
	if err != nil {
		return err
	}

	if len(s)%2 != 1 {
		return fmt.Errorf("%w '%s': not a collection", ErrInvalidPath, path)
	}

	return nil
}

// merge returns a shallow merge of base and fields. base is not modified.
func merge(base, fields map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(fields))
	for k, v := range base {
		merged[k] = v
	}

	for k, v := range fields {
		merged[k] = v
	}

	return merged
}

// subscribe registers a watch on path with the broker, loading state
// from s.
func subscribe(ctx context.Context, b *Broker, s Store, path string, onChange func([]Document), onError func(error)) (Unsubscribe, error) {
	if _, err := segments(path); err != nil {
		return nil, err
	}

	snapshot := func(ctx context.Context) ([]Document, error) {
		if IsCollection(path) {
			return s.Query(ctx, path)
		}

		doc, err := s.Get(ctx, path)
		if errors.Is(err, ErrNotFound) {
			return []Document{}, nil
		}

		if err != nil {
			return nil, err
		}

		return []Document{doc}, nil
	}

	return b.watch(ctx, path, snapshot, onChange, onError), nil
}
