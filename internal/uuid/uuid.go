// Package uuid wraps google/uuid so that record identifiers can be bound
// from gin URI and query parameters.
package uuid

import (
	"fmt"

	google_uuid "github.com/google/uuid"
)

type UUID struct {
	google_uuid.UUID
}

var Nil UUID

func New() UUID {
	return UUID{google_uuid.New()}
}

// NewString returns a new random document identifier.
func NewString() string {
	return google_uuid.NewString()
}

// Parse parses a record identifier.
func Parse(s string) (UUID, error) {
	parsed, err := google_uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("%q is not a valid record ID: %w", s, err)
	}

	return UUID{parsed}, nil
}

// UnmarshalParam implements gin's BindUnmarshaler. An empty parameter
// is the Nil UUID.
func (u *UUID) UnmarshalParam(p string) error {
	if p == "" {
		*u = Nil
		return nil
	}

	parsed, err := Parse(p)
	if err != nil {
		return err
	}

	*u = parsed
	return nil
}
