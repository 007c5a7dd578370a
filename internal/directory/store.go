package directory

import (
	"context"
	"errors"
)

var (
	ErrPersonNotFound = errors.New("person not found")
	ErrPersonExists   = errors.New("person already exists")
)

// Store is the read side the scheduler depends on plus the administrative
// writes used by seeding and staff tooling. Provider listings must come back
// in ascending id order so that provider assignment is deterministic.
type Store interface {
	GetPerson(ctx context.Context, id string) (*Person, error)

	// ListProviders returns providers only. An empty specialty means all
	// specialties.
	ListProviders(ctx context.Context, specialty string) ([]Person, error)

	CreatePerson(ctx context.Context, p Person) error
	UpdatePerson(ctx context.Context, p Person) error
	DeletePerson(ctx context.Context, id string) error
}
