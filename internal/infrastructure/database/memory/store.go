package memory

import (
	"context"
)

const (
	usersCollection = "users"
	booksCollection = "books"
)

// Store holds the collections behind DATABASE_URI=memory://. State lives
// for the life of the process.
type Store struct {
	Users *Collection
	Books *Collection
}

func NewStore() *Store {
	return &Store{
		Users: NewCollection(usersCollection, "email"),
		Books: NewCollection(booksCollection, "name"),
	}
}

func (s *Store) Health(ctx context.Context) error {
	return ctx.Err()
}
