package book

import (
	"context"

	"bookstore-api/internal/query"
)

// Repository is the catalog store. Implementations run BeforeSave on every write.
type Repository interface {
	Create(ctx context.Context, book *Book) error
	Save(ctx context.Context, book *Book) error
	FindByID(ctx context.Context, id string) (*Book, error)
	Find(ctx context.Context, spec *query.Spec) ([]query.Document, error)
	Delete(ctx context.Context, id string) error
}
