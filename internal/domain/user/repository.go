package user

import (
	"context"
	"time"

	"bookstore-api/internal/query"
)

// Repository is the credential store. Implementations run BeforeSave on
// every write and ActiveScope on every read.
type Repository interface {
	Create(ctx context.Context, user *User) error
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByResetToken(ctx context.Context, hashedToken string, now time.Time) (*User, error)
	Find(ctx context.Context, spec *query.Spec, includeInactive bool) ([]query.Document, error)
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
