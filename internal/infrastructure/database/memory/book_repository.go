package memory

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"

	domainBook "bookstore-api/internal/domain/book"
	"bookstore-api/internal/query"
)

type BookRepository struct {
	coll *Collection
	now  func() time.Time
}

func NewBookRepository(store *Store) *BookRepository {
	return &BookRepository{coll: store.Books, now: time.Now}
}

func (r *BookRepository) Create(_ context.Context, b *domainBook.Book) error {
	if err := domainBook.BeforeSave(b, r.now().UTC()); err != nil {
		return err
	}
	return r.coll.InsertOne(b)
}

func (r *BookRepository) Save(_ context.Context, b *domainBook.Book) error {
	if err := domainBook.BeforeSave(b, r.now().UTC()); err != nil {
		return err
	}

	ok, err := r.coll.ReplaceOne(bson.M{"_id": b.ID}, b)
	if err != nil {
		return err
	}
	if !ok {
		return domainBook.ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) FindByID(_ context.Context, id string) (*domainBook.Book, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var b domainBook.Book
	found, err := r.coll.FindOne(bson.M{"_id": oid}, &b)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find book")
	}
	if !found {
		return nil, domainBook.ErrBookNotFound
	}
	return &b, nil
}

func (r *BookRepository) Find(_ context.Context, spec *query.Spec) ([]query.Document, error) {
	docs, err := r.coll.Find(spec.Filter, spec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list books")
	}
	return docs, nil
}

func (r *BookRepository) Delete(_ context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	ok, err := r.coll.DeleteOne(bson.M{"_id": oid})
	if err != nil {
		return errors.Wrap(err, "failed to delete book")
	}
	if !ok {
		return domainBook.ErrBookNotFound
	}
	return nil
}
