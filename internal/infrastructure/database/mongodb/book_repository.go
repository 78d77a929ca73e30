package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainBook "bookstore-api/internal/domain/book"
	"bookstore-api/internal/query"
)

// BookRepository implements domainBook.Repository on a MongoDB collection.
type BookRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewBookRepository(db *mongo.Database) *BookRepository {
	return &BookRepository{
		coll: db.Collection(BooksCollection),
		now:  time.Now,
	}
}

func (r *BookRepository) Create(ctx context.Context, b *domainBook.Book) error {
	if err := domainBook.BeforeSave(b, r.now().UTC()); err != nil {
		return err
	}

	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return writeError(err, "failed to insert book", "name", b.Name)
	}
	return nil
}

func (r *BookRepository) Save(ctx context.Context, b *domainBook.Book) error {
	if err := domainBook.BeforeSave(b, r.now().UTC()); err != nil {
		return err
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return writeError(err, "failed to save book", "name", b.Name)
	}
	if res.MatchedCount == 0 {
		return domainBook.ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) FindByID(ctx context.Context, id string) (*domainBook.Book, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var b domainBook.Book
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domainBook.ErrBookNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find book")
	}
	return &b, nil
}

func (r *BookRepository) Find(ctx context.Context, spec *query.Spec) ([]query.Document, error) {
	docs, err := find(ctx, r.coll, spec.Filter, spec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list books")
	}
	return docs, nil
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errors.Wrap(err, "failed to delete book")
	}
	if res.DeletedCount == 0 {
		return domainBook.ErrBookNotFound
	}
	return nil
}
