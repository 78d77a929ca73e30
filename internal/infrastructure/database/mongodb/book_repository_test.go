package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	domainBook "bookstore-api/internal/domain/book"
	"bookstore-api/internal/query"
	appErrors "bookstore-api/pkg/errors"
)

const booksNS = "bookstore.books"

func newBook() *domainBook.Book {
	return &domainBook.Book{
		Name:      "Dune",
		Author:    "Frank Herbert",
		Genre:     "Science Fiction",
		Price:     18,
		PageCount: 412,
		Summary:   "Spice.",
		Language:  "English",
	}
}

func TestBookRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create applies defaults", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewBookRepository(mt.DB)

		b := newBook()
		require.NoError(mt, repo.Create(ctx, b))
		assert.False(mt, b.ID.IsZero())
		assert.Equal(mt, domainBook.DefaultRatingAverage, *b.RatingAverage)
	})

	mt.Run("create duplicate name falls back to document value", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))
		repo := NewBookRepository(mt.DB)

		err := repo.Create(ctx, newBook())
		var dupErr *appErrors.DuplicateKeyError
		require.ErrorAs(mt, err, &dupErr)
		assert.Equal(mt, "name", dupErr.Field)
		assert.Equal(mt, "Dune", dupErr.Value)
	})

	mt.Run("find passes spec through", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, booksNS, mtest.FirstBatch,
			bson.D{{Key: "name", Value: "Dune"}, {Key: "price", Value: 18.0}},
		))
		repo := NewBookRepository(mt.DB)

		spec, err := query.Build(query.All(), map[string][]string{"price[gt]": {"10"}, "fields": {"name,price"}})
		require.NoError(mt, err)

		docs, err := repo.Find(ctx, spec)
		require.NoError(mt, err)
		require.Len(mt, docs, 1)
		assert.Equal(mt, "Dune", docs[0]["name"])
	})

	mt.Run("find by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, booksNS, mtest.FirstBatch))
		repo := NewBookRepository(mt.DB)

		_, err := repo.FindByID(ctx, primitive.NewObjectID().Hex())
		assert.ErrorIs(mt, err, domainBook.ErrBookNotFound)
	})

	mt.Run("delete", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		repo := NewBookRepository(mt.DB)

		assert.NoError(mt, repo.Delete(ctx, primitive.NewObjectID().Hex()))
	})
}

func TestFindOptions(t *testing.T) {
	spec := &query.Spec{
		Sort:       bson.D{{Key: "price", Value: -1}},
		Skip:       20,
		Limit:      10,
		Projection: bson.D{{Key: "__v", Value: 0}},
	}

	opts := findOptions(spec)
	assert.Equal(t, spec.Sort, opts.Sort)
	assert.Equal(t, int64(20), *opts.Skip)
	assert.Equal(t, int64(10), *opts.Limit)
	assert.Equal(t, spec.Projection, opts.Projection)
}
