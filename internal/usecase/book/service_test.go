package book

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookstore-api/internal/config"
	domainBook "bookstore-api/internal/domain/book"
	"bookstore-api/internal/infrastructure/database/memory"
	appErrors "bookstore-api/pkg/errors"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BookChanged(ctx context.Context, event string, b *domainBook.Book) {
	m.Called(ctx, event, b)
}

func ptr[T any](v T) *T { return &v }

func input(name string, price float64) *BookInput {
	return &BookInput{
		Name:      ptr(name),
		Author:    ptr("Author"),
		Genre:     ptr("Fiction"),
		Price:     ptr(price),
		PageCount: ptr(320),
		Summary:   ptr("A summary"),
		Language:  ptr("English"),
	}
}

func newService(t *testing.T) (*Service, *mockNotifier) {
	t.Helper()
	notifier := &mockNotifier{}
	t.Cleanup(func() { notifier.AssertExpectations(t) })
	return NewService(memory.NewBookRepository(memory.NewStore()), notifier, &config.Config{}), notifier
}

func TestCreate_AppliesDefaultsAndNotifies(t *testing.T) {
	svc, notifier := newService(t)
	notifier.On("BookChanged", mock.Anything, domainBook.EventCreated, mock.AnythingOfType("*book.Book")).Once()

	b, err := svc.Create(context.Background(), input("Dune", 18))
	require.NoError(t, err)

	assert.False(t, b.ID.IsZero())
	assert.True(t, *b.Available)
	assert.False(t, *b.BestSeller)
	assert.Equal(t, domainBook.DefaultRatingAverage, *b.RatingAverage)
	assert.Zero(t, b.RatingQuantity)
}

func TestCreate_Validation(t *testing.T) {
	svc, notifier := newService(t)
	ctx := context.Background()

	in := input("Dune", 18)
	in.PriceDiscount = NewNullableFloat(18)
	_, err := svc.Create(ctx, in)
	appErr := appErrors.Classify(err)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	assert.Equal(t, "Discount price (18) should be below regular price", appErr.Message)

	in = input("Dune", 18)
	in.RatingAverage = ptr(6.0)
	_, err = svc.Create(ctx, in)
	assert.Equal(t, domainBook.MsgRatingRange, appErrors.Classify(err).Message)

	_, err = svc.Create(ctx, &BookInput{})
	assert.Contains(t, appErrors.Classify(err).Message, "Invalid input data.")

	notifier.AssertNotCalled(t, "BookChanged", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_RevalidatesMergedBook(t *testing.T) {
	svc, notifier := newService(t)
	notifier.On("BookChanged", mock.Anything, mock.Anything, mock.Anything)
	ctx := context.Background()

	b, err := svc.Create(ctx, input("Dune", 18))
	require.NoError(t, err)

	_, err = svc.Update(ctx, b.HexID(), &BookInput{PriceDiscount: NewNullableFloat(25)})
	assert.Equal(t, http.StatusBadRequest, appErrors.Classify(err).StatusCode)

	updated, err := svc.Update(ctx, b.HexID(), &BookInput{Price: ptr(30.0), PriceDiscount: NewNullableFloat(25)})
	require.NoError(t, err)
	assert.Equal(t, 30.0, updated.Price)
	assert.Equal(t, 25.0, *updated.PriceDiscount)
	assert.Equal(t, "Dune", updated.Name)

	notifier.AssertCalled(t, "BookChanged", mock.Anything, domainBook.EventUpdated, mock.Anything)
}

func TestUpdate_NullClearsDiscount(t *testing.T) {
	svc, notifier := newService(t)
	notifier.On("BookChanged", mock.Anything, mock.Anything, mock.Anything)
	ctx := context.Background()

	in := input("Dune", 18)
	in.PriceDiscount = NewNullableFloat(10)
	b, err := svc.Create(ctx, in)
	require.NoError(t, err)

	var absent BookInput
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Dune Messiah"}`), &absent))
	assert.False(t, absent.PriceDiscount.Set)
	renamed, err := svc.Update(ctx, b.HexID(), &absent)
	require.NoError(t, err)
	require.NotNil(t, renamed.PriceDiscount)
	assert.Equal(t, 10.0, *renamed.PriceDiscount)

	var patch BookInput
	require.NoError(t, json.Unmarshal([]byte(`{"price":8,"priceDiscount":null}`), &patch))
	assert.True(t, patch.PriceDiscount.Set)

	updated, err := svc.Update(ctx, b.HexID(), &patch)
	require.NoError(t, err)
	assert.Equal(t, 8.0, updated.Price)
	assert.Nil(t, updated.PriceDiscount)

	stored, err := svc.Get(ctx, b.HexID())
	require.NoError(t, err)
	assert.Nil(t, stored.PriceDiscount)
}

func TestGetAndDelete(t *testing.T) {
	svc, notifier := newService(t)
	notifier.On("BookChanged", mock.Anything, mock.Anything, mock.Anything)
	ctx := context.Background()

	_, err := svc.Get(ctx, "123")
	assert.Equal(t, "Invalid _id: 123.", appErrors.Classify(err).Message)

	b, err := svc.Create(ctx, input("Dune", 18))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, b.HexID()))
	notifier.AssertCalled(t, "BookChanged", mock.Anything, domainBook.EventDeleted, mock.Anything)

	_, err = svc.Get(ctx, b.HexID())
	assert.ErrorIs(t, err, ErrBookNotFound)

	err = svc.Delete(ctx, b.HexID())
	assert.Equal(t, "No book found with that ID", appErrors.Classify(err).Message)
}

func TestList(t *testing.T) {
	svc, notifier := newService(t)
	notifier.On("BookChanged", mock.Anything, mock.Anything, mock.Anything)
	ctx := context.Background()

	prices := map[string]float64{"A": 10, "B": 50, "C": 30, "D": 20, "E": 40}
	for name, price := range prices {
		_, err := svc.Create(ctx, input(name, price))
		require.NoError(t, err)
	}

	docs, err := svc.List(ctx, url.Values{"sort": {"-price"}, "limit": {"2"}, "page": {"1"}})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "B", docs[0]["name"])
	assert.Equal(t, "E", docs[1]["name"])
	assert.NotContains(t, docs[0], "__v")

	docs, err = svc.List(ctx, url.Values{"price[gt]": {"20"}, "price[lte]": {"40"}, "sort": {"price"}})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "C", docs[0]["name"])
	assert.Equal(t, "E", docs[1]["name"])

	_, err = svc.List(ctx, url.Values{"price[gt]": {"cheap"}})
	assert.Equal(t, "Invalid price: cheap.", appErrors.Classify(err).Message)
}
