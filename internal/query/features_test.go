package query

import (
	"math"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookstore-api/pkg/errors"
)

var bookSchema = Schema{
	"_id":       ObjectID,
	"name":      String,
	"genre":     String,
	"price":     Number,
	"available": Bool,
	"createdAt": Date,
}

func mustParse(t *testing.T, raw string) url.Values {
	t.Helper()
	v, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return v
}

func TestBuild_Defaults(t *testing.T) {
	spec, err := Build(All(), url.Values{})
	require.NoError(t, err)

	assert.Empty(t, spec.Filter)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, spec.Sort)
	assert.Equal(t, int64(0), spec.Skip)
	assert.Equal(t, int64(DefaultLimit), spec.Limit)
	assert.Equal(t, bson.D{{Key: "__v", Value: 0}}, spec.Projection)
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		raw       string
		wantSkip  int64
		wantLimit int64
	}{
		{raw: "page=3&limit=10", wantSkip: 20, wantLimit: 10},
		{raw: "page=1&limit=2", wantSkip: 0, wantLimit: 2},
		{raw: "page=abc&limit=xyz", wantSkip: 0, wantLimit: 50},
		{raw: "page=0&limit=-4", wantSkip: 0, wantLimit: 50},
		{raw: "page=2", wantSkip: 50, wantLimit: 50},
		{raw: "page=2&limit=9223372036854775807", wantSkip: MaxLimit, wantLimit: MaxLimit},
		{raw: "page=9223372036854775807&limit=2", wantSkip: math.MaxInt64, wantLimit: 2},
		{raw: "page=99999999999999999999&limit=2", wantSkip: 0, wantLimit: 2},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			spec, err := New(All(), mustParse(t, tt.raw)).Paginate().Spec()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSkip, spec.Skip)
			assert.Equal(t, tt.wantLimit, spec.Limit)
		})
	}
}

func TestFilter_Operators(t *testing.T) {
	spec, err := New(All(), mustParse(t, "price[gt]=20&price[lte]=50&genre=Fantasy&sort=-price&page=2"),
		WithSchema(bookSchema)).Filter().Spec()
	require.NoError(t, err)

	assert.Equal(t, bson.M{
		"price": bson.M{"$gt": 20.0, "$lte": 50.0},
		"genre": "Fantasy",
	}, spec.Filter)
}

func TestFilter_OperatorTokensInValuesAreLiteral(t *testing.T) {
	spec, err := New(All(), mustParse(t, "name=gte"), WithSchema(bookSchema)).Filter().Spec()
	require.NoError(t, err)
	assert.Equal(t, bson.M{"name": "gte"}, spec.Filter)
}

func TestFilter_RepeatedKeysBecomeIn(t *testing.T) {
	spec, err := New(All(), mustParse(t, "genre=Fantasy&genre=Horror"), WithSchema(bookSchema)).Filter().Spec()
	require.NoError(t, err)
	assert.Equal(t, bson.M{"genre": bson.M{"$in": []any{"Fantasy", "Horror"}}}, spec.Filter)
}

func TestFilter_EqualityCombinedWithRange(t *testing.T) {
	spec, err := New(All(), mustParse(t, "price=30&price[gte]=10"), WithSchema(bookSchema)).Filter().Spec()
	require.NoError(t, err)
	assert.Equal(t, bson.M{"price": bson.M{"$gte": 10.0, "$eq": 30.0}}, spec.Filter)
}

func TestFilter_Coercion(t *testing.T) {
	id := primitive.NewObjectID()
	spec, err := New(All(), mustParse(t, "available=false&_id="+id.Hex()+"&createdAt[gte]=2024-01-02&unknown=7"),
		WithSchema(bookSchema)).Filter().Spec()
	require.NoError(t, err)

	assert.Equal(t, false, spec.Filter["available"])
	assert.Equal(t, id, spec.Filter["_id"])
	assert.Equal(t, bson.M{"$gte": time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}, spec.Filter["createdAt"])
	assert.Equal(t, "7", spec.Filter["unknown"])
}

func TestFilter_CastFailure(t *testing.T) {
	_, err := New(All(), mustParse(t, "price[gt]=cheap"), WithSchema(bookSchema)).Filter().Spec()
	require.Error(t, err)

	var castErr *errors.CastError
	require.ErrorAs(t, err, &castErr)
	assert.Equal(t, "price", castErr.Path)
	assert.Equal(t, "Invalid price: cheap.", errors.Classify(err).Message)
}

func TestFilter_MalformedKeys(t *testing.T) {
	for _, raw := range []string{
		"price[ne]=3",
		"price[]=3",
		"price[gt][lt]=3",
		"$where=1",
		"name.$gt=1",
		"price]=3",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := New(All(), mustParse(t, raw), WithSchema(bookSchema)).Filter().Spec()
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, errors.Classify(err).StatusCode)
		})
	}
}

func TestFilter_Strict(t *testing.T) {
	params := mustParse(t, "colour=red")

	spec, err := New(All(), params, WithSchema(bookSchema)).Filter().Spec()
	require.NoError(t, err)
	assert.Equal(t, bson.M{"colour": "red"}, spec.Filter)

	_, err = New(All(), params, WithSchema(bookSchema), Strict(true)).Filter().Spec()
	require.Error(t, err)
	assert.Equal(t, "Unknown filter field: colour", errors.Classify(err).Message)
}

func TestFilter_KeepsBaseConstraints(t *testing.T) {
	base := Where(bson.M{"active": bson.M{"$ne": false}})
	spec, err := New(base, mustParse(t, "name=x")).Filter().Spec()
	require.NoError(t, err)

	assert.Equal(t, bson.M{"active": bson.M{"$ne": false}, "name": "x"}, spec.Filter)
	assert.Len(t, base.Filter, 1, "base spec must not be mutated")
}

func TestSort(t *testing.T) {
	spec, err := New(All(), mustParse(t, "sort=-price, name")).Sort().Spec()
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "price", Value: -1}, {Key: "name", Value: 1}}, spec.Sort)

	_, err = New(All(), mustParse(t, "sort=$natural")).Sort().Spec()
	assert.Error(t, err)
}

func TestFields(t *testing.T) {
	tests := []struct {
		raw  string
		want bson.D
	}{
		{raw: "fields=name,price", want: bson.D{{Key: "name", Value: 1}, {Key: "price", Value: 1}}},
		{raw: "fields=name,-_id", want: bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 0}}},
		{raw: "fields=-summary,-description", want: bson.D{{Key: "summary", Value: 0}, {Key: "description", Value: 0}}},
		{raw: "fields=", want: bson.D{{Key: "__v", Value: 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			spec, err := New(All(), mustParse(t, tt.raw)).Fields().Spec()
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.Projection)
		})
	}

	_, err := New(All(), mustParse(t, "fields=name,-price")).Fields().Spec()
	assert.Error(t, err)
}

func TestFeatures_FirstErrorSticks(t *testing.T) {
	f := New(All(), mustParse(t, "price[eq]=1&sort=name&page=2"), WithSchema(bookSchema))
	f.Filter().Sort().Paginate().Fields()

	require.Error(t, f.Err())
	spec, err := f.Spec()
	assert.Nil(t, spec)
	assert.Equal(t, "Invalid filter operator: eq", errors.Classify(err).Message)
	assert.Nil(t, f.spec.Sort)
	assert.Zero(t, f.spec.Limit)
}

func TestFeatures_StagesAreIndependent(t *testing.T) {
	params := mustParse(t, "sort=name&limit=5&fields=name")

	spec, err := New(All(), params).Sort().Spec()
	require.NoError(t, err)
	assert.Zero(t, spec.Limit)
	assert.Nil(t, spec.Projection)
	assert.Empty(t, spec.Filter)
}
