package memory

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookstore-api/internal/query"
	"bookstore-api/pkg/errors"
)

func seed(t *testing.T) *Collection {
	t.Helper()
	c := NewCollection("books", "name")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, b := range []struct {
		name  string
		genre string
		price float64
		pages int
	}{
		{"Alpha", "Fantasy", 12, 100},
		{"Bravo", "Horror", 40, 250},
		{"Charlie", "Fantasy", 25, 320},
		{"Delta", "Crime", 8, 90},
		{"Echo", "Fantasy", 33, 410},
	} {
		require.NoError(t, c.InsertOne(bson.M{
			"_id":       primitive.NewObjectID(),
			"name":      b.name,
			"genre":     b.genre,
			"price":     b.price,
			"pageCount": b.pages,
			"publisher": bson.M{"name": "Pub " + b.name},
			"createdAt": base.Add(time.Duration(i) * time.Hour),
			"__v":       1,
		}))
	}
	return c
}

func names(docs []query.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d["name"].(string))
	}
	return out
}

func build(t *testing.T, raw string) *query.Spec {
	t.Helper()
	params, err := url.ParseQuery(raw)
	require.NoError(t, err)
	spec, err := query.Build(query.All(), params, query.WithSchema(query.Schema{
		"price":          query.Number,
		"pageCount":      query.Number,
		"createdAt":      query.Date,
		"publisher.name": query.String,
	}))
	require.NoError(t, err)
	return spec
}

func TestFind(t *testing.T) {
	c := seed(t)

	tests := []struct {
		raw  string
		want []string
	}{
		{raw: "", want: []string{"Echo", "Delta", "Charlie", "Bravo", "Alpha"}},
		{raw: "sort=-price&limit=2&page=1", want: []string{"Bravo", "Echo"}},
		{raw: "sort=-price&limit=2&page=2", want: []string{"Charlie", "Alpha"}},
		{raw: "sort=-price&limit=2&page=3", want: []string{"Delta"}},
		{raw: "sort=-price&limit=2&page=4", want: []string{}},
		{raw: "price[gt]=20&sort=price", want: []string{"Charlie", "Echo", "Bravo"}},
		{raw: "price[gte]=12&price[lt]=33&sort=name", want: []string{"Alpha", "Charlie"}},
		{raw: "genre=Fantasy&sort=genre,-price", want: []string{"Echo", "Charlie", "Alpha"}},
		{raw: "genre=Crime&genre=Horror&sort=name", want: []string{"Bravo", "Delta"}},
		{raw: "pageCount[lte]=100&sort=name", want: []string{"Alpha", "Delta"}},
		{raw: "publisher.name=Pub Delta", want: []string{"Delta"}},
		{raw: "createdAt[gte]=2026-01-01T03:00:00Z&sort=createdAt", want: []string{"Delta", "Echo"}},
		{raw: "colour=red", want: []string{}},
		{raw: "sort=name&page=9223372036854775807&limit=2", want: []string{}},
		{raw: "sort=name&page=2&limit=9223372036854775807", want: []string{}},
		{raw: "sort=name&limit=9223372036854775807", want: []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			docs, err := c.Find(build(t, tt.raw).Filter, build(t, tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(docs))
		})
	}
}

func TestFind_WindowOutOfRange(t *testing.T) {
	c := seed(t)

	for _, spec := range []*query.Spec{
		{Filter: bson.M{}, Skip: -4, Limit: 2},
		{Filter: bson.M{}, Skip: math.MaxInt64, Limit: 2},
		{Filter: bson.M{}, Skip: 3, Limit: math.MaxInt64},
	} {
		docs, err := c.Find(spec.Filter, spec)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(docs), 2)
	}

	docs, err := c.Find(bson.M{}, &query.Spec{Filter: bson.M{}, Skip: -4, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestFind_Projection(t *testing.T) {
	c := seed(t)

	docs, err := c.Find(bson.M{}, build(t, "fields=name,publisher.name&sort=name&limit=1"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Len(t, docs[0], 3)
	assert.Contains(t, docs[0], "_id")
	assert.Equal(t, "Pub Alpha", docs[0]["publisher"].(bson.M)["name"])

	docs, err = c.Find(bson.M{}, build(t, "fields=name,-_id&sort=name&limit=1"))
	require.NoError(t, err)
	assert.Equal(t, query.Document{"name": "Alpha"}, docs[0])

	docs, err = c.Find(bson.M{}, build(t, "sort=name&limit=1"))
	require.NoError(t, err)
	assert.NotContains(t, docs[0], "__v")
	assert.Contains(t, docs[0], "price")

	docs, err = c.Find(bson.M{}, build(t, "fields=-price,-publisher&sort=name&limit=1"))
	require.NoError(t, err)
	assert.NotContains(t, docs[0], "price")
	assert.NotContains(t, docs[0], "publisher")
	assert.Contains(t, docs[0], "__v")
}

func TestInsertOne_Unique(t *testing.T) {
	c := seed(t)

	err := c.InsertOne(bson.M{"_id": primitive.NewObjectID(), "name": "Alpha"})
	var dupErr *errors.DuplicateKeyError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "name", dupErr.Field)
	assert.Equal(t, "Alpha", dupErr.Value)
	assert.Equal(t, 5, c.Len())
}

func TestReplaceAndUpdate(t *testing.T) {
	c := seed(t)

	var doc bson.M
	found, err := c.FindOne(bson.M{"name": "Alpha"}, &doc)
	require.NoError(t, err)
	require.True(t, found)

	doc["name"] = "Bravo"
	_, err = c.ReplaceOne(bson.M{"_id": doc["_id"]}, doc)
	assert.Error(t, err, "renaming onto an existing name must violate uniqueness")

	doc["name"] = "Alpha"
	doc["price"] = 99.0
	ok, err := c.ReplaceOne(bson.M{"_id": doc["_id"]}, doc)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.UpdateOne(bson.M{"name": "Alpha"}, bson.M{"genre": "Poetry"})
	require.NoError(t, err)
	assert.True(t, ok)

	var got bson.M
	_, err = c.FindOne(bson.M{"_id": doc["_id"]}, &got)
	require.NoError(t, err)
	assert.Equal(t, 99.0, got["price"])
	assert.Equal(t, "Poetry", got["genre"])

	ok, err = c.UpdateOne(bson.M{"name": "Nope"}, bson.M{"genre": "Poetry"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteOne(t *testing.T) {
	c := seed(t)

	ok, err := c.DeleteOne(bson.M{"name": "Charlie"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, c.Len())

	ok, err = c.DeleteOne(bson.M{"name": "Charlie"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatches_Operators(t *testing.T) {
	doc := bson.M{"active": false, "tags": bson.A{"a", "b"}, "n": int32(3)}

	tests := []struct {
		name   string
		filter bson.M
		want   bool
	}{
		{"ne false on false", bson.M{"active": bson.M{"$ne": false}}, false},
		{"ne false on missing", bson.M{"missing": bson.M{"$ne": false}}, true},
		{"array element equality", bson.M{"tags": "b"}, true},
		{"cross numeric types", bson.M{"n": 3.0}, true},
		{"range on missing", bson.M{"missing": bson.M{"$gt": 1}}, false},
		{"range across classes", bson.M{"n": bson.M{"$gt": "1"}}, false},
		{"and", bson.M{"$and": []bson.M{{"n": 3}, {"active": false}}}, true},
		{"or", bson.M{"$or": bson.A{bson.M{"n": 4}, bson.M{"active": false}}}, true},
		{"nin", bson.M{"n": bson.M{"$nin": bson.A{1, 2}}}, true},
		{"exists", bson.M{"missing": bson.M{"$exists": false}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := matches(doc, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := matches(doc, bson.M{"n": bson.M{"$regex": "x"}})
	assert.Error(t, err)
	_, err = matches(doc, bson.M{"$where": "1"})
	assert.Error(t, err)
}
