package memory

import (
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"

	"bookstore-api/internal/query"
	"bookstore-api/pkg/errors"
)

// Collection is an in-process document collection with the subset of
// MongoDB semantics the repositories rely on. Documents are copied on the
// way in and out.
type Collection struct {
	name   string
	unique []string

	mu   sync.RWMutex
	docs []bson.M
}

func NewCollection(name string, unique ...string) *Collection {
	return &Collection{name: name, unique: unique}
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

func (c *Collection) InsertOne(v any) error {
	doc, err := toDocument(v)
	if err != nil {
		return err
	}
	if _, ok := doc["_id"]; !ok {
		return fmt.Errorf("%s: document has no _id", c.name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUnique(doc, -1); err != nil {
		return err
	}
	c.docs = append(c.docs, doc)
	return nil
}

// ReplaceOne swaps the first document matching filter for v.
func (c *Collection) ReplaceOne(filter bson.M, v any) (bool, error) {
	doc, err := toDocument(v)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.indexOf(filter)
	if err != nil || i < 0 {
		return false, err
	}
	if err := c.checkUnique(doc, i); err != nil {
		return false, err
	}
	c.docs[i] = doc
	return true, nil
}

// UpdateOne applies a $set to the first document matching filter.
func (c *Collection) UpdateOne(filter bson.M, set bson.M) (bool, error) {
	fields, err := toDocument(set)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.indexOf(filter)
	if err != nil || i < 0 {
		return false, err
	}

	updated, err := clone(c.docs[i])
	if err != nil {
		return false, err
	}
	for path, value := range fields {
		setPath(updated, path, value)
	}
	if err := c.checkUnique(updated, i); err != nil {
		return false, err
	}
	c.docs[i] = updated
	return true, nil
}

func (c *Collection) DeleteOne(filter bson.M) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, err := c.indexOf(filter)
	if err != nil || i < 0 {
		return false, err
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	return true, nil
}

// FindOne decodes the first document matching filter into out.
func (c *Collection) FindOne(filter bson.M, out any) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, err := c.indexOf(filter)
	if err != nil || i < 0 {
		return false, err
	}
	return true, fromDocument(c.docs[i], out)
}

// Find evaluates filter then the sort, window and projection of spec.
func (c *Collection) Find(filter bson.M, spec *query.Spec) ([]query.Document, error) {
	c.mu.RLock()
	var hits []bson.M
	for _, doc := range c.docs {
		ok, err := matches(doc, filter)
		if err != nil {
			c.mu.RUnlock()
			return nil, err
		}
		if ok {
			cp, err := clone(doc)
			if err != nil {
				c.mu.RUnlock()
				return nil, err
			}
			hits = append(hits, cp)
		}
	}
	c.mu.RUnlock()

	sortDocs(hits, spec.Sort)

	start := len(hits)
	if spec.Skip < int64(len(hits)) {
		start = int(max(spec.Skip, 0))
	}
	end := len(hits)
	if spec.Limit > 0 && spec.Limit < int64(end-start) {
		end = start + int(spec.Limit)
	}

	out := make([]query.Document, 0, end-start)
	for _, doc := range hits[start:end] {
		out = append(out, project(doc, spec.Projection))
	}
	return out, nil
}

func (c *Collection) indexOf(filter bson.M) (int, error) {
	for i, doc := range c.docs {
		ok, err := matches(doc, filter)
		if err != nil {
			return -1, err
		}
		if ok {
			return i, nil
		}
	}
	return -1, nil
}

// checkUnique must be called with the write lock held. skip is the index
// of the document being replaced.
func (c *Collection) checkUnique(doc bson.M, skip int) error {
	for _, field := range c.unique {
		value, ok := lookup(doc, field)
		if !ok {
			continue
		}
		for i, other := range c.docs {
			if i == skip {
				continue
			}
			if existing, ok := lookup(other, field); ok && equal(existing, value) {
				return &errors.DuplicateKeyError{Field: field, Value: fmt.Sprint(value)}
			}
		}
	}
	return nil
}

func sortDocs(docs []bson.M, order bson.D) {
	if len(order) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, e := range order {
			a, _ := lookup(docs[i], e.Key)
			b, _ := lookup(docs[j], e.Key)
			r, _ := compare(a, b)
			if r == 0 {
				continue
			}
			if isNegative(e.Value) {
				return r > 0
			}
			return r < 0
		}
		return false
	})
}

func isNegative(v any) bool {
	class, n := normalize(v)
	return class == classNumber && n.(float64) < 0
}

func toDocument(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromDocument(doc bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func clone(doc bson.M) (bson.M, error) {
	return toDocument(doc)
}
