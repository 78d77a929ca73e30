package query

import (
	"maps"

	"go.mongodb.org/mongo-driver/bson"
)

// Document is a single projected record as returned by list queries.
type Document = bson.M

// Spec is a store-neutral description of a collection read.
type Spec struct {
	Filter     bson.M
	Sort       bson.D
	Skip       int64
	Limit      int64
	Projection bson.D
}

// All is the unconstrained base query over a collection.
func All() *Spec {
	return &Spec{Filter: bson.M{}}
}

// Where starts from a fixed filter instead of the whole collection.
func Where(filter bson.M) *Spec {
	s := All()
	maps.Copy(s.Filter, filter)
	return s
}

func (s *Spec) Clone() *Spec {
	if s == nil {
		return All()
	}

	out := &Spec{
		Filter: make(bson.M, len(s.Filter)),
		Skip:   s.Skip,
		Limit:  s.Limit,
	}
	maps.Copy(out.Filter, s.Filter)
	if s.Sort != nil {
		out.Sort = append(bson.D(nil), s.Sort...)
	}
	if s.Projection != nil {
		out.Projection = append(bson.D(nil), s.Projection...)
	}
	return out
}
