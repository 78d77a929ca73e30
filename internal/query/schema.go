package query

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookstore-api/pkg/errors"
)

// Kind is the stored type of a filterable field.
type Kind int

const (
	String Kind = iota
	Number
	Bool
	Date
	ObjectID
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "Number"
	case Bool:
		return "Boolean"
	case Date:
		return "Date"
	case ObjectID:
		return "ObjectId"
	default:
		return "String"
	}
}

// Schema lists the filterable fields of a resource by dotted path.
type Schema map[string]Kind

func (s Schema) Has(field string) bool {
	_, ok := s[field]
	return ok
}

// Coerce converts a raw query-string value into the field's stored type.
// Fields outside the schema are kept as strings.
func (s Schema) Coerce(field, raw string) (any, error) {
	kind, ok := s[field]
	if !ok {
		return raw, nil
	}

	castErr := func(err error) error {
		return &errors.CastError{Path: field, Value: raw, Kind: kind.String(), Err: err}
	}

	switch kind {
	case Number:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, castErr(err)
		}
		return n, nil
	case Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, castErr(err)
		}
		return b, nil
	case Date:
		t, err := ParseDate(raw)
		if err != nil {
			return nil, castErr(err)
		}
		return t, nil
	case ObjectID:
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, castErr(err)
		}
		return id, nil
	default:
		return raw, nil
	}
}

// ParseDate accepts RFC 3339 timestamps and plain dates.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
