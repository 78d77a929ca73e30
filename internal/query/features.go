package query

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"bookstore-api/pkg/errors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
	MaxLimit     = 1000
	VersionField = "__v"
)

var (
	reservedKeys = []string{"sort", "limit", "page", "fields"}

	operators = map[string]string{
		"gt":  "$gt",
		"gte": "$gte",
		"lt":  "$lt",
		"lte": "$lte",
	}

	filterKey = regexp.MustCompile(`^([^\[\]]+)(?:\[([^\[\]]*)\])?$`)
	fieldPath = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

type Option func(*Features)

// WithSchema coerces filter values to the stored field types.
func WithSchema(schema Schema) Option {
	return func(f *Features) { f.schema = schema }
}

// Strict rejects filter fields missing from the schema.
func Strict(strict bool) Option {
	return func(f *Features) { f.strict = strict }
}

// Features narrows a Spec from untrusted query-string parameters. Stages can
// be chained in any combination; the first failure sticks and turns every
// later stage into a no-op.
type Features struct {
	spec   *Spec
	params url.Values
	schema Schema
	strict bool
	err    error
}

func New(base *Spec, params url.Values, opts ...Option) *Features {
	f := &Features{spec: base.Clone(), params: params}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Build runs every stage in the usual order.
func Build(base *Spec, params url.Values, opts ...Option) (*Spec, error) {
	return New(base, params, opts...).Filter().Sort().Paginate().Fields().Spec()
}

func (f *Features) Spec() (*Spec, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.spec, nil
}

func (f *Features) Err() error { return f.err }

// Filter turns every non-reserved key into a constraint. `field=v` is an
// equality match, repeated keys become $in, and `field[op]=v` with op in
// gt|gte|lt|lte becomes a range predicate.
func (f *Features) Filter() *Features {
	if f.err != nil {
		return f
	}

	keys := make([]string, 0, len(f.params))
	for key := range f.params {
		if !slices.Contains(reservedKeys, key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	equals := map[string][]any{}
	ranges := map[string]bson.M{}
	var order []string

	for _, key := range keys {
		field, op, err := parseFilterKey(key)
		if err != nil {
			f.err = err
			return f
		}
		if f.strict && !f.schema.Has(field) {
			f.err = errors.BadRequest(fmt.Sprintf("Unknown filter field: %s", field))
			return f
		}
		if _, seen := equals[field]; !seen {
			if _, seen := ranges[field]; !seen {
				order = append(order, field)
			}
		}

		values := f.params[key]
		if op == "" {
			for _, raw := range values {
				v, err := f.schema.Coerce(field, raw)
				if err != nil {
					f.err = err
					return f
				}
				equals[field] = append(equals[field], v)
			}
			continue
		}

		if len(values) == 0 {
			continue
		}
		v, err := f.schema.Coerce(field, values[len(values)-1])
		if err != nil {
			f.err = err
			return f
		}
		if ranges[field] == nil {
			ranges[field] = bson.M{}
		}
		ranges[field][op] = v
	}

	for _, field := range order {
		f.spec.Filter[field] = condition(equals[field], ranges[field])
	}
	return f
}

func condition(equals []any, ranges bson.M) any {
	if len(ranges) == 0 {
		if len(equals) == 1 {
			return equals[0]
		}
		return bson.M{"$in": equals}
	}

	switch len(equals) {
	case 0:
	case 1:
		ranges["$eq"] = equals[0]
	default:
		ranges["$in"] = equals
	}
	return ranges
}

func parseFilterKey(key string) (field, op string, err error) {
	m := filterKey.FindStringSubmatch(key)
	if m == nil || !fieldPath.MatchString(m[1]) {
		return "", "", errors.BadRequest(fmt.Sprintf("Invalid filter field: %s", key))
	}
	if !strings.Contains(key, "[") {
		return m[1], "", nil
	}

	op, ok := operators[m[2]]
	if !ok {
		return "", "", errors.BadRequest(fmt.Sprintf("Invalid filter operator: %s", m[2]))
	}
	return m[1], op, nil
}

// Sort orders by the comma-separated `sort` list, `-` meaning descending,
// falling back to newest first.
func (f *Features) Sort() *Features {
	if f.err != nil {
		return f
	}

	var sort bson.D
	for _, name := range splitList(f.params.Get("sort")) {
		dir := 1
		if strings.HasPrefix(name, "-") {
			dir = -1
			name = name[1:]
		}
		if !fieldPath.MatchString(name) {
			f.err = errors.BadRequest(fmt.Sprintf("Invalid sort field: %s", name))
			return f
		}
		sort = append(sort, bson.E{Key: name, Value: dir})
	}

	if len(sort) == 0 {
		sort = bson.D{{Key: "createdAt", Value: -1}}
	}
	f.spec.Sort = sort
	return f
}

// Paginate windows the result by `page` and `limit`. Limit is capped at
// MaxLimit; a page past the addressable range yields an empty window.
func (f *Features) Paginate() *Features {
	if f.err != nil {
		return f
	}

	page := positiveInt(f.params.Get("page"), DefaultPage)
	limit := min(positiveInt(f.params.Get("limit"), DefaultLimit), MaxLimit)

	skip := int64(math.MaxInt64)
	if page-1 <= math.MaxInt64/limit {
		skip = (page - 1) * limit
	}

	f.spec.Skip = skip
	f.spec.Limit = limit
	return f
}

// Fields projects onto the comma-separated `fields` list. A list made only of
// `-field` entries excludes those fields instead. Without a list only the
// version field is hidden.
func (f *Features) Fields() *Features {
	if f.err != nil {
		return f
	}

	names := splitList(f.params.Get("fields"))
	if len(names) == 0 {
		f.spec.Projection = bson.D{{Key: VersionField, Value: 0}}
		return f
	}

	excludeAll := true
	for _, name := range names {
		if !strings.HasPrefix(name, "-") {
			excludeAll = false
			break
		}
	}

	var projection bson.D
	for _, name := range names {
		value := 1
		if strings.HasPrefix(name, "-") {
			name = name[1:]
			value = 0
			// _id is the only field that may be excluded from an inclusion list.
			if !excludeAll && name != "_id" {
				f.err = errors.BadRequest("Cannot mix included and excluded fields")
				return f
			}
		}
		if !fieldPath.MatchString(name) {
			f.err = errors.BadRequest(fmt.Sprintf("Invalid field: %s", name))
			return f
		}
		projection = append(projection, bson.E{Key: name, Value: value})
	}

	f.spec.Projection = projection
	return f
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func positiveInt(raw string, fallback int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
