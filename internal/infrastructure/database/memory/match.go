package memory

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Value classes in MongoDB's cross-type sort order.
const (
	classNull = iota
	classNumber
	classString
	classObjectID
	classBool
	classDate
	classOther
)

func normalize(v any) (int, any) {
	switch x := v.(type) {
	case nil:
		return classNull, nil
	case int:
		return classNumber, float64(x)
	case int32:
		return classNumber, float64(x)
	case int64:
		return classNumber, float64(x)
	case float32:
		return classNumber, float64(x)
	case float64:
		return classNumber, x
	case string:
		return classString, x
	case primitive.ObjectID:
		return classObjectID, x.Hex()
	case bool:
		return classBool, x
	case time.Time:
		return classDate, x.UnixMilli()
	case primitive.DateTime:
		return classDate, int64(x)
	default:
		return classOther, v
	}
}

// compare orders a and b. ok is false when the values are of different
// classes, in which case the result follows the class order.
func compare(a, b any) (result int, ok bool) {
	ca, va := normalize(a)
	cb, vb := normalize(b)
	if ca != cb {
		if ca < cb {
			return -1, false
		}
		return 1, false
	}

	switch ca {
	case classNull:
		return 0, true
	case classNumber:
		return cmpOrdered(va.(float64), vb.(float64)), true
	case classString, classObjectID:
		return strings.Compare(va.(string), vb.(string)), true
	case classBool:
		x, y := va.(bool), vb.(bool)
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		default:
			return 1, true
		}
	case classDate:
		return cmpOrdered(va.(int64), vb.(int64)), true
	default:
		if reflect.DeepEqual(va, vb) {
			return 0, true
		}
		return 0, false
	}
}

func cmpOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func equal(a, b any) bool {
	r, ok := compare(a, b)
	return ok && r == 0
}

// equalsField applies equality the way the server does: an array field
// matches when any element matches.
func equalsField(value, want any) bool {
	if items, ok := asList(value); ok {
		for _, item := range items {
			if equal(item, want) {
				return true
			}
		}
	}
	return equal(value, want)
}

func matches(doc bson.M, filter bson.M) (bool, error) {
	for key, cond := range filter {
		switch key {
		case "$and", "$or":
			clauses, ok := asList(cond)
			if !ok {
				return false, fmt.Errorf("%s requires an array", key)
			}
			ok, err := matchClauses(doc, key, clauses)
			if err != nil || !ok {
				return false, err
			}
			continue
		}
		if strings.HasPrefix(key, "$") {
			return false, fmt.Errorf("unsupported top-level operator %s", key)
		}

		value, found := lookup(doc, key)
		ok, err := matchCondition(value, found, cond)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func matchClauses(doc bson.M, op string, clauses []any) (bool, error) {
	for _, clause := range clauses {
		sub, ok := asDoc(clause)
		if !ok {
			return false, fmt.Errorf("%s clauses must be documents", op)
		}
		ok, err := matches(doc, sub)
		if err != nil {
			return false, err
		}
		if op == "$or" && ok {
			return true, nil
		}
		if op == "$and" && !ok {
			return false, nil
		}
	}
	return op == "$and", nil
}

func matchCondition(value any, found bool, cond any) (bool, error) {
	ops, isOps := operatorDoc(cond)
	if !isOps {
		return equalsField(value, cond), nil
	}

	for op, arg := range ops {
		var ok bool
		switch op {
		case "$eq":
			ok = equalsField(value, arg)
		case "$ne":
			ok = !equalsField(value, arg)
		case "$in", "$nin":
			items, isList := asList(arg)
			if !isList {
				return false, fmt.Errorf("%s requires an array", op)
			}
			for _, item := range items {
				if equalsField(value, item) {
					ok = true
					break
				}
			}
			if op == "$nin" {
				ok = !ok
			}
		case "$gt", "$gte", "$lt", "$lte":
			if !found {
				return false, nil
			}
			r, comparable := compare(value, arg)
			if !comparable {
				return false, nil
			}
			ok = (op == "$gt" && r > 0) || (op == "$gte" && r >= 0) ||
				(op == "$lt" && r < 0) || (op == "$lte" && r <= 0)
		case "$exists":
			want, _ := arg.(bool)
			ok = found == want
		default:
			return false, fmt.Errorf("unsupported operator %s", op)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// operatorDoc reports whether cond is an operator expression like {$gt: 3}.
func operatorDoc(cond any) (bson.M, bool) {
	doc, ok := asDoc(cond)
	if !ok || len(doc) == 0 {
		return nil, false
	}
	for key := range doc {
		if !strings.HasPrefix(key, "$") {
			return nil, false
		}
	}
	return doc, true
}

func asDoc(v any) (bson.M, bool) {
	switch x := v.(type) {
	case bson.M:
		return x, true
	case map[string]any:
		return x, true
	case bson.D:
		return x.Map(), true
	default:
		return nil, false
	}
}

func asList(v any) ([]any, bool) {
	switch x := v.(type) {
	case []any:
		return x, true
	case bson.A:
		return x, true
	case []bson.M:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out, true
	case []string:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out, true
	default:
		return nil, false
	}
}

func lookup(doc bson.M, path string) (any, bool) {
	var current any = doc
	for _, part := range strings.Split(path, ".") {
		d, ok := asDoc(current)
		if !ok {
			return nil, false
		}
		current, ok = d[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func setPath(doc bson.M, path string, value any) {
	parts := strings.Split(path, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := doc[part].(bson.M)
		if !ok {
			next = bson.M{}
			doc[part] = next
		}
		doc = next
	}
	doc[parts[len(parts)-1]] = value
}

func deletePath(doc bson.M, path string) {
	parts := strings.Split(path, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := asDoc(doc[part])
		if !ok {
			return
		}
		doc = next
	}
	delete(doc, parts[len(parts)-1])
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	default:
		class, n := normalize(v)
		return class != classNumber || n.(float64) != 0
	}
}

// project applies an inclusion or exclusion projection to a copy of doc.
func project(doc bson.M, projection bson.D) bson.M {
	if len(projection) == 0 {
		return doc
	}

	inclusion := false
	for _, e := range projection {
		if e.Key != "_id" && truthy(e.Value) {
			inclusion = true
			break
		}
	}

	if !inclusion {
		for _, e := range projection {
			deletePath(doc, e.Key)
		}
		return doc
	}

	out := bson.M{}
	if id, ok := doc["_id"]; ok {
		out["_id"] = id
	}
	for _, e := range projection {
		if !truthy(e.Value) {
			delete(out, e.Key)
			continue
		}
		if v, ok := lookup(doc, e.Key); ok {
			setPath(out, e.Key, v)
		}
	}
	return out
}
