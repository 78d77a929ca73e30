package mongodb

import (
	"regexp"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	appErrors "bookstore-api/pkg/errors"
)

var dupKeyPattern = regexp.MustCompile(`dup key: \{ ?([A-Za-z0-9_.]+): "?([^"}]*?)"? ?\}`)

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, &appErrors.CastError{Path: "_id", Value: id, Kind: "ObjectId", Err: err}
	}
	return oid, nil
}

// writeError maps unique index violations to DuplicateKeyError and wraps
// anything else with a stack. field and value describe the document being
// written when the server message cannot be parsed.
func writeError(err error, msg, field, value string) error {
	if !mongo.IsDuplicateKeyError(err) {
		return errors.Wrap(err, msg)
	}

	if m := dupKeyPattern.FindStringSubmatch(err.Error()); m != nil {
		field, value = m[1], m[2]
	}
	return &appErrors.DuplicateKeyError{Field: field, Value: value, Err: err}
}
