package user

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bookstore-api/internal/query"
	"bookstore-api/internal/validator"
	"bookstore-api/pkg/errors"
	"bookstore-api/pkg/utils"
)

// PasswordHasher is the one-way hash used for stored passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

var messages = validator.Messages{
	"name.required":     MsgNameRequired,
	"email.required":    MsgEmailRequired,
	"email":             MsgEmailInvalid,
	"role":              MsgRoleInvalid,
	"password.required": MsgPasswordRequired,
	"password.min":      MsgPasswordTooShort,
}

// QuerySchema lists the user fields list endpoints may filter on.
var QuerySchema = query.Schema{
	"_id":       query.ObjectID,
	"name":      query.String,
	"email":     query.String,
	"photo":     query.String,
	"role":      query.String,
	"active":    query.Bool,
	"createdAt": query.Date,
	"updatedAt": query.Date,
}

// privateFields never leave the store in list responses.
var privateFields = []string{"password", "passwordConfirm", "passwordResetToken", "passwordResetExpires", "active"}

// BeforeSave runs before every insert or replace of a user document: it
// normalizes input, applies defaults, validates, and hashes a newly set
// password. The plaintext confirmation is dropped on success.
func BeforeSave(u *User, hasher PasswordHasher, now time.Time) error {
	u.Name = utils.SanitizeText(u.Name)
	u.Email = utils.SanitizeEmail(u.Email)
	u.Photo = utils.SanitizeText(u.Photo)

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
		u.Active = true
		u.CreatedAt = now
	}
	if u.Role == "" {
		u.Role = RoleUser
	}

	if err := validator.ValidateStruct(u, messages); err != nil {
		return err
	}
	if u.passwordChanged {
		if err := checkConfirmation(u); err != nil {
			return err
		}

		hashed, err := hasher.Hash(u.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		u.Password = hashed
		u.passwordChanged = false
	}

	u.PasswordConfirm = ""
	u.UpdatedAt = now
	u.Version++
	return nil
}

func checkConfirmation(u *User) error {
	switch {
	case u.PasswordConfirm == "":
		return errors.NewValidationError("passwordConfirm", "required", MsgPasswordConfirmRequired, "")
	case u.PasswordConfirm != u.Password:
		return errors.NewValidationError("passwordConfirm", "eqfield", MsgPasswordMismatch, "")
	}
	return nil
}

// ActiveScope is applied to every user read. Deactivated accounts are
// invisible unless includeInactive is set.
func ActiveScope(filter bson.M, includeInactive bool) bson.M {
	if includeInactive {
		return filter
	}

	active := bson.M{"active": bson.M{"$ne": false}}
	if len(filter) == 0 {
		return active
	}
	if _, ok := filter["active"]; ok {
		return bson.M{"$and": []bson.M{filter, active}}
	}

	scoped := make(bson.M, len(filter)+1)
	for k, v := range filter {
		scoped[k] = v
	}
	scoped["active"] = active["active"]
	return scoped
}

// StripPrivate removes secrets from a projected document.
func StripPrivate(doc query.Document) query.Document {
	for _, field := range privateFields {
		delete(doc, field)
	}
	return doc
}

// IsPasswordField reports whether a request body key touches credentials.
func IsPasswordField(key string) bool {
	return strings.HasPrefix(key, "password")
}
