package validator

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"bookstore-api/pkg/errors"
)

var (
	validate   *validator.Validate
	emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
)

// Messages maps "<field>.<tag>" (or just "<field>") to a client-facing message.
type Messages map[string]string

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(fieldName)

	if err := validate.RegisterValidation("strict_email", validateEmail); err != nil {
		panic(err)
	}
}

// ValidateStruct checks s against its validate tags and reports every
// violation as a *errors.ValidationError using msgs for the wording.
func ValidateStruct(s any, msgs Messages) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}

	out := &errors.ValidationError{Errors: make([]errors.FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		field := fieldPath(fe)
		out.Errors = append(out.Errors, errors.FieldError{
			Field:   field,
			Tag:     fe.Tag(),
			Value:   fe.Value(),
			Message: msgs.lookup(field, fe),
		})
	}
	return out
}

// fieldName reports the document name of a struct field: the json name, then
// the bson name for fields hidden from JSON, then the lower-camel Go name.
func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "bson"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return strings.ToLower(fld.Name[:1]) + fld.Name[1:]
}

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(strings.ToLower(email)))
}

func validateEmail(fl validator.FieldLevel) bool {
	return IsValidEmail(fl.Field().String())
}

// fieldPath drops the struct name from the namespace: "Book.publisher.name" -> "publisher.name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func (m Messages) lookup(field string, fe validator.FieldError) string {
	if msg, ok := m[field+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := m[field]; ok {
		return msg
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
