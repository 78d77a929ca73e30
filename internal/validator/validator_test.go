package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore-api/pkg/errors"
)

type publisher struct {
	Name string `json:"name" validate:"required"`
}

type sample struct {
	Email     string    `json:"email" validate:"required,strict_email"`
	Role      string    `json:"role" validate:"oneof=user admin"`
	Count     int       `json:"count" validate:"gte=0"`
	Publisher publisher `json:"publisher"`
}

func TestValidateStruct(t *testing.T) {
	msgs := Messages{
		"email.required": "Please provide your email",
		"email":          "Please provide a valid email",
	}

	err := ValidateStruct(&sample{Email: "nope", Role: "root", Count: -1}, msgs)
	require.Error(t, err)

	var vErr *errors.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Errors, 4)

	assert.Equal(t, "email", vErr.Errors[0].Field)
	assert.Equal(t, "Please provide a valid email", vErr.Errors[0].Message)
	assert.Equal(t, "role must be one of: user admin", vErr.Errors[1].Message)
	assert.Equal(t, "count must be at least 0", vErr.Errors[2].Message)
	assert.Equal(t, "publisher.name", vErr.Errors[3].Field)
}

func TestValidateStruct_TagSpecificMessage(t *testing.T) {
	err := ValidateStruct(&sample{Role: "user", Publisher: publisher{Name: "x"}}, Messages{
		"email.required": "Please provide your email",
	})

	var vErr *errors.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Errors, 1)
	assert.Equal(t, "Please provide your email", vErr.Message())
}

func TestValidateStruct_Valid(t *testing.T) {
	err := ValidateStruct(&sample{Email: "a@b.com", Role: "admin", Publisher: publisher{Name: "x"}}, nil)
	assert.NoError(t, err)
}

type account struct {
	Password string `bson:"password" json:"-" validate:"required,min=8"`
	Confirm  string `bson:"-" json:"-" validate:"required"`
}

func TestValidateStruct_FieldsHiddenFromJSON(t *testing.T) {
	err := ValidateStruct(&account{Password: "short"}, Messages{
		"password.min": "Password must be at least 8 characters.",
	})

	var vErr *errors.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Len(t, vErr.Errors, 2)

	assert.Equal(t, "password", vErr.Errors[0].Field)
	assert.Equal(t, "Password must be at least 8 characters.", vErr.Errors[0].Message)
	assert.Equal(t, "confirm", vErr.Errors[1].Field)
	assert.Equal(t, "confirm is required", vErr.Errors[1].Message)
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail(" A@B.com "))
	assert.False(t, IsValidEmail("a@b"))
	assert.False(t, IsValidEmail(""))
}
