package user

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
)

const (
	MsgNameRequired            = "A user must have a Name."
	MsgEmailRequired           = "A user must have an Email."
	MsgEmailInvalid            = "Please provide a valid Email."
	MsgRoleInvalid             = "User role should be either: user or admin"
	MsgPasswordRequired        = "Please enter your password."
	MsgPasswordTooShort        = "Password must be at least 8 characters."
	MsgPasswordConfirmRequired = "Please confirm your password."
	MsgPasswordMismatch        = "Password does not match!"
)
