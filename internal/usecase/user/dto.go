package user

import (
	domainUser "bookstore-api/internal/domain/user"
)

type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Photo           string `json:"photo"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// UpdateMeRequest carries the profile fields a user may change on their own
// account. The password fields are only decoded so that they can be refused.
type UpdateMeRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Photo           *string `json:"photo"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"passwordConfirm"`
}

// UpdateUserRequest is the management update. Role and Active are reserved
// for administrators.
type UpdateUserRequest struct {
	Name            *string          `json:"name"`
	Email           *string          `json:"email"`
	Photo           *string          `json:"photo"`
	Role            *domainUser.Role `json:"role"`
	Active          *bool            `json:"active"`
	Password        *string          `json:"password"`
	PasswordConfirm *string          `json:"passwordConfirm"`
}

// AuthResult is returned by every flow that issues a session.
type AuthResult struct {
	User  *domainUser.User
	Token string
}

func applyProfile(u *domainUser.User, name, email, photo *string) bool {
	changed := false
	if name != nil {
		u.Name = *name
		changed = true
	}
	if email != nil {
		u.Email = *email
		changed = true
	}
	if photo != nil {
		u.Photo = *photo
		changed = true
	}
	return changed
}
