package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is the authorization level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is an account document. Password holds the bcrypt hash once saved and
// is never serialized to JSON.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name                 string             `bson:"name" json:"name" validate:"required"`
	Email                string             `bson:"email" json:"email" validate:"required,strict_email"`
	Photo                string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Role                 Role               `bson:"role" json:"role" validate:"required,oneof=user admin"`
	Active               bool               `bson:"active" json:"-"`
	Password             string             `bson:"password" json:"-" validate:"required,min=8"`
	PasswordConfirm      string             `bson:"-" json:"-"`
	PasswordResetToken   string             `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires *time.Time         `bson:"passwordResetExpires,omitempty" json:"-"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
	Version              int                `bson:"__v" json:"-"`

	passwordChanged bool
}

// SetPassword stages a new plaintext password and its confirmation. The pair
// is checked and hashed by BeforeSave.
func (u *User) SetPassword(password, confirm string) {
	u.Password = password
	u.PasswordConfirm = confirm
	u.passwordChanged = true
}

func (u *User) PasswordChanged() bool { return u.passwordChanged }

func (u *User) SetResetToken(hashed string, expires time.Time) {
	u.PasswordResetToken = hashed
	u.PasswordResetExpires = &expires
}

func (u *User) ClearResetToken() {
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) HexID() string {
	return u.ID.Hex()
}
