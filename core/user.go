package core

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned when setting a blank password
var ErrEmptyPassword = errors.New("password cannot be empty")

// User represents a user document in the users collection
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Email           string             `bson:"email" json:"email"`
	Password        string             `bson:"password" json:"-"` // bcrypt hash, never returned in JSON
	Role            UserRole           `bson:"role" json:"role"`
	Avatar          string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	IsEmailVerified bool               `bson:"isEmailVerified" json:"isEmailVerified"`
	LastLogin       *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SetPassword replaces the stored hash with a bcrypt hash of plain
func (u *User) SetPassword(plain string) error {
	if plain == "" {
		return ErrEmptyPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword reports whether plain matches the stored hash
func (u *User) CheckPassword(plain string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// Touch maintains the document timestamps: CreatedAt is set once, UpdatedAt on every call.
func (u *User) Touch(now time.Time) {
	now = now.UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}
