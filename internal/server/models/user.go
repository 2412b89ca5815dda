// Package models defines the identity records persisted by the store.
package models

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/identitystore/internal/cryptox"
)

// DefaultAvatar is the object key used until a user uploads their own.
const DefaultAvatar = "avatar/default_avatar.jpeg"

// User is an account. Email is unique and is the login name.
// RoleID always references an existing Role.
type User struct {
	ID          string
	Email       string
	Name        string
	WeChat      string
	Avatar      *string
	JobTitle    JobTitle
	IsActive    bool
	IsStaff     bool
	IsSuperuser bool
	RoleID      int64
	RegTime     time.Time
	Password    string
	LastLogin   *time.Time
}

// NewUser returns a User carrying the column defaults.
func NewUser(email, name, wechat string, roleID int64) *User {
	avatar := DefaultAvatar
	return &User{
		Email:    email,
		Name:     name,
		WeChat:   wechat,
		Avatar:   &avatar,
		IsActive: true,
		IsStaff:  true,
		RoleID:   roleID,
	}
}

// SetPassword replaces the stored hash. The caller persists the user.
func (u *User) SetPassword(h cryptox.PasswordHasher, raw string) error {
	enc, err := h.Hash(raw)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = enc
	return nil
}

// CheckPassword reports whether raw matches the stored hash. A mismatch is
// (false, nil); a stored value that cannot be parsed is an error.
func (u *User) CheckPassword(h cryptox.PasswordHasher, raw string) (bool, error) {
	return h.Verify(u.Password, raw)
}

// IsAdmin is the admin flag granted by superuser creation.
func (u *User) IsAdmin() bool {
	return u.IsSuperuser
}

// AvatarKey returns the stored avatar key or DefaultAvatar.
func (u *User) AvatarKey() string {
	if u.Avatar == nil || *u.Avatar == "" {
		return DefaultAvatar
	}
	return *u.Avatar
}

func (u *User) String() string {
	return fmt.Sprintf("<User email: %s>", u.Email)
}
