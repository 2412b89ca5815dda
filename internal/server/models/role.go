package models

import (
	"fmt"
	"time"
)

// Seeded role names.
const (
	RoleUnVerified = "UnVerified"
	RoleAdmin      = "Admin"
)

// Role is a named permission tier. Roles are seeded, not created by users.
type Role struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

func (r *Role) String() string {
	return fmt.Sprintf("Role: <%s>", r.Name)
}
