package models

import (
	"fmt"
	"time"
)

// Group is a named set of users; membership lives in UserGroup.
type Group struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

func (g *Group) String() string {
	return fmt.Sprintf("<Group: %s>", g.Name)
}

// UserGroup is the join row between a user and a group.
type UserGroup struct {
	ID      int64
	UserID  string
	GroupID int64
}
