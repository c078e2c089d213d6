package model

import "github.com/google/uuid"

type Principal struct {
	UserID uuid.UUID
	Name   string
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == "admin"
}
