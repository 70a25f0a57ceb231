package domain

import "time"

type User struct {
	ID        uint
	Email     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
