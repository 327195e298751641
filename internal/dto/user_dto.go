// FILE: internal/dto/user_dto.go
package dto

import (
	"time"
)

// UserResponse never carries the password hash.
type UserResponse struct {
	Id        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
