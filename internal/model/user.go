package model

import "time"

// User is an exam-prep account.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// SelectOptionRequest is the payload for locking an answer.
type SelectOptionRequest struct {
	Key string `json:"key" binding:"required,max=10"`
}
