package domain

import "errors"

// User errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// Recipe errors
var (
	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrRecipeForbidden = errors.New("recipe belongs to another user")
)
