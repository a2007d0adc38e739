package models

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Password string  `json:"password" validate:"required,min=6,max=50"`
	Email    *string `json:"email" validate:"omitnil,email,max=100"`
	FullName *string `json:"full_name" validate:"omitnil,max=100"`
}

// LoginRequest carries the form fields of POST /login.
type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// UserUpdateRequest is the body of PUT /me. Nil fields are left untouched.
type UserUpdateRequest struct {
	Email    *string `json:"email" validate:"omitnil,email,max=100"`
	FullName *string `json:"full_name" validate:"omitnil,max=100"`
	Password *string `json:"password" validate:"omitnil,min=6"`
}

// BookRequest is the body of POST /books and PUT /books/{id}.
type BookRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Author      string  `json:"author" validate:"required,min=1,max=100"`
	Year        *int    `json:"year" validate:"omitnil,min=1000,max=2100"`
	Description *string `json:"description"`
}

// TokenResponse is returned by a successful registration or login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MessageResponse is a plain confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}
