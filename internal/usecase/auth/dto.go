package auth

// SignupRequest represents the request payload for registering a new account.
type SignupRequest struct {
	Username string  `validate:"required,max=50"`
	Email    string  `validate:"required,email,max=255"`
	Password string  `validate:"required,max=72"`
	FullName *string `validate:"omitempty,max=100"`
}

// SignupResponse represents the created account. It never carries the password hash.
type SignupResponse struct {
	ID       int64
	Username string
	Email    string
	FullName *string
}

// LoginRequest represents the credentials presented at login.
// Email format is not validated so malformed addresses fail like unknown ones.
type LoginRequest struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// LoginResponse represents an issued access token.
type LoginResponse struct {
	AccessToken string
	TokenType   string
}
