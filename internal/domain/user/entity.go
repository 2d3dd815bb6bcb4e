package user

import "context"

// User represents a user account.
type User struct {
	ID           int64   // ID is assigned by the store
	Username     string  // Username is unique across all users
	Email        string  // Email is unique across all users and is the login identity
	FullName     *string // FullName is optional
	PasswordHash string  // PasswordHash is the bcrypt digest, never the plaintext
}

// NewUser holds the fields needed to insert a user. The password is already hashed.
type NewUser struct {
	Username     string
	Email        string
	FullName     *string
	PasswordHash string
}

// UserUpdate lists the fields a partial update may change. Nil means "leave as is".
// Password is plaintext; the repository hashes it before storage.
// ClearFullName sets FullName to null and wins over a non-nil FullName.
type UserUpdate struct {
	Username *string
	Email    *string
	FullName *string
	Password *string

	ClearFullName bool
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.Username == nil && u.Email == nil && u.FullName == nil && u.Password == nil && !u.ClearFullName
}

// Repository defines the persistence operations for users. It is the only
// writer of the users table and enforces username and email uniqueness.
// Lookups return a NotFoundError when no row matches.
type Repository interface {
	Create(ctx context.Context, in NewUser) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, id int64, in UserUpdate) (*User, error)
	Delete(ctx context.Context, id int64) (*User, error)
}
