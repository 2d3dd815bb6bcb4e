package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"ozo-backend/internal/domain/user"
	pkgerrors "ozo-backend/pkg/errors"
	"ozo-backend/pkg/security"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dialector, err := Dialector(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	db, err := gorm.Open(dialector, &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(context.Background(), db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func setupTestRepo(t *testing.T) (*UserRepo, *gorm.DB, *security.BcryptHasher) {
	db := setupTestDB(t)
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	return NewUserRepo(db, hasher, zaptest.NewLogger(t)), db, hasher
}

func strPtr(s string) *string { return &s }

func newUser(username, email string) user.NewUser {
	return user.NewUser{
		Username:     username,
		Email:        email,
		FullName:     strPtr("Test User"),
		PasswordHash: "$2a$04$placeholderplaceholderplaceholderplaceholderplacehold",
	}
}

// ==================== CREATE TESTS ====================

func TestUserRepo_Create(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)
	second, err := repo.Create(ctx, newUser("bob", "bob@example.com"))
	require.NoError(t, err)

	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "alice", first.Username)
	assert.Equal(t, "alice@example.com", first.Email)
	require.NotNil(t, first.FullName)
	assert.Equal(t, "Test User", *first.FullName)
}

func TestUserRepo_Create_NilFullName(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	in := newUser("alice", "alice@example.com")
	in.FullName = nil

	created, err := repo.Create(context.Background(), in)
	require.NoError(t, err)

	got, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FullName)
}

func TestUserRepo_Create_Conflicts(t *testing.T) {
	tests := []struct {
		name     string
		in       user.NewUser
		field    string
		errorMsg string
	}{
		{"duplicate email", newUser("other", "alice@example.com"), "email", "Email already registered"},
		{"duplicate username", newUser("alice", "other@example.com"), "username", "Username already taken"},
		{"duplicate both reports email", newUser("alice", "alice@example.com"), "email", "Email already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, db, _ := setupTestRepo(t)
			ctx := context.Background()
			_, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
			require.NoError(t, err)

			result, err := repo.Create(ctx, tt.in)
			assert.Nil(t, result)

			var conflict *pkgerrors.ConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, tt.field, conflict.Field)
			assert.Equal(t, tt.errorMsg, conflict.Error())

			var count int64
			require.NoError(t, db.Model(&UserSchema{}).Count(&count).Error)
			assert.Equal(t, int64(1), count)
		})
	}
}

func TestUserRepo_Create_Concurrent(t *testing.T) {
	const workers = 20

	t.Run("distinct emails all succeed", func(t *testing.T) {
		repo, db, _ := setupTestRepo(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Create(ctx, newUser(fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i)))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}
		var count int64
		require.NoError(t, db.Model(&UserSchema{}).Count(&count).Error)
		assert.Equal(t, int64(workers), count)
	})

	t.Run("same email yields one row and conflicts", func(t *testing.T) {
		repo, db, _ := setupTestRepo(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Create(ctx, newUser(fmt.Sprintf("user%d", i), "same@example.com"))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		var ok, conflicts int
		for err := range errs {
			switch {
			case err == nil:
				ok++
			case pkgerrors.IsConflict(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, workers-1, conflicts)

		var count int64
		require.NoError(t, db.Model(&UserSchema{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestUserRepo_Create_EmptyHash(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	in := newUser("alice", "alice@example.com")
	in.PasswordHash = ""

	_, err := repo.Create(context.Background(), in)
	assert.Error(t, err)
}

func TestUserRepo_UniqueIndexViolation(t *testing.T) {
	_, db, _ := setupTestRepo(t)
	require.NoError(t, db.Create(&UserSchema{Username: "alice", Email: "alice@example.com", HashedPassword: "x"}).Error)

	err := db.Create(&UserSchema{Username: "bob", Email: "alice@example.com", HashedPassword: "x"}).Error
	require.Error(t, err)
	conflict := asConflict(err)
	require.NotNil(t, conflict)
	assert.Equal(t, "email", conflict.Field)

	err = db.Create(&UserSchema{Username: "alice", Email: "bob@example.com", HashedPassword: "x"}).Error
	require.Error(t, err)
	conflict = asConflict(err)
	require.NotNil(t, conflict)
	assert.Equal(t, "username", conflict.Field)
}

func TestAsConflict(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		field string
	}{
		{"postgres email index", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}, "email"},
		{"postgres username index", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_username"}, "username"},
		{"wrapped postgres error", errors.Join(errors.New("tx"), &pgconn.PgError{Code: "23505", Detail: "Key (username)=(a) already exists."}), "username"},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, "email"},
		{"sqlite message", errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)"), "username"},
		{"existing conflict", pkgerrors.NewConflictError("username", "Username already taken"), "username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflict := asConflict(tt.err)
			require.NotNil(t, conflict)
			assert.Equal(t, tt.field, conflict.Field)
		})
	}

	assert.Nil(t, asConflict(errors.New("connection refused")))
	assert.Nil(t, asConflict(&pgconn.PgError{Code: "23503"}))
}

// ==================== GET TESTS ====================

func TestUserRepo_GetByID(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = repo.GetByID(ctx, created.ID+100)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.EqualError(t, err, "User not found")
}

func TestUserRepo_GetByEmail(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)

	got, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.PasswordHash, got.PasswordHash)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, pkgerrors.IsNotFound(err))
}

// ==================== UPDATE TESTS ====================

func TestUserRepo_Update(t *testing.T) {
	repo, _, hasher := setupTestRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, user.UserUpdate{
		FullName: strPtr("Alice Liddell"),
		Password: strPtr("newsecret"),
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, "alice@example.com", updated.Email)
	require.NotNil(t, updated.FullName)
	assert.Equal(t, "Alice Liddell", *updated.FullName)
	assert.NotEqual(t, "newsecret", updated.PasswordHash)
	assert.True(t, hasher.Verify("newsecret", updated.PasswordHash))

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, stored)
}

func TestUserRepo_Update_ClearFullName(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)
	require.NotNil(t, created.FullName)

	updated, err := repo.Update(ctx, created.ID, user.UserUpdate{
		FullName:      strPtr("ignored"),
		ClearFullName: true,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.FullName)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.FullName)
	assert.Equal(t, "alice", stored.Username)
}

func TestUserRepo_Update_Empty(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, user.UserUpdate{})
	require.NoError(t, err)
	assert.Equal(t, created, updated)
}

func TestUserRepo_Update_SameValuesAreNotConflicts(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)

	_, err = repo.Update(ctx, created.ID, user.UserUpdate{
		Username: strPtr("alice"),
		Email:    strPtr("alice@example.com"),
	})
	assert.NoError(t, err)
}

func TestUserRepo_Update_Conflict(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()
	alice, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newUser("bob", "bob@example.com"))
	require.NoError(t, err)

	_, err = repo.Update(ctx, alice.ID, user.UserUpdate{Email: strPtr("bob@example.com")})
	assert.True(t, pkgerrors.IsConflict(err))
	assert.EqualError(t, err, "Email already registered")

	_, err = repo.Update(ctx, alice.ID, user.UserUpdate{Username: strPtr("bob")})
	assert.True(t, pkgerrors.IsConflict(err))
	assert.EqualError(t, err, "Username already taken")

	stored, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username)
	assert.Equal(t, "alice@example.com", stored.Email)
}

func TestUserRepo_Update_NotFound(t *testing.T) {
	repo, _, _ := setupTestRepo(t)

	_, err := repo.Update(context.Background(), 42, user.UserUpdate{FullName: strPtr("x")})
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestUserRepo_Update_EmptyPassword(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)

	_, err = repo.Update(ctx, created.ID, user.UserUpdate{Password: strPtr("")})
	var validationErr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "password", validationErr.Field)
}

// ==================== DELETE TESTS ====================

func TestUserRepo_Delete(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)

	deleted, err := repo.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, deleted)

	_, err = repo.GetByID(ctx, created.ID)
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = repo.Delete(ctx, created.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestUserRepo_Delete_FreesEmail(t *testing.T) {
	repo, _, _ := setupTestRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)

	_, err = repo.Delete(ctx, created.ID)
	require.NoError(t, err)

	again, err := repo.Create(ctx, newUser("alice", "alice@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", again.Email)
}
