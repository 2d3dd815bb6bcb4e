package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "ozo-backend/internal/domain/user"
	"ozo-backend/internal/usecase"
	pkgerrors "ozo-backend/pkg/errors"
	"ozo-backend/pkg/logger"
	"ozo-backend/pkg/security"
)

const msgEmailRegistered = "Email already registered"

// dummyPassword is hashed once so that logins for unknown emails still pay
// for a bcrypt comparison.
const dummyPassword = "ozo-timing-equalizer"

// Usecase implements signup, login and token verification.
type Usecase struct {
	repo     domain.Repository       // Repository for user lookups and inserts
	hasher   security.PasswordHasher // Hashes and verifies passwords
	tokens   security.TokenIssuer    // Issues and verifies bearer tokens
	log      *zap.Logger             // Logger for structured logging
	validate *validator.Validate     // Validator for request validation

	dummyOnce sync.Once
	dummyHash string
}

// New creates a new instance of Usecase.
func New(repo domain.Repository, hasher security.PasswordHasher, tokens security.TokenIssuer, log *zap.Logger) *Usecase {
	return &Usecase{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		log:      log,
		validate: usecase.NewValidator(),
	}
}

// Signup registers a new account. It fails with a ConflictError when the
// email is already registered or, if the store detects it, the username is taken.
func (uc *Usecase) Signup(ctx context.Context, in SignupRequest) (*SignupResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("signing up user", zap.String("username", in.Username))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, usecase.FormatValidationError(err)
	}

	_, err := uc.repo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		log.Warn("email already registered")
		return nil, pkgerrors.NewConflictError("email", msgEmailRegistered)
	case !pkgerrors.IsNotFound(err):
		log.Error("failed to check existing email", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to validate email uniqueness", err)
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, security.ErrEmptyPassword) || errors.Is(err, security.ErrPasswordTooLong) {
			return nil, pkgerrors.NewValidationError("password", err.Error())
		}
		log.Error("failed to hash password", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to hash password", err)
	}

	created, err := uc.repo.Create(ctx, domain.NewUser{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
	})
	if err != nil {
		if pkgerrors.IsConflict(err) {
			log.Warn("signup conflict", zap.Error(err))
			return nil, err
		}
		log.Error("failed to create user", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to create user", err)
	}

	log.Info("user signed up", zap.Int64("id", created.ID))
	return &SignupResponse{
		ID:       created.ID,
		Username: created.Username,
		Email:    created.Email,
		FullName: created.FullName,
	}, nil
}

// Authenticate returns the user owning email when password matches.
// Unknown emails and wrong passwords both yield the same AuthError.
func (uc *Usecase) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.WithContext(ctx, uc.log)

	u, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			uc.hasher.Verify(password, uc.dummyDigest())
			log.Info("authentication failed")
			return nil, pkgerrors.NewAuthError("")
		}
		log.Error("failed to look up user for authentication", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to authenticate", err)
	}

	if !uc.hasher.Verify(password, u.PasswordHash) {
		log.Info("authentication failed")
		return nil, pkgerrors.NewAuthError("")
	}

	return u, nil
}

// Login authenticates the credentials and issues a bearer token whose
// subject is the user's email.
func (uc *Usecase) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, usecase.FormatValidationError(err)
	}

	u, err := uc.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	token, err := uc.tokens.Issue(u.Email)
	if err != nil {
		log.Error("failed to issue token", zap.Int64("id", u.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to issue token", err)
	}

	log.Info("user logged in", zap.Int64("id", u.ID))
	return &LoginResponse{AccessToken: token, TokenType: security.TokenTypeBearer}, nil
}

// VerifyToken returns the subject of a valid token or an UnauthorizedError.
func (uc *Usecase) VerifyToken(ctx context.Context, token string) (string, error) {
	subject, err := uc.tokens.Verify(token)
	if err != nil {
		logger.WithContext(ctx, uc.log).Debug("token rejected", zap.Error(err))
		if errors.Is(err, security.ErrTokenExpired) {
			return "", pkgerrors.NewUnauthorizedError("Token has expired")
		}
		return "", pkgerrors.NewUnauthorizedError("")
	}
	return subject, nil
}

func (uc *Usecase) dummyDigest() string {
	uc.dummyOnce.Do(func() {
		hash, err := uc.hasher.Hash(dummyPassword)
		if err != nil {
			uc.log.Warn("failed to prepare dummy password hash", zap.Error(err))
			return
		}
		uc.dummyHash = hash
	})
	return uc.dummyHash
}
