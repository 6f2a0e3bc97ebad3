package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/iliyamo/campaign-companion/internal/database"
	"github.com/iliyamo/campaign-companion/internal/model"
	"github.com/iliyamo/campaign-companion/internal/repository"
	"github.com/iliyamo/campaign-companion/internal/utils"
)

var (
	ErrUsernameTaken = fmt.Errorf("%w: username already taken", repository.ErrConflict)
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot discover which accounts exist.
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", repository.ErrUnauthorized)
)

const (
	maxUsernameLen = 64
	maxPasswordLen = 72 // bcrypt input limit
)

// Session is the result of a successful register or login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
}

// AuthService registers users and exchanges credentials for session tokens.
type AuthService struct {
	db         *database.DB
	tokens     *utils.TokenIssuer
	bcryptCost int
	// dummyHash is compared against for unknown usernames so both login
	// failures cost one bcrypt comparison.
	dummyHash string
	now       Clock
}

// NewAuthService wires the credential store to the token issuer.
func NewAuthService(db *database.DB, tokens *utils.TokenIssuer, bcryptCost int) (*AuthService, error) {
	dummy, err := utils.HashPassword(uuid.NewString(), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("prepare password hasher: %w", err)
	}
	return &AuthService{db: db, tokens: tokens, bcryptCost: bcryptCost, dummyHash: dummy, now: systemClock}, nil
}

func validateCredentials(username, password string) error {
	if username == "" || password == "" {
		return badRequest("username and password are required")
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return badRequest("username must be at most %d characters", maxUsernameLen)
	}
	if len(password) > maxPasswordLen {
		return badRequest("password must be at most %d bytes", maxPasswordLen)
	}
	return nil
}

// Register creates a user and returns a fresh session. Usernames are
// compared exactly, including case.
func (s *AuthService) Register(ctx context.Context, username, password string) (Session, error) {
	if err := validateCredentials(username, password); err != nil {
		return Session{}, err
	}
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UnixMilli(),
	}

	err = s.db.InTx(ctx, func(tx *database.Tx) error {
		users := repository.NewUserRepo(tx)
		taken, err := users.UsernameExists(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameTaken
		}
		return users.Create(ctx, user)
	})
	if err != nil {
		// a concurrent registration may pass the check and lose on the unique key
		if errors.Is(err, repository.ErrConflict) {
			return Session{}, ErrUsernameTaken
		}
		return Session{}, err
	}
	return s.issue(user.ID, user.Username)
}

// Login verifies the credentials and returns a fresh session.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	if username == "" || password == "" {
		return Session{}, badRequest("username and password are required")
	}
	user, err := repository.NewUserRepo(s.db).GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		utils.VerifyPassword(s.dummyHash, password)
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(user.ID, user.Username)
}

func (s *AuthService) issue(userID, username string) (Session, error) {
	tok, err := s.tokens.Issue(userID, username)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return Session{Token: tok.Token, ExpiresAt: tok.Exp, UserID: userID, Username: username}, nil
}
