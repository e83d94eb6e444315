// Package auth handles registration, login, and session tokens.
// Sessions are ephemeral: an opaque token maps to a user id for the
// lifetime of the process, mirroring a session-scoped slot.
package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vendorwatch/internal/database"
	"vendorwatch/internal/model"
)

// ErrAuth covers both unknown email and wrong password, so login
// failures do not reveal which one it was.
var ErrAuth = errors.New("invalid email or password")

type Service struct {
	db *database.DB

	mu       sync.RWMutex
	sessions map[string]int64
}

func NewService(db *database.DB) *Service {
	return &Service{
		db:       db,
		sessions: make(map[string]int64),
	}
}

// Register creates a user and opens a session. Registration with an
// already-registered email fails with database.ErrDuplicate.
func (s *Service) Register(email, password string) (*model.User, string, error) {
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("email and password are required")
	}

	existing, err := s.db.GetUserByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", database.ErrDuplicate
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.db.AddUser(email, string(hash))
	if err != nil {
		return nil, "", err
	}

	return user, s.openSession(user.ID), nil
}

// Login verifies credentials and opens a session.
func (s *Service) Login(email, password string) (*model.User, string, error) {
	user, err := s.db.GetUserByEmail(email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrAuth
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrAuth
	}

	return user, s.openSession(user.ID), nil
}

// Logout drops the session. Unknown tokens are a no-op.
func (s *Service) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// UserFromToken resolves a session token to its user. An unknown token
// or a vanished user yields ErrAuth.
func (s *Service) UserFromToken(token string) (*model.User, error) {
	s.mu.RLock()
	userID, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrAuth
	}

	user, err := s.db.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAuth
	}
	return user, nil
}

func (s *Service) openSession(userID int64) string {
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = userID
	s.mu.Unlock()
	return token
}
