package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/Freeeeeet/course_select/internal/model"
	"github.com/Freeeeeet/course_select/internal/remote"
	"github.com/Freeeeeet/course_select/internal/storage"
	"go.uber.org/zap"
)

// Session holds the logged-in identity and its bearer token.
// Invariant: LoggedIn() is true iff Current() is non-nil.
type Session struct {
	mu      sync.RWMutex
	current *model.Session

	client *remote.Client
	local  *storage.Local
	logger *zap.Logger
}

func NewSession(client *remote.Client, local *storage.Local, logger *zap.Logger) *Session {
	return &Session{
		client: client,
		local:  local,
		logger: logger,
	}
}

// Login exchanges (name, studentID) for a token. On success the identity and
// token are persisted durably and held in memory; on failure nothing is
// persisted and the AuthError is returned to the caller.
func (s *Session) Login(ctx context.Context, name, studentID string) (*model.Session, error) {
	token, err := s.client.LoginByStudent(ctx, studentID, name)
	if err != nil {
		return nil, err
	}

	sess := &model.Session{Name: name, StudentID: studentID, Token: token}

	if err := s.local.SaveSession(model.Identity{Name: name, StudentID: studentID}, token); err != nil {
		// The login itself succeeded, a persistence failure only costs the next restart
		s.logger.Warn("Failed to persist session", zap.Error(err))
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	s.logger.Info("Student logged in",
		zap.String("student_id", studentID),
		zap.String("name", name),
	)

	copied := *sess
	return &copied, nil
}

// Logout clears the in-memory session and erases the durable identity and
// token entries. Server-side rows are untouched for future sessions.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.local.Clear(); err != nil {
		return fmt.Errorf("clear persisted session: %w", err)
	}

	s.logger.Info("Student logged out")
	return nil
}

// Restore loads a persisted session on process start. The token is not
// re-validated against the server.
func (s *Session) Restore() (*model.Session, error) {
	identity, token, err := s.local.LoadSession()
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if identity == nil {
		return nil, nil
	}

	sess := &model.Session{Name: identity.Name, StudentID: identity.StudentID, Token: token}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	s.logger.Info("Session restored", zap.String("student_id", identity.StudentID))

	copied := *sess
	return &copied, nil
}

// Current returns a copy of the session, nil when logged out
func (s *Session) Current() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	copied := *s.current
	return &copied
}

func (s *Session) LoggedIn() bool {
	return s.Current() != nil
}
