package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/Freeeeeet/course_select/internal/model"
	"github.com/Freeeeeet/course_select/internal/remote"
	"go.uber.org/zap"
)

// Selection holds the confirmed enrollments. Entries are created only by the
// checkout commit; the UI offers no path that removes one.
type Selection struct {
	mu    sync.Mutex
	items []model.SelectedCourse

	client  *remote.Client
	session *Session
	cart    *Cart
	logger  *zap.Logger
}

func NewSelection(client *remote.Client, session *Session, cart *Cart, logger *zap.Logger) *Selection {
	return &Selection{
		client:  client,
		session: session,
		cart:    cart,
		logger:  logger,
	}
}

// Load replaces the local list with the student's confirmed rows
func (s *Selection) Load(ctx context.Context) error {
	sess := s.session.Current()
	if sess == nil {
		return nil
	}

	items, err := s.client.WithToken(sess.Token).FetchSelectedCourses(ctx, sess.StudentID)
	if err != nil {
		s.logger.Error("Failed to load selections", zap.String("student_id", sess.StudentID), zap.Error(err))
		return err
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	s.logger.Info("Selections loaded", zap.String("student_id", sess.StudentID), zap.Int("items", len(items)))
	return nil
}

// SelectCourses is the checkout commit: bulk insert into selected_courses,
// bulk delete of the cart, then a full reload of the confirmed list. The
// calls run strictly in that order with no compensating rollback.
func (s *Selection) SelectCourses(ctx context.Context, items []model.CartItem) error {
	sess := s.session.Current()
	if sess == nil {
		return nil
	}
	if len(items) == 0 {
		return nil
	}

	authed := s.client.WithToken(sess.Token)

	if err := authed.InsertSelectedCourses(ctx, sess.StudentID, items); err != nil {
		return fmt.Errorf("select courses: %w", err)
	}

	if err := s.cart.Clear(ctx); err != nil {
		return fmt.Errorf("select courses: %w", err)
	}

	if err := s.Load(ctx); err != nil {
		return fmt.Errorf("select courses: %w", err)
	}

	s.logger.Info("Courses selected",
		zap.String("student_id", sess.StudentID),
		zap.Int("count", len(items)),
	)
	return nil
}

// RemoveConfirmed deletes one confirmed selection remotely and locally. Only
// the keep-new-removes-existing checkout policy reaches this.
func (s *Selection) RemoveConfirmed(ctx context.Context, courseID string) error {
	sess := s.session.Current()
	if sess == nil {
		return nil
	}

	err := s.client.WithToken(sess.Token).DeleteSelectedCourse(ctx, sess.StudentID, courseID)
	if err != nil {
		return fmt.Errorf("remove confirmed selection: %w", err)
	}

	s.mu.Lock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.CourseID != courseID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.mu.Unlock()

	s.logger.Info("Confirmed selection removed",
		zap.String("student_id", sess.StudentID),
		zap.String("course_id", courseID),
	)
	return nil
}

// Items returns a snapshot of the confirmed selections
func (s *Selection) Items() []model.SelectedCourse {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]model.SelectedCourse, len(s.items))
	copy(snapshot, s.items)
	return snapshot
}

func (s *Selection) reset() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}
