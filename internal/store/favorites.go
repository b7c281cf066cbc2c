package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Freeeeeet/course_select/internal/remote"
	"go.uber.org/zap"
)

// Favorites is a set of course ids, independent of cart and selection state
type Favorites struct {
	mu  sync.Mutex
	ids map[string]struct{}

	client  *remote.Client
	session *Session
	logger  *zap.Logger
}

func NewFavorites(client *remote.Client, session *Session, logger *zap.Logger) *Favorites {
	return &Favorites{
		ids:     make(map[string]struct{}),
		client:  client,
		session: session,
		logger:  logger,
	}
}

// Load replaces the set with the student's remote rows
func (f *Favorites) Load(ctx context.Context) error {
	sess := f.session.Current()
	if sess == nil {
		return nil
	}

	ids, err := f.client.WithToken(sess.Token).FetchFavorites(ctx, sess.StudentID)
	if err != nil {
		f.logger.Error("Failed to load favorites", zap.String("student_id", sess.StudentID), zap.Error(err))
		return err
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	f.mu.Lock()
	f.ids = set
	f.mu.Unlock()

	f.logger.Info("Favorites loaded", zap.String("student_id", sess.StudentID), zap.Int("count", len(ids)))
	return nil
}

// Toggle flips membership for the course. The remote call is awaited first
// and the local flip happens only when it succeeded, so a failed call never
// changes the set. Two successful toggles restore the original membership.
func (f *Favorites) Toggle(ctx context.Context, courseID string) (bool, error) {
	sess := f.session.Current()
	if sess == nil {
		return false, nil
	}

	f.mu.Lock()
	_, present := f.ids[courseID]
	f.mu.Unlock()

	authed := f.client.WithToken(sess.Token)

	if present {
		if err := authed.DeleteFavorite(ctx, sess.StudentID, courseID); err != nil {
			return true, fmt.Errorf("toggle favorite: %w", err)
		}
		f.mu.Lock()
		delete(f.ids, courseID)
		f.mu.Unlock()
	} else {
		if err := authed.InsertFavorite(ctx, sess.StudentID, courseID); err != nil {
			return false, fmt.Errorf("toggle favorite: %w", err)
		}
		f.mu.Lock()
		f.ids[courseID] = struct{}{}
		f.mu.Unlock()
	}

	f.logger.Info("Favorite toggled",
		zap.String("student_id", sess.StudentID),
		zap.String("course_id", courseID),
		zap.Bool("favorite", !present),
	)
	return !present, nil
}

// Has reports membership
func (f *Favorites) Has(courseID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.ids[courseID]
	return ok
}

// IDs returns the members in sorted order
func (f *Favorites) IDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, 0, len(f.ids))
	for id := range f.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (f *Favorites) reset() {
	f.mu.Lock()
	f.ids = make(map[string]struct{})
	f.mu.Unlock()
}
