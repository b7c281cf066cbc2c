package store

import (
	"context"
	"errors"
	"sync"

	"github.com/Freeeeeet/course_select/internal/model"
	"github.com/Freeeeeet/course_select/internal/remote"
	"go.uber.org/zap"
)

// ErrCourseNotFound means the requested course id is absent from the cache
var ErrCourseNotFound = errors.New("course not found")

// Catalog caches the full course list. A load replaces the entire cache;
// a failed load keeps whatever was cached before.
type Catalog struct {
	mu      sync.RWMutex
	courses []model.Course

	client *remote.Client
	logger *zap.Logger
}

func NewCatalog(client *remote.Client, logger *zap.Logger) *Catalog {
	return &Catalog{
		client: client,
		logger: logger,
	}
}

// Load fetches all courses and replaces the cached list. Independent of login
// state; no automatic retry.
func (c *Catalog) Load(ctx context.Context) error {
	courses, err := c.client.FetchCourses(ctx)
	if err != nil {
		c.logger.Error("Failed to load courses", zap.Error(err))
		return err
	}

	c.mu.Lock()
	c.courses = courses
	c.mu.Unlock()

	c.logger.Info("Catalog loaded", zap.Int("courses", len(courses)))
	return nil
}

// Courses returns a snapshot of the cached list
func (c *Catalog) Courses() []model.Course {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make([]model.Course, len(c.courses))
	copy(snapshot, c.courses)
	return snapshot
}

// ByID returns the cached course or ErrCourseNotFound
func (c *Catalog) ByID(id string) (model.Course, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, course := range c.courses {
		if course.ID == id {
			return course, nil
		}
	}
	return model.Course{}, ErrCourseNotFound
}
