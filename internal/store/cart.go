package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/Freeeeeet/course_select/internal/model"
	"github.com/Freeeeeet/course_select/internal/remote"
	"go.uber.org/zap"
)

// Cart holds the pending selections, at most one per course. Every mutation
// is call-then-mutate: the remote write must succeed before local state
// changes, so a failed call leaves the cart exactly as it was.
type Cart struct {
	mu    sync.Mutex
	items []model.CartItem

	client  *remote.Client
	session *Session
	logger  *zap.Logger
}

func NewCart(client *remote.Client, session *Session, logger *zap.Logger) *Cart {
	return &Cart{
		client:  client,
		session: session,
		logger:  logger,
	}
}

// Load replaces the local cart with the student's remote rows
func (c *Cart) Load(ctx context.Context) error {
	sess := c.session.Current()
	if sess == nil {
		return nil
	}

	items, err := c.client.WithToken(sess.Token).FetchCartItems(ctx, sess.StudentID)
	if err != nil {
		c.logger.Error("Failed to load cart", zap.String("student_id", sess.StudentID), zap.Error(err))
		return err
	}

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()

	c.logger.Info("Cart loaded", zap.String("student_id", sess.StudentID), zap.Int("items", len(items)))
	return nil
}

// Add upserts the remote row keyed by (student, course) and then applies the
// local mutation. An existing entry for the course gets its time slot
// replaced, never duplicated.
func (c *Cart) Add(ctx context.Context, item model.CartItem) error {
	sess := c.session.Current()
	if sess == nil {
		return nil
	}

	err := c.client.WithToken(sess.Token).UpsertCartItem(ctx, sess.StudentID, item.CourseID, item.SelectedTimeSlot.ID, item.SelectedDate)
	if err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}

	c.mu.Lock()
	replaced := false
	for i := range c.items {
		if c.items[i].CourseID == item.CourseID {
			c.items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		c.items = append(c.items, item)
	}
	c.mu.Unlock()

	c.logger.Info("Added to cart",
		zap.String("student_id", sess.StudentID),
		zap.String("course_id", item.CourseID),
		zap.String("time_slot_id", item.SelectedTimeSlot.ID),
		zap.Bool("replaced", replaced),
	)
	return nil
}

// Remove deletes the remote row, then drops the local entry
func (c *Cart) Remove(ctx context.Context, courseID string) error {
	sess := c.session.Current()
	if sess == nil {
		return nil
	}

	err := c.client.WithToken(sess.Token).DeleteCartItem(ctx, sess.StudentID, courseID)
	if err != nil {
		return fmt.Errorf("remove from cart: %w", err)
	}

	c.mu.Lock()
	kept := c.items[:0]
	for _, item := range c.items {
		if item.CourseID != courseID {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.mu.Unlock()

	c.logger.Info("Removed from cart",
		zap.String("student_id", sess.StudentID),
		zap.String("course_id", courseID),
	)
	return nil
}

// UpdateSlot patches the stored time-slot reference, then the local entry
func (c *Cart) UpdateSlot(ctx context.Context, courseID string, slot model.TimeSlot) error {
	sess := c.session.Current()
	if sess == nil {
		return nil
	}

	c.mu.Lock()
	selectedDate := ""
	for i := range c.items {
		if c.items[i].CourseID == courseID {
			selectedDate = c.items[i].SelectedDate
			break
		}
	}
	c.mu.Unlock()

	err := c.client.WithToken(sess.Token).UpdateCartItem(ctx, sess.StudentID, courseID, slot.ID, selectedDate)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].CourseID == courseID {
			c.items[i].SelectedTimeSlot = slot
			break
		}
	}
	c.mu.Unlock()

	c.logger.Info("Cart item updated",
		zap.String("student_id", sess.StudentID),
		zap.String("course_id", courseID),
		zap.String("time_slot_id", slot.ID),
	)
	return nil
}

// Clear bulk-deletes the student's cart rows, then resets local state
func (c *Cart) Clear(ctx context.Context) error {
	sess := c.session.Current()
	if sess == nil {
		return nil
	}

	err := c.client.WithToken(sess.Token).ClearCart(ctx, sess.StudentID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	c.reset()

	c.logger.Info("Cart cleared", zap.String("student_id", sess.StudentID))
	return nil
}

// Items returns a snapshot of the cart in insertion order
func (c *Cart) Items() []model.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make([]model.CartItem, len(c.items))
	copy(snapshot, c.items)
	return snapshot
}

// reset drops local state only, used on logout
func (c *Cart) reset() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}
