package checkout

import (
	"github.com/Freeeeeet/course_select/internal/model"
)

// Conflict is a cart item whose slot collides with one or more confirmed
// selections. Two slots collide only when their day-of-week and full
// "start-end" strings are exactly equal; partial overlaps do not count.
type Conflict struct {
	NewItem  model.CartItem         `json:"newItem"`
	Existing []model.SelectedCourse `json:"existing"`
}

// Key identifies the conflict across re-detection passes
func (c *Conflict) Key() string {
	slot := c.NewItem.SelectedTimeSlot
	return c.NewItem.CourseID + "|" + string(slot.DayOfWeek) + "|" + slot.TimeRange()
}

func sameMeeting(a model.TimeSlot, b model.TimeSlot) bool {
	return a.DayOfWeek == b.DayOfWeek && a.TimeRange() == b.TimeRange()
}

// Detect scans the cart against the confirmed selections in cart iteration
// order. Pure function, no store access.
func Detect(cart []model.CartItem, confirmed []model.SelectedCourse) []Conflict {
	var conflicts []Conflict

	for _, item := range cart {
		var matching []model.SelectedCourse
		for _, existing := range confirmed {
			if sameMeeting(item.SelectedTimeSlot, existing.SelectedTimeSlot) {
				matching = append(matching, existing)
			}
		}
		if len(matching) > 0 {
			conflicts = append(conflicts, Conflict{NewItem: item, Existing: matching})
		}
	}

	return conflicts
}
