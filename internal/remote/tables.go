package remote

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/course_select/internal/model"
)

// Domain operations over the remote tables: courses (with nested instructors
// and time_slots), favorites, cart_items, selected_courses. Every student
// scoped call filters by student_id.

const (
	courseSelect = "*,instructors(id,name,avatar,bio,specialties,rating),time_slots(id,day_of_week,start_time,end_time,available)"

	cartSelect = "course_id,time_slot_id,selected_date," +
		"courses(id,title,teacher,category,grade,cover_image,material_fee,rating,review_count,tags,capacity,enrolled)," +
		"time_slots(id,day_of_week,start_time,end_time,available)"

	selectionSelect = "course_id,time_slot_id,selected_at," +
		"courses(id,title,teacher,category,grade,cover_image,material_fee,rating,review_count,tags,capacity,enrolled)," +
		"time_slots(id,day_of_week,start_time,end_time,available)"
)

// FetchCourses loads the full catalog with nested instructor and slot rows
func (c *Client) FetchCourses(ctx context.Context) ([]model.Course, error) {
	var rows []courseRow
	if err := c.Select(ctx, "courses", courseSelect, nil, &rows); err != nil {
		return nil, fmt.Errorf("fetch courses: %w", err)
	}

	courses := make([]model.Course, 0, len(rows))
	for i := range rows {
		course, err := rows[i].toModel()
		if err != nil {
			return nil, fmt.Errorf("fetch courses: %w", err)
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// FetchFavorites loads the student's favorite course ids
func (c *Client) FetchFavorites(ctx context.Context, studentID string) ([]string, error) {
	var rows []favoriteRow
	err := c.Select(ctx, "favorites", "course_id", Filters{"student_id": studentID}, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch favorites: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.CourseID)
	}
	return ids, nil
}

// InsertFavorite adds a favorite row for the student
func (c *Client) InsertFavorite(ctx context.Context, studentID, courseID string) error {
	return c.Insert(ctx, "favorites", map[string]string{
		"student_id": studentID,
		"course_id":  courseID,
	})
}

// DeleteFavorite removes the student's favorite row for the course
func (c *Client) DeleteFavorite(ctx context.Context, studentID, courseID string) error {
	return c.Delete(ctx, "favorites", Filters{
		"student_id": studentID,
		"course_id":  courseID,
	})
}

// FetchCartItems loads the student's cart rows with nested relations
func (c *Client) FetchCartItems(ctx context.Context, studentID string) ([]model.CartItem, error) {
	var rows []cartItemRow
	err := c.Select(ctx, "cart_items", cartSelect, Filters{"student_id": studentID}, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch cart items: %w", err)
	}

	items := make([]model.CartItem, 0, len(rows))
	for i := range rows {
		item, err := rows[i].toModel()
		if err != nil {
			return nil, fmt.Errorf("fetch cart items: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// UpsertCartItem writes the cart row keyed by (student_id, course_id)
func (c *Client) UpsertCartItem(ctx context.Context, studentID, courseID, timeSlotID, selectedDate string) error {
	return c.Upsert(ctx, "cart_items", map[string]string{
		"student_id":    studentID,
		"course_id":     courseID,
		"time_slot_id":  timeSlotID,
		"selected_date": selectedDate,
	})
}

// UpdateCartItem patches the stored time slot of an existing cart row
func (c *Client) UpdateCartItem(ctx context.Context, studentID, courseID, timeSlotID, selectedDate string) error {
	patch := map[string]string{
		"time_slot_id":  timeSlotID,
		"selected_date": selectedDate,
	}
	return c.Update(ctx, "cart_items", patch, Filters{
		"student_id": studentID,
		"course_id":  courseID,
	})
}

// DeleteCartItem removes one cart row
func (c *Client) DeleteCartItem(ctx context.Context, studentID, courseID string) error {
	return c.Delete(ctx, "cart_items", Filters{
		"student_id": studentID,
		"course_id":  courseID,
	})
}

// ClearCart removes every cart row of the student
func (c *Client) ClearCart(ctx context.Context, studentID string) error {
	return c.Delete(ctx, "cart_items", Filters{"student_id": studentID})
}

// FetchSelectedCourses loads the student's confirmed selections
func (c *Client) FetchSelectedCourses(ctx context.Context, studentID string) ([]model.SelectedCourse, error) {
	var rows []selectedCourseRow
	err := c.Select(ctx, "selected_courses", selectionSelect, Filters{"student_id": studentID}, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch selected courses: %w", err)
	}

	selections := make([]model.SelectedCourse, 0, len(rows))
	for i := range rows {
		selection, err := rows[i].toModel()
		if err != nil {
			return nil, fmt.Errorf("fetch selected courses: %w", err)
		}
		selections = append(selections, selection)
	}
	return selections, nil
}

// InsertSelectedCourses bulk-inserts cart items as confirmed selections
func (c *Client) InsertSelectedCourses(ctx context.Context, studentID string, items []model.CartItem) error {
	payload := make([]map[string]string, 0, len(items))
	for _, item := range items {
		payload = append(payload, map[string]string{
			"student_id":   studentID,
			"course_id":    item.CourseID,
			"time_slot_id": item.SelectedTimeSlot.ID,
		})
	}
	return c.Insert(ctx, "selected_courses", payload)
}

// DeleteSelectedCourse removes one confirmed selection row
func (c *Client) DeleteSelectedCourse(ctx context.Context, studentID, courseID string) error {
	return c.Delete(ctx, "selected_courses", Filters{
		"student_id": studentID,
		"course_id":  courseID,
	})
}
