package remote

import (
	"fmt"

	"github.com/Freeeeeet/course_select/internal/model"
)

// Wire shapes of the remote rows. Decoding into model types happens here and
// nowhere else, so malformed rows are rejected at the boundary.

type timeSlotRow struct {
	ID        string `json:"id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

func (r *timeSlotRow) toModel() (model.TimeSlot, error) {
	if r.ID == "" {
		return model.TimeSlot{}, fmt.Errorf("time slot without id")
	}
	day, err := model.DayOfWeekFromNumber(r.DayOfWeek)
	if err != nil {
		return model.TimeSlot{}, fmt.Errorf("time slot %s: %w", r.ID, err)
	}
	if r.StartTime == "" || r.EndTime == "" {
		return model.TimeSlot{}, fmt.Errorf("time slot %s: missing time range", r.ID)
	}
	return model.TimeSlot{
		ID:        r.ID,
		DayOfWeek: day,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Available: r.Available,
	}, nil
}

type instructorRow struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Avatar      string   `json:"avatar"`
	Bio         string   `json:"bio"`
	Specialties []string `json:"specialties"`
	Rating      float64  `json:"rating"`
}

type mediaItemRow struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
	Title     string `json:"title"`
}

type courseRow struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Teacher      string         `json:"teacher"` // legacy plain-text column, fallback when no instructor row is linked
	Category     string         `json:"category"`
	Grade        string         `json:"grade"`
	Description  string         `json:"description"`
	CoverImage   string         `json:"cover_image"`
	MaterialFee  int            `json:"material_fee"`
	Rating       float64        `json:"rating"`
	ReviewCount  int            `json:"review_count"`
	Tags         []string       `json:"tags"`
	Capacity     int            `json:"capacity"`
	Enrolled     int            `json:"enrolled"`
	MediaContent []mediaItemRow `json:"media_content"`
	Instructor   *instructorRow `json:"instructors"`
	TimeSlots    []timeSlotRow  `json:"time_slots"`
}

const defaultCoverImage = "https://images.pexels.com/photos/3184360/pexels-photo-3184360.jpeg?auto=compress&cs=tinysrgb&w=600"

func (r *courseRow) toModel() (model.Course, error) {
	if r.ID == "" {
		return model.Course{}, fmt.Errorf("course without id")
	}
	if r.Title == "" {
		return model.Course{}, fmt.Errorf("course %s: missing title", r.ID)
	}

	var teacher model.Teacher
	if r.Instructor != nil {
		teacher = model.Teacher{
			ID:          r.Instructor.ID,
			Name:        r.Instructor.Name,
			Avatar:      r.Instructor.Avatar,
			Bio:         r.Instructor.Bio,
			Specialties: r.Instructor.Specialties,
			Rating:      r.Instructor.Rating,
		}
	} else {
		teacher = model.Teacher{
			ID:          r.Teacher,
			Name:        r.Teacher,
			Avatar:      "/avatars/default.jpg",
			Bio:         "优秀教师",
			Specialties: []string{},
			Rating:      4.5,
		}
	}

	slots := make([]model.TimeSlot, 0, len(r.TimeSlots))
	for i := range r.TimeSlots {
		slot, err := r.TimeSlots[i].toModel()
		if err != nil {
			return model.Course{}, fmt.Errorf("course %s: %w", r.ID, err)
		}
		slots = append(slots, slot)
	}

	media := make([]model.MediaItem, 0, len(r.MediaContent))
	for _, m := range r.MediaContent {
		media = append(media, model.MediaItem{
			ID:        m.ID,
			Type:      model.MediaType(m.Type),
			URL:       m.URL,
			Thumbnail: m.Thumbnail,
			Title:     m.Title,
		})
	}

	cover := r.CoverImage
	if cover == "" {
		cover = defaultCoverImage
	}
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}

	return model.Course{
		ID:           r.ID,
		Title:        r.Title,
		Teacher:      teacher,
		TimeSlots:    slots,
		MaterialFee:  r.MaterialFee,
		Category:     r.Category,
		Grade:        r.Grade,
		Description:  r.Description,
		CoverImage:   cover,
		MediaContent: media,
		Rating:       r.Rating,
		ReviewCount:  r.ReviewCount,
		Tags:         tags,
		Capacity:     r.Capacity,
		Enrolled:     r.Enrolled,
	}, nil
}

type cartItemRow struct {
	CourseID     string        `json:"course_id"`
	TimeSlotID   string        `json:"time_slot_id"`
	SelectedDate string        `json:"selected_date"`
	Course       *courseRow    `json:"courses"`
	TimeSlot     *timeSlotRow  `json:"time_slots"`
}

func (r *cartItemRow) toModel() (model.CartItem, error) {
	if r.CourseID == "" {
		return model.CartItem{}, fmt.Errorf("cart row without course_id")
	}
	if r.Course == nil || r.TimeSlot == nil {
		return model.CartItem{}, fmt.Errorf("cart row %s: missing nested course or time slot", r.CourseID)
	}
	course, err := r.Course.toModel()
	if err != nil {
		return model.CartItem{}, fmt.Errorf("cart row %s: %w", r.CourseID, err)
	}
	slot, err := r.TimeSlot.toModel()
	if err != nil {
		return model.CartItem{}, fmt.Errorf("cart row %s: %w", r.CourseID, err)
	}
	return model.CartItem{
		CourseID:         r.CourseID,
		Course:           course,
		SelectedTimeSlot: slot,
		SelectedDate:     r.SelectedDate,
	}, nil
}

type selectedCourseRow struct {
	CourseID   string       `json:"course_id"`
	TimeSlotID string       `json:"time_slot_id"`
	SelectedAt string       `json:"selected_at"`
	Course     *courseRow   `json:"courses"`
	TimeSlot   *timeSlotRow `json:"time_slots"`
}

func (r *selectedCourseRow) toModel() (model.SelectedCourse, error) {
	if r.CourseID == "" {
		return model.SelectedCourse{}, fmt.Errorf("selection row without course_id")
	}
	if r.Course == nil || r.TimeSlot == nil {
		return model.SelectedCourse{}, fmt.Errorf("selection row %s: missing nested course or time slot", r.CourseID)
	}
	course, err := r.Course.toModel()
	if err != nil {
		return model.SelectedCourse{}, fmt.Errorf("selection row %s: %w", r.CourseID, err)
	}
	slot, err := r.TimeSlot.toModel()
	if err != nil {
		return model.SelectedCourse{}, fmt.Errorf("selection row %s: %w", r.CourseID, err)
	}
	return model.SelectedCourse{
		CourseID:         r.CourseID,
		Course:           course,
		SelectedTimeSlot: slot,
		SelectedAt:       r.SelectedAt,
	}, nil
}

type favoriteRow struct {
	CourseID string `json:"course_id"`
}
