package model

// CartItem is a pending, not-yet-confirmed course+time-slot selection.
// The cart holds at most one item per course.
type CartItem struct {
	CourseID         string   `json:"courseId"`
	Course           Course   `json:"course"`
	SelectedTimeSlot TimeSlot `json:"selectedTimeSlot"`
	SelectedDate     string   `json:"selectedDate,omitempty"`
}

// SelectedCourse is a committed enrollment record, created only by checkout
type SelectedCourse struct {
	CourseID         string   `json:"courseId"`
	Course           Course   `json:"course"`
	SelectedTimeSlot TimeSlot `json:"selectedTimeSlot"`
	SelectedAt       string   `json:"selectedAt,omitempty"`
}
