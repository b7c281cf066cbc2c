package model

import "fmt"

// DayOfWeek fixed 7-value enumeration, display values match the catalog
type DayOfWeek string

const (
	Monday    DayOfWeek = "周一"
	Tuesday   DayOfWeek = "周二"
	Wednesday DayOfWeek = "周三"
	Thursday  DayOfWeek = "周四"
	Friday    DayOfWeek = "周五"
	Saturday  DayOfWeek = "周六"
	Sunday    DayOfWeek = "周日"
)

var daysByNumber = [...]DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// DayOfWeekFromNumber maps the store's numeric day_of_week (1=Monday .. 7=Sunday)
func DayOfWeekFromNumber(n int) (DayOfWeek, error) {
	if n < 1 || n > 7 {
		return "", fmt.Errorf("day_of_week out of range: %d", n)
	}
	return daysByNumber[n-1], nil
}

// TimeSlot describes when a course section meets. Immutable once issued by the catalog.
type TimeSlot struct {
	ID        string    `json:"id"`
	DayOfWeek DayOfWeek `json:"dayOfWeek"`
	StartTime string    `json:"startTime"` // wall-clock "HH:MM", no timezone
	EndTime   string    `json:"endTime"`
	Available bool      `json:"available"`
}

// TimeRange returns the "start-end" form used for display and conflict matching
func (t TimeSlot) TimeRange() string {
	return t.StartTime + "-" + t.EndTime
}
