package model

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

type MediaItem struct {
	ID        string    `json:"id"`
	Type      MediaType `json:"type"`
	URL       string    `json:"url"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	Title     string    `json:"title,omitempty"`
}

// Teacher is the instructor record attached to a course
type Teacher struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Avatar      string   `json:"avatar"`
	Bio         string   `json:"bio"`
	Specialties []string `json:"specialties"`
	Rating      float64  `json:"rating"`
}

// Course is read-only from this service's perspective
type Course struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Teacher      Teacher     `json:"teacher"`
	TimeSlots    []TimeSlot  `json:"timeSlots"`
	MaterialFee  int         `json:"materialFee"`
	Category     string      `json:"category"`
	Grade        string      `json:"grade"`
	Description  string      `json:"description"`
	CoverImage   string      `json:"coverImage"`
	MediaContent []MediaItem `json:"mediaContent"`
	Rating       float64     `json:"rating"`
	ReviewCount  int         `json:"reviewCount"`
	Tags         []string    `json:"tags"`
	Capacity     int         `json:"capacity"`
	Enrolled     int         `json:"enrolled"`
}

// SlotByID finds a time slot of the course, nil if absent
func (c *Course) SlotByID(slotID string) *TimeSlot {
	for i := range c.TimeSlots {
		if c.TimeSlots[i].ID == slotID {
			return &c.TimeSlots[i]
		}
	}
	return nil
}
