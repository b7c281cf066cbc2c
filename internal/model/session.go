package model

// Session is the logged-in identity plus its bearer token
type Session struct {
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
	Token     string `json:"-"`
}

// Identity is the part of the session persisted as JSON (the token is stored separately)
type Identity struct {
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
}
