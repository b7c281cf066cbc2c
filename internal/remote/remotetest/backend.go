// Package remotetest provides an in-memory stand-in for the external row
// store and login endpoint, for use in tests.
package remotetest

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
)

type SlotDef struct {
	Day       int
	Start     string
	End       string
	Available bool
}

type CourseDef struct {
	Title   string
	Fee     int
	Teacher string
	SlotIDs []string
}

// Ref is one cart or selection row, student scoping implied
type Ref struct {
	CourseID string
	SlotID   string
}

// Backend serves the row-level API surface the client expects: login
// function, courses with nested relations, favorites, cart_items and
// selected_courses scoped by student_id.
type Backend struct {
	mu sync.Mutex

	// Token is the bearer token issued by login and required on every
	// student-scoped table call
	Token string
	// LoginError, when set, makes login fail with 401 and this message
	LoginError string

	courses     map[string]CourseDef
	courseOrder []string
	slots       map[string]SlotDef

	cart      []Ref
	selected  []Ref
	favorites []string

	failOnce map[string]bool
	calls    []string
}

func New() *Backend {
	return &Backend{
		Token:    "test-token",
		courses:  make(map[string]CourseDef),
		slots:    make(map[string]SlotDef),
		failOnce: make(map[string]bool),
	}
}

func (b *Backend) AddSlot(id string, def SlotDef) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slots[id] = def
}

func (b *Backend) AddCourse(id string, def CourseDef) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, seen := b.courses[id]; !seen {
		b.courseOrder = append(b.courseOrder, id)
	}
	b.courses[id] = def
}

func (b *Backend) SeedCart(courseID, slotID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cart = append(b.cart, Ref{CourseID: courseID, SlotID: slotID})
}

func (b *Backend) SeedSelected(courseID, slotID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected = append(b.selected, Ref{CourseID: courseID, SlotID: slotID})
}

func (b *Backend) SeedFavorite(courseID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.favorites = append(b.favorites, courseID)
}

// FailNext makes the next call of the given kind fail with 500.
// Kind is "METHOD table", e.g. "POST selected_courses".
func (b *Backend) FailNext(kind string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failOnce[kind] = true
}

func (b *Backend) CartRefs() []Ref {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Ref(nil), b.cart...)
}

func (b *Backend) SelectedRefs() []Ref {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Ref(nil), b.selected...)
}

func (b *Backend) Favorites() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.favorites...)
}

// Calls lists the row operations seen so far as "METHOD table"
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/functions/v1/login_by_student" {
		b.handleLogin(w, r)
		return
	}

	if !strings.HasPrefix(r.URL.Path, "/rest/v1/") {
		http.NotFound(w, r)
		return
	}
	table := strings.TrimPrefix(r.URL.Path, "/rest/v1/")

	b.mu.Lock()
	defer b.mu.Unlock()

	kind := r.Method + " " + table
	b.calls = append(b.calls, kind)

	if b.failOnce[kind] {
		delete(b.failOnce, kind)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "injected failure"})
		return
	}

	if table != "courses" && r.Header.Get("Authorization") != "Bearer "+b.Token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "JWT required"})
		return
	}

	eq := func(col string) string {
		return strings.TrimPrefix(r.URL.Query().Get(col), "eq.")
	}

	switch table {
	case "courses":
		b.handleCourses(w)
	case "favorites":
		b.handleFavorites(w, r, eq)
	case "cart_items":
		b.handleCartItems(w, r, eq)
	case "selected_courses":
		b.handleSelectedCourses(w, r, eq)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "unknown table"})
	}
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	if b.LoginError != "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": b.LoginError})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": b.Token})
}

func (b *Backend) handleCourses(w http.ResponseWriter) {
	rows := make([]map[string]any, 0, len(b.courseOrder))
	for _, id := range b.courseOrder {
		def := b.courses[id]
		slots := make([]map[string]any, 0, len(def.SlotIDs))
		for _, slotID := range def.SlotIDs {
			slots = append(slots, b.slotRow(slotID))
		}
		rows = append(rows, map[string]any{
			"id":           id,
			"title":        def.Title,
			"teacher":      def.Teacher,
			"material_fee": def.Fee,
			"time_slots":   slots,
		})
	}
	writeJSON(w, http.StatusOK, rows)
}

func (b *Backend) handleFavorites(w http.ResponseWriter, r *http.Request, eq func(string) string) {
	switch r.Method {
	case http.MethodGet:
		rows := make([]map[string]string, 0, len(b.favorites))
		for _, id := range b.favorites {
			rows = append(rows, map[string]string{"course_id": id})
		}
		writeJSON(w, http.StatusOK, rows)

	case http.MethodPost:
		var row map[string]string
		if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		b.favorites = append(b.favorites, row["course_id"])
		w.WriteHeader(http.StatusCreated)

	case http.MethodDelete:
		courseID := eq("course_id")
		kept := b.favorites[:0]
		for _, id := range b.favorites {
			if id != courseID {
				kept = append(kept, id)
			}
		}
		b.favorites = kept
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (b *Backend) handleCartItems(w http.ResponseWriter, r *http.Request, eq func(string) string) {
	switch r.Method {
	case http.MethodGet:
		rows := make([]map[string]any, 0, len(b.cart))
		for _, ref := range b.cart {
			rows = append(rows, map[string]any{
				"course_id":    ref.CourseID,
				"time_slot_id": ref.SlotID,
				"courses":      b.courseRow(ref.CourseID),
				"time_slots":   b.slotRow(ref.SlotID),
			})
		}
		writeJSON(w, http.StatusOK, rows)

	case http.MethodPost: // upsert keyed by (student_id, course_id)
		var row map[string]string
		if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		replaced := false
		for i := range b.cart {
			if b.cart[i].CourseID == row["course_id"] {
				b.cart[i].SlotID = row["time_slot_id"]
				replaced = true
			}
		}
		if !replaced {
			b.cart = append(b.cart, Ref{CourseID: row["course_id"], SlotID: row["time_slot_id"]})
		}
		w.WriteHeader(http.StatusCreated)

	case http.MethodPatch:
		var patch map[string]string
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		courseID := eq("course_id")
		for i := range b.cart {
			if b.cart[i].CourseID == courseID {
				b.cart[i].SlotID = patch["time_slot_id"]
			}
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		if courseID := eq("course_id"); courseID != "" {
			kept := b.cart[:0]
			for _, ref := range b.cart {
				if ref.CourseID != courseID {
					kept = append(kept, ref)
				}
			}
			b.cart = kept
		} else {
			b.cart = nil
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (b *Backend) handleSelectedCourses(w http.ResponseWriter, r *http.Request, eq func(string) string) {
	switch r.Method {
	case http.MethodGet:
		rows := make([]map[string]any, 0, len(b.selected))
		for _, ref := range b.selected {
			rows = append(rows, map[string]any{
				"course_id":    ref.CourseID,
				"time_slot_id": ref.SlotID,
				"courses":      b.courseRow(ref.CourseID),
				"time_slots":   b.slotRow(ref.SlotID),
			})
		}
		writeJSON(w, http.StatusOK, rows)

	case http.MethodPost: // bulk insert
		var rows []map[string]string
		if err := json.NewDecoder(r.Body).Decode(&rows); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		for _, row := range rows {
			b.selected = append(b.selected, Ref{CourseID: row["course_id"], SlotID: row["time_slot_id"]})
		}
		w.WriteHeader(http.StatusCreated)

	case http.MethodDelete:
		courseID := eq("course_id")
		kept := b.selected[:0]
		for _, ref := range b.selected {
			if ref.CourseID != courseID {
				kept = append(kept, ref)
			}
		}
		b.selected = kept
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (b *Backend) courseRow(id string) map[string]any {
	def := b.courses[id]
	return map[string]any{
		"id":           id,
		"title":        def.Title,
		"teacher":      def.Teacher,
		"material_fee": def.Fee,
	}
}

func (b *Backend) slotRow(id string) map[string]any {
	def := b.slots[id]
	return map[string]any{
		"id":          id,
		"day_of_week": def.Day,
		"start_time":  def.Start,
		"end_time":    def.End,
		"available":   def.Available,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
