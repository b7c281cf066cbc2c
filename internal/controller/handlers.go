package controller

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Freeeeeet/course_select/internal/checkout"
	"github.com/Freeeeeet/course_select/internal/model"
	"github.com/go-chi/chi/v5"
)

type loginRequest struct {
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
}

type sessionResponse struct {
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
}

func (c *Controller) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	name := strings.TrimSpace(req.Name)
	studentID := strings.TrimSpace(req.StudentID)
	if name == "" || studentID == "" {
		c.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "请输入姓名和学号"})
		return
	}

	sess, err := c.app.Login(r.Context(), name, studentID)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, sessionResponse{Name: sess.Name, StudentID: sess.StudentID})
}

func (c *Controller) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := c.app.Session.Current()

	if err := c.app.Logout(); err != nil {
		c.writeError(w, err)
		return
	}
	if sess != nil {
		c.flows.Clear(sess.StudentID)
	}

	c.writeJSON(w, http.StatusNoContent, nil)
}

func (c *Controller) handleCourses(w http.ResponseWriter, r *http.Request) {
	if refresh := r.URL.Query().Get("refresh"); refresh == "1" || refresh == "true" {
		if err := c.app.Catalog.Load(r.Context()); err != nil {
			c.writeError(w, err)
			return
		}
	}

	c.writeJSON(w, http.StatusOK, c.app.Catalog.Courses())
}

func (c *Controller) handleCourse(w http.ResponseWriter, r *http.Request) {
	course, err := c.app.Catalog.ByID(chi.URLParam(r, "courseID"))
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, course)
}

type cartResponse struct {
	Items []model.CartItem `json:"items"`
	Count int              `json:"count"`
	Total string           `json:"total"`
}

func cartTotal(items []model.CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Course.MaterialFee
	}
	return total
}

func (c *Controller) handleCart(w http.ResponseWriter, r *http.Request) {
	items := c.app.Cart.Items()
	c.writeJSON(w, http.StatusOK, cartResponse{
		Items: items,
		Count: len(items),
		Total: formatPrice(cartTotal(items)),
	})
}

type addToCartRequest struct {
	CourseID     string `json:"courseId"`
	TimeSlotID   string `json:"timeSlotId"`
	SelectedDate string `json:"selectedDate"`
}

func (c *Controller) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	course, err := c.app.Catalog.ByID(req.CourseID)
	if err != nil {
		c.writeError(w, err)
		return
	}

	slot := course.SlotByID(req.TimeSlotID)
	if slot == nil {
		c.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "time slot does not belong to the course"})
		return
	}

	item := model.CartItem{
		CourseID:         course.ID,
		Course:           course,
		SelectedTimeSlot: *slot,
		SelectedDate:     req.SelectedDate,
	}
	if err := c.app.Cart.Add(r.Context(), item); err != nil {
		c.writeError(w, err)
		return
	}

	c.handleCart(w, r)
}

type updateCartRequest struct {
	TimeSlotID string `json:"timeSlotId"`
}

func (c *Controller) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	var req updateCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	course, err := c.app.Catalog.ByID(courseID)
	if err != nil {
		c.writeError(w, err)
		return
	}

	slot := course.SlotByID(req.TimeSlotID)
	if slot == nil {
		c.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "time slot does not belong to the course"})
		return
	}

	if err := c.app.Cart.UpdateSlot(r.Context(), courseID, *slot); err != nil {
		c.writeError(w, err)
		return
	}

	c.handleCart(w, r)
}

func (c *Controller) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	if err := c.app.Cart.Remove(r.Context(), chi.URLParam(r, "courseID")); err != nil {
		c.writeError(w, err)
		return
	}

	c.handleCart(w, r)
}

type checkoutRequest struct {
	Policy string `json:"policy"`
}

type checkoutResponse struct {
	FlowID    string             `json:"flowId"`
	Status    checkout.Status    `json:"status"`
	Message   string             `json:"message,omitempty"`
	Conflict  *checkout.Conflict `json:"conflict,omitempty"`
	Remaining int                `json:"remaining,omitempty"`
	Courses   int                `json:"courses,omitempty"`
	Total     string             `json:"total,omitempty"`
}

func (c *Controller) checkoutResult(studentID string, flow *checkout.Flow, res *checkout.Result) checkoutResponse {
	resp := checkoutResponse{FlowID: flow.ID, Status: res.Status}

	switch res.Status {
	case checkout.StatusEmpty:
		resp.Message = "没有要结算的课程"
		c.flows.Clear(studentID)
	case checkout.StatusConflict:
		resp.Message = "检测到时间冲突"
		resp.Conflict = res.Conflict
		resp.Remaining = res.Remaining
	case checkout.StatusCommitted:
		resp.Message = "恭喜，选课成功！"
		resp.Courses = len(res.Committed)
		resp.Total = formatPrice(cartTotal(res.Committed))
		c.flows.Clear(studentID)
	}

	return resp
}

func (c *Controller) handleCheckout(w http.ResponseWriter, r *http.Request) {
	sess := c.app.Session.Current()

	policy := c.policy
	if r.ContentLength > 0 {
		var req checkoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			c.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		switch checkout.Policy(req.Policy) {
		case "":
		case checkout.KeepNewLeaveExisting, checkout.KeepNewRemoveExisting:
			policy = checkout.Policy(req.Policy)
		default:
			c.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown policy"})
			return
		}
	}

	flow := checkout.NewFlow(c.app.Cart, c.app.Selections, policy, c.logger)
	flow.SetPaymentDelay(c.paymentDelay)
	c.flows.Start(sess.StudentID, flow)

	res, err := flow.Submit(r.Context())
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, c.checkoutResult(sess.StudentID, flow, res))
}

type resolveRequest struct {
	Choice string `json:"choice"`
}

func (c *Controller) handleResolve(w http.ResponseWriter, r *http.Request) {
	sess := c.app.Session.Current()

	flow := c.flows.Get(sess.StudentID)
	if flow == nil || flow.ID != chi.URLParam(r, "flowID") {
		c.writeJSON(w, http.StatusNotFound, errorResponse{Error: "checkout flow not found"})
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	choice := checkout.Choice(req.Choice)
	if choice != checkout.KeepNew && choice != checkout.KeepExisting {
		c.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown choice"})
		return
	}

	res, err := flow.Resolve(r.Context(), choice)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, c.checkoutResult(sess.StudentID, flow, res))
}

type favoriteResponse struct {
	CourseID string `json:"courseId"`
	Favorite bool   `json:"favorite"`
}

func (c *Controller) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	favorite, err := c.app.Favorites.Toggle(r.Context(), courseID)
	if err != nil {
		c.writeError(w, err)
		return
	}

	c.writeJSON(w, http.StatusOK, favoriteResponse{CourseID: courseID, Favorite: favorite})
}

type profileResponse struct {
	User            sessionResponse        `json:"user"`
	SelectedCourses []model.SelectedCourse `json:"selectedCourses"`
	Favorites       []string               `json:"favorites"`
}

func (c *Controller) handleProfile(w http.ResponseWriter, r *http.Request) {
	sess := c.app.Session.Current()

	c.writeJSON(w, http.StatusOK, profileResponse{
		User:            sessionResponse{Name: sess.Name, StudentID: sess.StudentID},
		SelectedCourses: c.app.Selections.Items(),
		Favorites:       c.app.Favorites.IDs(),
	})
}
