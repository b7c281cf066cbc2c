package controller

import (
	"net/http"
	"time"

	"github.com/Freeeeeet/course_select/internal/checkout"
	"github.com/Freeeeeet/course_select/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Controller exposes the storefront flows as a JSON API
type Controller struct {
	app          *store.App
	flows        *checkout.Manager
	policy       checkout.Policy
	paymentDelay time.Duration
	logger       *zap.Logger
}

func NewController(app *store.App, flows *checkout.Manager, logger *zap.Logger) *Controller {
	return &Controller{
		app:          app,
		flows:        flows,
		policy:       checkout.KeepNewLeaveExisting,
		paymentDelay: checkout.DefaultPaymentDelay,
		logger:       logger,
	}
}

// SetPaymentDelay overrides the simulated payment delay applied to new flows
func (c *Controller) SetPaymentDelay(d time.Duration) {
	c.paymentDelay = d
}

// Router builds the route surface
func (c *Controller) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(c.logRequests)

	r.Post("/api/login", c.handleLogin)

	// The catalog is readable without a session
	r.Get("/api/courses", c.handleCourses)
	r.Get("/api/courses/{courseID}", c.handleCourse)

	r.Group(func(r chi.Router) {
		r.Use(c.requireSession)

		r.Post("/api/logout", c.handleLogout)

		r.Get("/api/cart", c.handleCart)
		r.Post("/api/cart", c.handleAddToCart)
		r.Put("/api/cart/{courseID}", c.handleUpdateCartItem)
		r.Delete("/api/cart/{courseID}", c.handleRemoveFromCart)

		r.Post("/api/checkout", c.handleCheckout)
		r.Post("/api/checkout/{flowID}/resolve", c.handleResolve)

		r.Post("/api/favorites/{courseID}", c.handleToggleFavorite)
		r.Get("/api/profile", c.handleProfile)
	})

	return r
}

func (c *Controller) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		c.logger.Info("Request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// requireSession rejects requests while logged out
func (c *Controller) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !c.app.Session.LoggedIn() {
			c.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "未登录"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
