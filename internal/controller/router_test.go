package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Freeeeeet/course_select/internal/checkout"
	"github.com/Freeeeeet/course_select/internal/remote"
	"github.com/Freeeeeet/course_select/internal/remote/remotetest"
	"github.com/Freeeeeet/course_select/internal/storage"
	"github.com/Freeeeeet/course_select/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedCatalog(backend *remotetest.Backend) {
	backend.AddSlot("slot-math", remotetest.SlotDef{Day: 6, Start: "09:00", End: "11:00", Available: true})
	backend.AddSlot("slot-english", remotetest.SlotDef{Day: 6, Start: "09:00", End: "11:00", Available: true})
	backend.AddSlot("slot-art", remotetest.SlotDef{Day: 3, Start: "18:00", End: "20:00", Available: true})

	backend.AddCourse("math", remotetest.CourseDef{Title: "高中数学提升班", Fee: 50, Teacher: "张老师", SlotIDs: []string{"slot-math"}})
	backend.AddCourse("english", remotetest.CourseDef{Title: "英语口语训练营", Fee: 80, Teacher: "李老师", SlotIDs: []string{"slot-english"}})
	backend.AddCourse("art", remotetest.CourseDef{Title: "美术创意课", Fee: 30, Teacher: "赵老师", SlotIDs: []string{"slot-art"}})
}

func newServerEnv(t *testing.T) (*remotetest.Backend, http.Handler) {
	t.Helper()

	backend := remotetest.New()
	seedCatalog(backend)

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	client := remote.NewClient(srv.URL, "anon-key", logger)

	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	app := store.NewApp(client, local, logger)
	require.NoError(t, app.Catalog.Load(context.Background()))

	ctrl := NewController(app, checkout.NewManager(), logger)
	ctrl.SetPaymentDelay(0)
	return backend, ctrl.Router()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, payload any) (int, map[string]any) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, path, &body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec.Code, decoded
}

func doLogin(t *testing.T, handler http.Handler) {
	t.Helper()
	status, _ := doJSON(t, handler, http.MethodPost, "/api/login", map[string]string{
		"name": "张三", "studentId": "20230001",
	})
	require.Equal(t, http.StatusOK, status)
}

func TestLoginAndProfile(t *testing.T) {
	_, handler := newServerEnv(t)
	doLogin(t, handler)

	status, body := doJSON(t, handler, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, status)

	user := body["user"].(map[string]any)
	assert.Equal(t, "张三", user["name"])
	assert.Equal(t, "20230001", user["studentId"])
}

func TestSessionRequired(t *testing.T) {
	_, handler := newServerEnv(t)

	status, body := doJSON(t, handler, http.MethodGet, "/api/cart", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "未登录", body["error"])
}

func TestLoginFailureSurfacesMessage(t *testing.T) {
	backend, handler := newServerEnv(t)
	backend.LoginError = "学号或姓名错误"

	status, body := doJSON(t, handler, http.MethodPost, "/api/login", map[string]string{
		"name": "张三", "studentId": "bad",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "学号或姓名错误", body["error"])
}

func TestCourseLookup(t *testing.T) {
	_, handler := newServerEnv(t)

	status, body := doJSON(t, handler, http.MethodGet, "/api/courses/math", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "高中数学提升班", body["title"])

	status, body = doJSON(t, handler, http.MethodGet, "/api/courses/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "course not found", body["error"])
}

func TestCartEndpoints(t *testing.T) {
	_, handler := newServerEnv(t)
	doLogin(t, handler)

	status, body := doJSON(t, handler, http.MethodPost, "/api/cart", map[string]string{
		"courseId": "math", "timeSlotId": "slot-math",
	})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, "¥ 50", body["total"])

	// Slot must belong to the course
	status, _ = doJSON(t, handler, http.MethodPost, "/api/cart", map[string]string{
		"courseId": "math", "timeSlotId": "slot-art",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = doJSON(t, handler, http.MethodDelete, "/api/cart/math", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["count"])
}

func TestCheckoutConflictFlow(t *testing.T) {
	backend, handler := newServerEnv(t)
	backend.SeedSelected("english", "slot-english")
	doLogin(t, handler)

	status, _ := doJSON(t, handler, http.MethodPost, "/api/cart", map[string]string{
		"courseId": "math", "timeSlotId": "slot-math",
	})
	require.Equal(t, http.StatusOK, status)

	status, body := doJSON(t, handler, http.MethodPost, "/api/checkout", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "conflict", body["status"])
	flowID := body["flowId"].(string)
	require.NotEmpty(t, flowID)

	conflict := body["conflict"].(map[string]any)
	newItem := conflict["newItem"].(map[string]any)
	assert.Equal(t, "math", newItem["courseId"])

	// Keeping the existing course empties the cart, nothing left to check out
	status, body = doJSON(t, handler, http.MethodPost, fmt.Sprintf("/api/checkout/%s/resolve", flowID), map[string]string{
		"choice": "keep_existing",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "empty", body["status"])
	assert.Equal(t, "没有要结算的课程", body["message"])

	// A conflict-free order commits
	status, _ = doJSON(t, handler, http.MethodPost, "/api/cart", map[string]string{
		"courseId": "art", "timeSlotId": "slot-art",
	})
	require.Equal(t, http.StatusOK, status)

	status, body = doJSON(t, handler, http.MethodPost, "/api/checkout", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "committed", body["status"])
	assert.EqualValues(t, 1, body["courses"])
	assert.Equal(t, "¥ 30", body["total"])

	status, body = doJSON(t, handler, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["selectedCourses"], 2)
}

func TestResolveUnknownFlow(t *testing.T) {
	_, handler := newServerEnv(t)
	doLogin(t, handler)

	status, body := doJSON(t, handler, http.MethodPost, "/api/checkout/does-not-exist/resolve", map[string]string{
		"choice": "keep_new",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "checkout flow not found", body["error"])
}

func TestToggleFavoriteEndpoint(t *testing.T) {
	backend, handler := newServerEnv(t)
	doLogin(t, handler)

	status, body := doJSON(t, handler, http.MethodPost, "/api/favorites/math", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["favorite"])
	assert.Equal(t, []string{"math"}, backend.Favorites())

	status, body = doJSON(t, handler, http.MethodPost, "/api/favorites/math", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["favorite"])
	assert.Empty(t, backend.Favorites())
}
