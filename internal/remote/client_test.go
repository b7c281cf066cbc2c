package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSelectSendsFiltersAndAuthHeaders(t *testing.T) {
	var captured *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(r.Context())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"course_id":"math"}]`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "anon-key", zap.NewNop())

	var rows []favoriteRow
	err := client.WithToken("session-token").Select(context.Background(), "favorites", "course_id", Filters{"student_id": "20230001"}, &rows)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "/rest/v1/favorites", captured.URL.Path)
	assert.Equal(t, "course_id", captured.URL.Query().Get("select"))
	assert.Equal(t, "eq.20230001", captured.URL.Query().Get("student_id"))
	assert.Equal(t, "anon-key", captured.Header.Get("apikey"))
	assert.Equal(t, "Bearer session-token", captured.Header.Get("Authorization"))

	require.Len(t, rows, 1)
	assert.Equal(t, "math", rows[0].CourseID)
}

func TestAnonClientFallsBackToAnonBearer(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "anon-key", zap.NewNop())

	var rows []favoriteRow
	require.NoError(t, client.Select(context.Background(), "favorites", "", nil, &rows))
	assert.Equal(t, "Bearer anon-key", auth)
}

func TestUpsertSendsMergePreference(t *testing.T) {
	var prefer, method string
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefer = r.Header.Get("Prefer")
		method = r.Method
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "anon-key", zap.NewNop())
	err := client.Upsert(context.Background(), "cart_items", map[string]string{"course_id": "math"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, method)
	assert.Contains(t, prefer, "resolution=merge-duplicates")
	assert.Equal(t, "math", body["course_id"])
}

func TestNonSuccessStatusBecomesCallError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "anon-key", zap.NewNop())
	err := client.Delete(context.Background(), "cart_items", Filters{"student_id": "20230001"})
	require.Error(t, err)

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "delete", callErr.Op)
	assert.Equal(t, "cart_items", callErr.Table)
	assert.Equal(t, http.StatusForbidden, callErr.Status)
}

func TestLoginByStudent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/functions/v1/login_by_student", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "20230001", req["student_id"])
		assert.Equal(t, "张三", req["name"])

		_, _ = w.Write([]byte(`{"token":"issued-token"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "anon-key", zap.NewNop())
	token, err := client.LoginByStudent(context.Background(), "20230001", "张三")
	require.NoError(t, err)
	assert.Equal(t, "issued-token", token)
}

func TestLoginByStudentErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"学号或姓名错误"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "anon-key", zap.NewNop())
	_, err := client.LoginByStudent(context.Background(), "bad", "bad")
	require.Error(t, err)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "学号或姓名错误", authErr.Message)
	assert.Equal(t, http.StatusUnauthorized, authErr.Status)
}

func TestLoginByStudentMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "anon-key", zap.NewNop())
	_, err := client.LoginByStudent(context.Background(), "20230001", "张三")

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "未获取到令牌", authErr.Message)
}

func TestFetchCoursesRejectsMalformedRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// day_of_week 9 is outside the 7-value enumeration
		_, _ = w.Write([]byte(`[{"id":"math","title":"高中数学提升班","time_slots":[{"id":"s1","day_of_week":9,"start_time":"09:00","end_time":"11:00","available":true}]}]`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "anon-key", zap.NewNop())
	_, err := client.FetchCourses(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "day_of_week")
}

func TestFetchCoursesInstructorFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"math","title":"高中数学提升班","teacher":"张老师","time_slots":[]}]`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "anon-key", zap.NewNop())
	courses, err := client.FetchCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)

	assert.Equal(t, "张老师", courses[0].Teacher.Name)
	assert.Equal(t, "优秀教师", courses[0].Teacher.Bio)
	assert.NotEmpty(t, courses[0].CoverImage)
}
