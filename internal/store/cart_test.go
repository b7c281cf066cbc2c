package store

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/Freeeeeet/course_select/internal/model"
	"github.com/Freeeeeet/course_select/internal/remote"
	"github.com/Freeeeeet/course_select/internal/remote/remotetest"
	"github.com/Freeeeeet/course_select/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAppEnv(t *testing.T) (*remotetest.Backend, *App) {
	t.Helper()

	backend := remotetest.New()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	client := remote.NewClient(srv.URL, "anon-key", logger)

	local, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)

	return backend, NewApp(client, local, logger)
}

func seedCatalog(backend *remotetest.Backend) {
	backend.AddSlot("slot-sat", remotetest.SlotDef{Day: 6, Start: "09:00", End: "11:00", Available: true})
	backend.AddSlot("slot-sun", remotetest.SlotDef{Day: 7, Start: "14:00", End: "16:00", Available: true})
	backend.AddCourse("math", remotetest.CourseDef{Title: "高中数学提升班", Fee: 50, Teacher: "张老师", SlotIDs: []string{"slot-sat", "slot-sun"}})
	backend.AddCourse("art", remotetest.CourseDef{Title: "美术创意课", Fee: 30, Teacher: "赵老师", SlotIDs: []string{"slot-sun"}})
}

func login(t *testing.T, app *App) {
	t.Helper()
	_, err := app.Login(context.Background(), "张三", "20230001")
	require.NoError(t, err)
}

func testItem(courseID, slotID string, day model.DayOfWeek, start, end string) model.CartItem {
	return model.CartItem{
		CourseID: courseID,
		Course:   model.Course{ID: courseID, Title: "课程" + courseID, MaterialFee: 50},
		SelectedTimeSlot: model.TimeSlot{
			ID: slotID, DayOfWeek: day, StartTime: start, EndTime: end, Available: true,
		},
	}
}

func TestCartAddIsIdempotentOnCourseID(t *testing.T) {
	backend, app := newAppEnv(t)
	seedCatalog(backend)
	login(t, app)

	first := testItem("math", "slot-sat", model.Saturday, "09:00", "11:00")
	second := testItem("math", "slot-sun", model.Sunday, "14:00", "16:00")

	require.NoError(t, app.Cart.Add(context.Background(), first))
	require.NoError(t, app.Cart.Add(context.Background(), second))

	items := app.Cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "slot-sun", items[0].SelectedTimeSlot.ID)

	refs := backend.CartRefs()
	require.Len(t, refs, 1)
	assert.Equal(t, "slot-sun", refs[0].SlotID)
}

func TestCartAddRemoteFailureLeavesStateUntouched(t *testing.T) {
	backend, app := newAppEnv(t)
	seedCatalog(backend)
	login(t, app)

	backend.FailNext("POST cart_items")

	err := app.Cart.Add(context.Background(), testItem("math", "slot-sat", model.Saturday, "09:00", "11:00"))
	require.Error(t, err)

	var callErr *remote.CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "cart_items", callErr.Table)

	assert.Empty(t, app.Cart.Items())
	assert.Empty(t, backend.CartRefs())
}

func TestCartRemoveAndClear(t *testing.T) {
	backend, app := newAppEnv(t)
	seedCatalog(backend)
	backend.SeedCart("math", "slot-sat")
	backend.SeedCart("art", "slot-sun")
	login(t, app)

	require.Len(t, app.Cart.Items(), 2)

	require.NoError(t, app.Cart.Remove(context.Background(), "math"))
	items := app.Cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "art", items[0].CourseID)

	require.NoError(t, app.Cart.Clear(context.Background()))
	assert.Empty(t, app.Cart.Items())
	assert.Empty(t, backend.CartRefs())
}

func TestCartRemoveRemoteFailureKeepsItem(t *testing.T) {
	backend, app := newAppEnv(t)
	seedCatalog(backend)
	backend.SeedCart("math", "slot-sat")
	login(t, app)

	backend.FailNext("DELETE cart_items")

	require.Error(t, app.Cart.Remove(context.Background(), "math"))
	assert.Len(t, app.Cart.Items(), 1)
}

func TestCartUpdateSlot(t *testing.T) {
	backend, app := newAppEnv(t)
	seedCatalog(backend)
	backend.SeedCart("math", "slot-sat")
	login(t, app)

	newSlot := model.TimeSlot{ID: "slot-sun", DayOfWeek: model.Sunday, StartTime: "14:00", EndTime: "16:00", Available: true}
	require.NoError(t, app.Cart.UpdateSlot(context.Background(), "math", newSlot))

	items := app.Cart.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "slot-sun", items[0].SelectedTimeSlot.ID)

	refs := backend.CartRefs()
	require.Len(t, refs, 1)
	assert.Equal(t, "slot-sun", refs[0].SlotID)
}

func TestCartOpsWithoutSessionAreNoOps(t *testing.T) {
	backend, app := newAppEnv(t)
	seedCatalog(backend)

	require.NoError(t, app.Cart.Add(context.Background(), testItem("math", "slot-sat", model.Saturday, "09:00", "11:00")))
	require.NoError(t, app.Cart.Remove(context.Background(), "math"))
	require.NoError(t, app.Cart.Clear(context.Background()))

	assert.Empty(t, app.Cart.Items())
	assert.Empty(t, backend.Calls())
}
