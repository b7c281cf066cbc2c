package store

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/Freeeeeet/course_select/internal/remote"
	"github.com/Freeeeeet/course_select/internal/remote/remotetest"
	"github.com/Freeeeeet/course_select/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoginSetsSessionAndPersists(t *testing.T) {
	_, app := newAppEnv(t)
	login(t, app)

	sess := app.Session.Current()
	require.NotNil(t, sess)
	assert.Equal(t, "20230001", sess.StudentID)
	assert.Equal(t, "test-token", sess.Token)
	assert.True(t, app.Session.LoggedIn())
}

func TestLoginFailureLeavesLoggedOut(t *testing.T) {
	backend, app := newAppEnv(t)
	backend.LoginError = "学号或姓名错误"

	_, err := app.Login(context.Background(), "张三", "20230001")
	require.Error(t, err)

	var authErr *remote.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "学号或姓名错误", authErr.Message)

	assert.False(t, app.Session.LoggedIn())
	assert.Nil(t, app.Session.Current())
}

func TestSessionRestoreAcrossProcesses(t *testing.T) {
	backend := remotetest.New()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	client := remote.NewClient(srv.URL, "anon-key", logger)

	dir := t.TempDir()
	local, err := storage.NewLocal(dir)
	require.NoError(t, err)

	first := NewApp(client, local, logger)
	_, err = first.Session.Login(context.Background(), "张三", "20230001")
	require.NoError(t, err)

	// A new process sees the persisted session without re-validating the token
	localAgain, err := storage.NewLocal(dir)
	require.NoError(t, err)
	second := NewApp(client, localAgain, logger)

	sess, err := second.Session.Restore()
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "20230001", sess.StudentID)
	assert.Equal(t, "test-token", sess.Token)
	assert.True(t, second.Session.LoggedIn())
}

func TestRestoreWithoutPersistedSession(t *testing.T) {
	_, app := newAppEnv(t)

	sess, err := app.Session.Restore()
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.False(t, app.Session.LoggedIn())
}

func TestLogoutClearsMemoryAndDurableState(t *testing.T) {
	backend, app := newAppEnv(t)
	seedCatalog(backend)
	backend.SeedCart("math", "slot-sat")
	backend.SeedSelected("art", "slot-sun")
	backend.SeedFavorite("math")
	login(t, app)

	require.Len(t, app.Cart.Items(), 1)
	require.Len(t, app.Selections.Items(), 1)
	require.True(t, app.Favorites.Has("math"))

	require.NoError(t, app.Logout())

	assert.False(t, app.Session.LoggedIn())
	assert.Empty(t, app.Cart.Items())
	assert.Empty(t, app.Selections.Items())
	assert.False(t, app.Favorites.Has("math"))

	// Durable entries are gone too
	sess, err := app.Session.Restore()
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestReloginReloadsFromRemoteNotStaleMemory(t *testing.T) {
	backend, app := newAppEnv(t)
	seedCatalog(backend)
	backend.SeedCart("math", "slot-sat")
	backend.SeedSelected("art", "slot-sun")
	backend.SeedFavorite("math")
	login(t, app)

	require.NoError(t, app.Logout())

	// Server-side rows survive the logout and come back on the next login
	assert.Len(t, backend.CartRefs(), 1)

	login(t, app)
	assert.Len(t, app.Cart.Items(), 1)
	assert.Len(t, app.Selections.Items(), 1)
	assert.True(t, app.Favorites.Has("math"))
}
