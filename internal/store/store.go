package store

import (
	"context"
	"sync"

	"github.com/Freeeeeet/course_select/internal/model"
	"github.com/Freeeeeet/course_select/internal/remote"
	"github.com/Freeeeeet/course_select/internal/storage"
	"go.uber.org/zap"
)

// App is the explicit application state: one struct owning every store,
// passed by handle into the UI layer. Mutations are method calls returning
// errors, never ambient dispatches.
type App struct {
	Session    *Session
	Catalog    *Catalog
	Cart       *Cart
	Selections *Selection
	Favorites  *Favorites

	logger *zap.Logger
}

func NewApp(client *remote.Client, local *storage.Local, logger *zap.Logger) *App {
	session := NewSession(client, local, logger)
	cart := NewCart(client, session, logger)

	return &App{
		Session:    session,
		Catalog:    NewCatalog(client, logger),
		Cart:       cart,
		Selections: NewSelection(client, session, cart, logger),
		Favorites:  NewFavorites(client, session, logger),
		logger:     logger,
	}
}

// Login authenticates and then reloads favorites, cart and selections from
// the remote store. The three loads are dispatched concurrently; each one
// logs and keeps its own failure, there is no aggregate error.
func (a *App) Login(ctx context.Context, name, studentID string) (*model.Session, error) {
	sess, err := a.Session.Login(ctx, name, studentID)
	if err != nil {
		return nil, err
	}

	a.LoadStudentData(ctx)
	return sess, nil
}

// LoadStudentData refreshes the per-student stores. Also used after a
// restored session on startup.
func (a *App) LoadStudentData(ctx context.Context) {
	var wg sync.WaitGroup
	for _, load := range []func(context.Context) error{
		a.Favorites.Load,
		a.Cart.Load,
		a.Selections.Load,
	} {
		wg.Add(1)
		go func(load func(context.Context) error) {
			defer wg.Done()
			// Failures are already logged by the store itself
			_ = load(ctx)
		}(load)
	}
	wg.Wait()
}

// Logout clears the session (memory and durable entries) and resets cart,
// selections and favorites in memory. Remote rows stay for the next login.
func (a *App) Logout() error {
	if err := a.Session.Logout(); err != nil {
		return err
	}

	a.Cart.reset()
	a.Selections.reset()
	a.Favorites.reset()

	return nil
}
