package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rota-app/rota/internal/catalog"
	"github.com/rota-app/rota/internal/changelog"
	"github.com/rota-app/rota/internal/engine"
	"github.com/rota-app/rota/internal/state"
	"github.com/rota-app/rota/internal/store"
)

// App bundles the store and a running engine for one CLI invocation.
// Every command follows the same lifecycle: open, act, Close.
type App struct {
	Store  *store.Store
	Engine *engine.Engine

	runErr chan error
}

// openApp opens the database, loads state and change log, overlays the
// catalog, and starts the engine loop.
func openApp(ctx context.Context, opts *RootOptions) (*App, error) {
	st, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", opts.DBPath, err)
	}

	cat, err := catalog.Load(opts.Catalog)
	if err != nil {
		st.Close()
		return nil, err
	}

	loaded, found, err := st.LoadState(ctx)
	if err != nil {
		st.Close()
		return nil, err
	}
	initial := state.New()
	if found {
		initial = loaded
	}
	initial = seedCatalog(initial, cat)

	entries, err := st.LoadChangeLog(ctx)
	if err != nil {
		st.Close()
		return nil, err
	}

	eng := engine.New(
		engine.WithInitialState(initial),
		engine.WithLog(changelog.Load(entries)),
		engine.WithPersistence(st),
	)

	app := &App{Store: st, Engine: eng, runErr: make(chan error, 1)}
	go func() {
		app.runErr <- eng.Run(ctx)
	}()
	return app, nil
}

// Close drains outstanding effects, stops the engine, and closes the
// database.
func (a *App) Close(ctx context.Context) error {
	drainErr := a.Engine.Drain(ctx)
	a.Engine.Stop()
	runErr := <-a.runErr
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}
	closeErr := a.Store.Close()
	return errors.Join(drainErr, runErr, closeErr)
}

// seedCatalog overlays the catalog file onto the loaded state. The
// file is authoritative for templates and settings; the schedule and
// history come from the database.
func seedCatalog(s state.State, cat catalog.Catalog) state.State {
	templates := make(map[string]state.ShiftTemplate, len(cat.Templates))
	for _, t := range cat.Templates {
		templates[t.ID] = t
	}
	s.Catalog = state.CatalogState{Templates: templates}
	s.Settings = cat.Settings
	return s
}
