// Package apitest spins up a complete API server for end-to-end tests.
// It lives apart from testutil so packages the server depends on can use
// testutil.SetupTestDB in their own tests without an import cycle.
package apitest

import (
	"net/http/httptest"
	"testing"

	"github.com/vrsandeep/casetrack-go/internal/api"
	"github.com/vrsandeep/casetrack-go/internal/config"
	"github.com/vrsandeep/casetrack-go/internal/core"
	"github.com/vrsandeep/casetrack-go/internal/research"
	"github.com/vrsandeep/casetrack-go/internal/research/providers"
	"github.com/vrsandeep/casetrack-go/internal/research/providers/mockcourt"
	"github.com/vrsandeep/casetrack-go/internal/scheduler"
	"github.com/vrsandeep/casetrack-go/internal/store"
	"github.com/vrsandeep/casetrack-go/internal/testutil"
	"github.com/vrsandeep/casetrack-go/internal/websocket"
)

// SetupTestServer builds a full API server over an in-memory database with
// the mock research provider registered. It returns the running test server
// and the store for direct fixture setup.
func SetupTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	providers.Register(mockcourt.New())
	t.Cleanup(providers.UnregisterAll)

	conn := testutil.SetupTestDB(t)

	cfg := &config.Config{}
	cfg.Research.Provider = "mockcourt"
	cfg.Research.Workers = 1

	hub := websocket.NewHub()
	go hub.Run()

	app := &core.App{
		Config:  cfg,
		DB:      conn,
		WsHub:   hub,
		Version: "test",
	}

	st := store.New(conn)
	rs := research.NewService(st, cfg, hub, nil)
	sched := scheduler.New(rs, 0)
	sched.Start()
	t.Cleanup(sched.Stop)

	server := api.NewServer(app, rs, sched)
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	return ts, st
}
