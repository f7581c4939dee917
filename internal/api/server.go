// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vrsandeep/casetrack-go/internal/core"
	"github.com/vrsandeep/casetrack-go/internal/importer"
	"github.com/vrsandeep/casetrack-go/internal/research"
	"github.com/vrsandeep/casetrack-go/internal/scheduler"
	"github.com/vrsandeep/casetrack-go/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app       *core.App
	store     *store.Store
	research  *research.Service
	scheduler *scheduler.Service
	importer  *importer.Service
}

// NewServer creates a new Server instance.
func NewServer(app *core.App, rs *research.Service, sched *scheduler.Service) *Server {
	st := store.New(app.DB)
	return &Server{
		app:       app,
		store:     st,
		research:  rs,
		scheduler: sched,
		importer:  importer.New(st),
	}
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/api/version", s.handleGetVersion)
	r.Get("/api/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/cases", s.handleListCases)
		r.Post("/cases", s.handleAddCase)
		r.Post("/add_case", s.handleAddCase)
		r.Get("/cases/upcoming-hearings", s.handleUpcomingHearings)
		r.Get("/cases/{caseID}", s.handleGetCase)
		r.Put("/cases/{caseID}", s.handleUpdateCase)
		r.Delete("/cases/{caseID}", s.handleDeleteCase)

		r.Post("/trigger_update/{caseID}", s.handleTriggerUpdate)
		r.Post("/trigger_update", s.handleTriggerUpdate)
		r.Post("/trigger_all", s.handleTriggerAll)
		r.Get("/progress/{caseID}", s.handleGetProgress)

		r.Get("/scheduler/status", s.handleSchedulerStatus)
		r.Post("/scheduler/run-now", s.handleSchedulerRunNow)
		r.Post("/schedule_custom_check", s.handleScheduleCustomCheck)

		r.Post("/import_cases", s.handleImportCases)
	})

	// WebSocket endpoint for research progress updates
	r.Get("/ws/progress", func(w http.ResponseWriter, r *http.Request) {
		s.app.WsHub.ServeWs(w, r)
	})

	return r
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithData(w, http.StatusOK, map[string]interface{}{"version": s.app.Version})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	running := false
	if s.scheduler != nil {
		running, _ = s.scheduler.Status()
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "healthy",
		"scheduler_running": running,
	})
}
