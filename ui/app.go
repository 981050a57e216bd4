package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"battwatch/internal/config"
	"battwatch/internal/dataset"
	"battwatch/internal/modelinfo"
	"battwatch/internal/store"
	"battwatch/ports"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// App is the dashboard UI application: one chi router, one handler
// per navigation destination, server-rendered templates.
type App struct {
	router      *chi.Mux
	store       *store.ArtifactStore
	loader      *dataset.Loader
	registry    ports.UploadRegistry
	inspector   *modelinfo.Inspector
	templates   *template.Template
	port        string
	monitorTick time.Duration
}

// NewApp creates the dashboard application. The registry may be nil;
// uploads then skip history recording but are still persisted.
func NewApp(cfg *config.Config, artifactStore *store.ArtifactStore, registry ports.UploadRegistry) (*App, error) {
	loader := dataset.NewLoader(artifactStore)

	funcMap := template.FuncMap{
		"mulf": func(a, b float64) float64 { return a * b },
		"pct": func(v float64) string {
			return fmt.Sprintf("%.1f%%", v)
		},
		"num": func(v float64) string {
			return fmt.Sprintf("%.3f", v)
		},
		"comma": func(n int) string {
			s := fmt.Sprintf("%d", n)
			for i := len(s) - 3; i > 0; i -= 3 {
				s = s[:i] + "," + s[i:]
			}
			return s
		},
		"bytes": func(n int64) string {
			switch {
			case n >= 1<<20:
				return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
			case n >= 1<<10:
				return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
			default:
				return fmt.Sprintf("%d B", n)
			}
		},
		"upper": strings.ToUpper,
		"shortHash": func(s string) string {
			if len(s) > 12 {
				return s[:12]
			}
			return s
		},
	}

	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:      chi.NewRouter(),
		store:       artifactStore,
		loader:      loader,
		registry:    registry,
		inspector:   modelinfo.NewInspector(artifactStore, registry),
		templates:   templates,
		port:        cfg.Server.Port,
		monitorTick: time.Duration(cfg.Monitor.TickMillis) * time.Millisecond,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	staticFS := http.FileServer(http.FS(embeddedFiles))
	a.router.Handle("/static/*", staticFS)
}

// setupRoutes configures the application routes. Each navigation
// destination maps to exactly one handler.
func (a *App) setupRoutes() {
	// Pages
	a.router.Get("/", a.handleHome)
	a.router.Get("/explore", a.handleExplore)
	a.router.Get("/performance", a.handlePerformance)
	a.router.Get("/predict", a.handlePredict)
	a.router.Get("/monitor", a.handleMonitor)

	// Uploads
	a.router.Post("/upload/dataset", a.handleDatasetUpload)
	a.router.Post("/upload/model/{kind}", a.handleModelUpload)

	// Report export
	a.router.Get("/export", a.handleExport)

	// Live monitoring feed
	a.router.Get("/ws/monitor", a.handleMonitorSocket)
}

// Router exposes the handler tree for embedding and tests.
func (a *App) Router() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start() error {
	addr := ":" + a.port
	log.Printf("Starting battwatch dashboard on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// renderTemplate executes a page template
func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		log.Printf("Template error for %s: %v", templateName, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
