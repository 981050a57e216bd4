package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"battwatch/domain/battery"
	"battwatch/internal/analysis"
	"battwatch/internal/config"
	"battwatch/internal/dataset"
	"battwatch/internal/errors"
	"battwatch/internal/modelinfo"
	"battwatch/internal/store"
	"battwatch/ports"
)

// Server is the JSON API surface over the same loader and analysis
// services the dashboard renders from.
type Server struct {
	router    *gin.Engine
	loader    *dataset.Loader
	inspector *modelinfo.Inspector
	registry  ports.UploadRegistry
	port      string
}

// NewServer creates the API server. The registry may be nil; the
// uploads endpoint then reports an empty history.
func NewServer(cfg *config.Config, artifactStore *store.ArtifactStore, registry ports.UploadRegistry) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		router:    gin.Default(),
		loader:    dataset.NewLoader(artifactStore),
		inspector: modelinfo.NewInspector(artifactStore, registry),
		registry:  registry,
		port:      cfg.Server.APIPort,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/api/health", s.handleHealth)
	s.router.GET("/api/summary", s.handleSummary)
	s.router.GET("/api/features", s.handleFeatures)
	s.router.GET("/api/batteries", s.handleBatteries)
	s.router.GET("/api/scores", s.handleScores)
	s.router.GET("/api/artifacts", s.handleArtifacts)
	s.router.GET("/api/uploads", s.handleUploads)
}

// Handler returns the engine wrapped with CORS for cross-origin
// dashboard tooling.
func (s *Server) Handler() http.Handler {
	return cors.Default().Handler(s.router)
}

// Start starts the API server.
func (s *Server) Start() error {
	addr := ":" + s.port
	log.Printf("Starting battwatch API on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// loadDataset maps a missing dataset to a 404 with the upload hint.
func (s *Server) loadDataset(c *gin.Context) (*battery.Dataset, bool) {
	ds, err := s.loader.Load()
	if err != nil {
		if errors.HasCode(err, errors.CodeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no dataset uploaded"})
		} else {
			log.Printf("[API] Dataset load failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dataset"})
		}
		return nil, false
	}
	return ds, true
}

func (s *Server) handleSummary(c *gin.Context) {
	ds, ok := s.loadDataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, battery.Summarize(ds))
}

func (s *Server) handleFeatures(c *gin.Context) {
	ds, ok := s.loadDataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"features": analysis.ProfileFeatures(ds)})
}

func (s *Server) handleBatteries(c *gin.Context) {
	ds, ok := s.loadDataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"batteries": analysis.ProfileBatteries(c.Request.Context(), ds)})
}

func (s *Server) handleScores(c *gin.Context) {
	ds, ok := s.loadDataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": analysis.ScoreBatteries(c.Request.Context(), ds)})
}

func (s *Server) handleArtifacts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"artifacts": s.inspector.InspectAll(c.Request.Context())})
}

func (s *Server) handleUploads(c *gin.Context) {
	if s.registry == nil {
		c.JSON(http.StatusOK, gin.H{"uploads": []interface{}{}})
		return
	}
	uploads, err := s.registry.ListRecent(c.Request.Context(), 20)
	if err != nil {
		log.Printf("[API] Failed to list uploads: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list uploads"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploads": uploads})
}
