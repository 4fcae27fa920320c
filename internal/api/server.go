// Package api exposes the power estimator and the course analysis over a
// small JSON HTTP surface.
package api

import (
	"math/rand"
	"net/http"

	"bioeq/adapters/dataset"
	"bioeq/app"
	"bioeq/domain/core"
	"bioeq/domain/study"
	"bioeq/internal"
	"bioeq/internal/power"
	"bioeq/ports"

	"github.com/gin-gonic/gin"
)

// Server wires the JSON endpoints
type Server struct {
	router  *gin.Engine
	log     *internal.Logger
	sink    ports.ArtifactSink
	seed    int64
	nsim    int
	workers int
}

// NewServer creates the API server. The sink receives artifacts when a
// report run is requested over HTTP. Power estimates are partitioned
// across workers when workers > 1.
func NewServer(log *internal.Logger, sink ports.ArtifactSink, seed int64, nsim, workers int) *Server {
	if workers < 1 {
		workers = 1
	}
	s := &Server{
		router:  gin.Default(),
		log:     log,
		sink:    sink,
		seed:    seed,
		nsim:    nsim,
		workers: workers,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	v1.POST("/power", s.handlePower)
	v1.POST("/samplesize", s.handleSampleSize)
	v1.POST("/report", s.handleReport)
	v1.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Router exposes the underlying engine for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server
func (s *Server) Start(addr string) error {
	s.log.Info("API listening on %s", addr)
	return s.router.Run(addr)
}

type powerRequest struct {
	N         int     `json:"n"`
	CVPercent float64 `json:"cv_percent"`
	GMR       float64 `json:"gmr"`
	Design    string  `json:"design"`
	Alpha     float64 `json:"alpha"`
	NSim      int     `json:"nsim"`
	Seed      int64   `json:"seed"`
}

func (s *Server) handlePower(c *gin.Context) {
	var req powerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	design, err := study.ParseDesign(req.Design)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := study.SimulationParams{
		N: req.N, CVPercent: req.CVPercent, GMR: req.GMR,
		Design: design, Alpha: req.Alpha, NSim: req.NSim,
	}.WithDefaults()

	seed := req.Seed
	if seed == 0 {
		seed = s.seed
	}

	var estimate float64
	if s.workers > 1 {
		estimate, err = power.EstimateConcurrent(c.Request.Context(), params, seed, s.workers)
	} else {
		estimate, err = power.Estimate(params, rand.New(rand.NewSource(seed)))
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"params": params, "power": estimate})
}

type sampleSizeRequest struct {
	TargetPower float64 `json:"target_power"`
	CVPercent   float64 `json:"cv_percent"`
	GMR         float64 `json:"gmr"`
	Design      string  `json:"design"`
	Alpha       float64 `json:"alpha"`
	MinN        int     `json:"min_n"`
	MaxN        int     `json:"max_n"`
	Step        int     `json:"step"`
	NSim        int     `json:"nsim"`
	Seed        int64   `json:"seed"`
}

func (s *Server) handleSampleSize(c *gin.Context) {
	var req sampleSizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	design, err := study.ParseDesign(req.Design)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spec := study.SampleSizeSpec{
		TargetPower: req.TargetPower, CVPercent: req.CVPercent, GMR: req.GMR,
		Design: design, Alpha: req.Alpha,
		MinN: req.MinN, MaxN: req.MaxN, Step: req.Step, NSim: req.NSim,
	}.WithDefaults()

	seed := req.Seed
	if seed == 0 {
		seed = s.seed
	}

	result, err := power.FindSampleSize(spec, rand.New(rand.NewSource(seed)))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"spec": spec, "result": result})
}

func (s *Server) handleReport(c *gin.Context) {
	svc := app.NewReportService(s.log, dataset.NewCourseSource(), s.sink, nil, s.seed, s.nsim)
	run, err := svc.Run(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// respondError maps invalid parameters to 400 and everything else to 500
func (s *Server) respondError(c *gin.Context, err error) {
	if core.IsInvalidParameter(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.log.Error("request failed: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
