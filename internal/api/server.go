package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/licitapp/licitapp/internal/catalog"
	"github.com/licitapp/licitapp/internal/db"
	"github.com/licitapp/licitapp/internal/models"
	"github.com/licitapp/licitapp/internal/placsp"
)

type Server struct {
	Store *db.Store
	Echo  *echo.Echo
	DB    *pgxpool.Pool

	snapshotPath string
	syncConfig   *placsp.Config

	// Current snapshot; swapped wholesale on (re)load. loadErr holds
	// the single user-facing message after a failed load.
	snapMu   sync.RWMutex
	snapshot *catalog.Snapshot
	loadErr  string

	// Background job tracking
	jobMu      sync.Mutex
	runningJob *backgroundJob
}

type backgroundJob struct {
	ID        string             `json:"id"`
	Status    string             `json:"status"` // running, completed, failed
	StartedAt time.Time          `json:"started_at"`
	EndedAt   time.Time          `json:"ended_at,omitempty"`
	Result    any                `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	Cancel    context.CancelFunc `json:"-"`
}

var (
	adminSecretOnce    sync.Once
	adminSecretRuntime string
	adminSecretErr     error
)

func NewServer(pool *pgxpool.Pool, snapshotPath string, syncConfig *placsp.Config) *Server {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// CORS: allow frontend origins from env or default to localhost
	allowedOrigins := []string{"http://localhost:4200"}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				allowedOrigins = append(allowedOrigins, o)
			}
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-Admin-Secret"},
	}))

	s := &Server{
		DB:           pool,
		Store:        db.NewStore(pool),
		Echo:         e,
		snapshotPath: snapshotPath,
		syncConfig:   syncConfig,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Echo.GET("/health", s.handleHealth)
	api := s.Echo.Group("/api/v1")
	api.GET("/tenders", s.handleListTenders)
	api.GET("/tenders/latest", s.handleLatestTenders)
	api.GET("/regions", s.handleRegions)
	api.GET("/stats", s.handleStats)
	api.POST("/subscribers", s.handleSubscribe)

	// Admin Routes (sync & snapshot management)
	admin := api.Group("")
	admin.Use(s.adminMiddleware)
	admin.POST("/sync", s.handleTriggerSync)
	admin.POST("/reload", s.handleReload)
	admin.GET("/admin/job/:id", s.handleJobStatus)
	admin.GET("/admin/runs", s.handleRecentRuns)
	admin.DELETE("/admin/subscribers/:email", s.handleDeleteSubscriber)
}

// ReloadSnapshot re-reads the snapshot file. A failed load clears the
// current snapshot and keeps one message for the tender endpoints; the
// catalog is never served from a stale or partial set.
func (s *Server) ReloadSnapshot() error {
	snap, err := catalog.LoadFile(s.snapshotPath)

	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	if err != nil {
		s.snapshot = nil
		s.loadErr = fmt.Sprintf("No se pudieron cargar las licitaciones: %v", err)
		return err
	}
	s.snapshot = snap
	s.loadErr = ""
	return nil
}

func (s *Server) currentSnapshot() (*catalog.Snapshot, string) {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	if s.snapshot == nil {
		msg := s.loadErr
		if msg == "" {
			msg = "No se pudieron cargar las licitaciones"
		}
		return nil, msg
	}
	return s.snapshot, ""
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (s *Server) handleListTenders(c echo.Context) error {
	snap, loadErr := s.currentSnapshot()
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": loadErr})
	}

	criteria := catalog.Criteria{
		Query:      c.QueryParam("q"),
		Region:     c.QueryParam("region"),
		MinImporte: c.QueryParam("min_importe"),
	}

	tenders := catalog.Search(snap.Tenders, criteria)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenders": tenders,
		"total":   len(tenders),
	})
}

func (s *Server) handleLatestTenders(c echo.Context) error {
	snap, loadErr := s.currentSnapshot()
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": loadErr})
	}

	tenders := catalog.Latest(snap.Tenders)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tenders": tenders,
		"total":   len(tenders),
	})
}

func (s *Server) handleRegions(c echo.Context) error {
	snap, loadErr := s.currentSnapshot()
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": loadErr})
	}

	regions := catalog.Regions(snap.Tenders)
	if regions == nil {
		regions = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"regions": regions})
}

func (s *Server) handleStats(c echo.Context) error {
	snap, loadErr := s.currentSnapshot()
	if snap == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": loadErr})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"total":     len(snap.Tenders),
		"regions":   len(catalog.Regions(snap.Tenders)),
		"source":    snap.Source,
		"loaded_at": snap.LoadedAt,
	})
}

type subscribeRequest struct {
	Email      string   `json:"email"`
	Keywords   []string `json:"keywords"`
	Provincias []string `json:"provincias"`
	Tipos      []string `json:"tipos"`
	ImporteMin float64  `json:"importeMin"`
}

func (s *Server) handleSubscribe(c echo.Context) error {
	var req subscribeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "A valid email is required"})
	}
	if req.ImporteMin < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "importeMin must not be negative"})
	}

	sub, err := s.Store.CreateSubscriber(c.Request().Context(), models.Subscriber{
		Email:      req.Email,
		Keywords:   req.Keywords,
		Provincias: req.Provincias,
		Tipos:      req.Tipos,
		ImporteMin: req.ImporteMin,
	})
	if err != nil {
		if err == db.ErrSubscriberExists {
			return c.JSON(http.StatusConflict, map[string]string{"error": "Subscriber already exists"})
		}
		c.Logger().Errorf("Failed to create subscriber: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal Server Error"})
	}

	return c.JSON(http.StatusCreated, sub)
}

func (s *Server) handleDeleteSubscriber(c echo.Context) error {
	email := c.Param("email")
	if err := s.Store.DeleteSubscriber(c.Request().Context(), email); err != nil {
		if err == pgx.ErrNoRows {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Subscriber not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "unsubscribed"})
}

func (s *Server) handleRecentRuns(c echo.Context) error {
	runs, err := s.Store.RecentSyncRuns(c.Request().Context(), 10)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *Server) handleTriggerSync(c echo.Context) error {
	if s.syncConfig == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Sync is not configured"})
	}

	s.jobMu.Lock()
	if s.runningJob != nil && s.runningJob.Status == "running" {
		job := s.runningJob
		s.jobMu.Unlock()
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":  "A sync job is already running",
			"job_id": job.ID,
		})
	}

	// context.WithoutCancel detaches the job from the HTTP request; a
	// full historical sync can take a while.
	jobCtx, jobCancel := context.WithTimeout(
		context.WithoutCancel(c.Request().Context()), 2*time.Hour,
	)

	jobID := uuid.New().String()[:8]
	job := &backgroundJob{
		ID:        jobID,
		Status:    "running",
		StartedAt: time.Now(),
		Cancel:    jobCancel,
	}
	s.runningJob = job
	s.jobMu.Unlock()

	// Run in background goroutine; the request returns 202 immediately.
	go func() {
		defer jobCancel()
		pipeline := placsp.NewPipeline(s.syncConfig, s.DB)

		stats, err := pipeline.Run(jobCtx)
		if err != nil {
			s.jobMu.Lock()
			job.Status = "failed"
			job.Error = err.Error()
			job.EndedAt = time.Now()
			s.jobMu.Unlock()
			log.Printf("[sync-job %s] failed: %v", jobID, err)
			return
		}

		if reloadErr := s.ReloadSnapshot(); reloadErr != nil {
			log.Printf("[sync-job %s] snapshot reload failed: %v", jobID, reloadErr)
		}

		s.jobMu.Lock()
		job.Status = "completed"
		job.EndedAt = time.Now()
		job.Result = stats
		s.jobMu.Unlock()
		log.Printf("[sync-job %s] completed: %d unique tenders", jobID, stats.UniqueTenders)
	}()

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message": "Sync job started",
		"job_id":  jobID,
		"poll":    fmt.Sprintf("/api/v1/admin/job/%s", jobID),
	})
}

func (s *Server) handleJobStatus(c echo.Context) error {
	queried := c.Param("id")
	s.jobMu.Lock()
	job := s.runningJob
	s.jobMu.Unlock()

	if job == nil || job.ID != queried {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
	}

	s.jobMu.Lock()
	resp := map[string]interface{}{
		"id":         job.ID,
		"status":     job.Status,
		"started_at": job.StartedAt,
	}
	if !job.EndedAt.IsZero() {
		resp["ended_at"] = job.EndedAt
		resp["duration"] = job.EndedAt.Sub(job.StartedAt).String()
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	s.jobMu.Unlock()

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleReload(c echo.Context) error {
	if err := s.ReloadSnapshot(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	snap, _ := s.currentSnapshot()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Snapshot reloaded",
		"total":   len(snap.Tenders),
	})
}

func (s *Server) Start(port string) error {
	return s.Echo.Start(":" + port)
}

func (s *Server) adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		secret, err := adminSecret()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Server admin configuration error"})
		}

		// Check X-Admin-Secret header or Bearer token
		authHeader := c.Request().Header.Get("Authorization")
		adminHeader := c.Request().Header.Get("X-Admin-Secret")

		if adminHeader == secret {
			return next(c)
		}
		if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
			if authHeader[7:] == secret {
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized admin access"})
	}
}

func adminSecret() (string, error) {
	adminSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("ADMIN_SECRET"))
		if secret != "" {
			adminSecretRuntime = secret
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			adminSecretErr = fmt.Errorf("failed to generate ADMIN_SECRET fallback: %w", err)
			return
		}

		adminSecretRuntime = base64.RawURLEncoding.EncodeToString(buf)
		log.Print("ADMIN_SECRET is not set; using ephemeral in-memory fallback secret")
	})

	if adminSecretErr != nil {
		return "", adminSecretErr
	}
	if adminSecretRuntime == "" {
		return "", fmt.Errorf("admin secret unavailable")
	}

	return adminSecretRuntime, nil
}
