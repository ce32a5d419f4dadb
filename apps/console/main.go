package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sahilshirsath0/gov-website/libs/mailer"
)

const (
	maxUploadBytes           = 10 * 1024 * 1024
	stagedUploadTTL          = 30 * time.Minute
	uploadCleanupInterval    = time.Minute
	devCORSOriginLocalhost   = "http://localhost:5173"
	devCORSOriginLoopback    = "http://127.0.0.1:5173"
	trustedProxyLoopbackIPv4 = "127.0.0.1"
	trustedProxyLoopbackIPv6 = "::1"
)

type Config struct {
	Addr                string
	Env                 string
	PublicBaseURL       string
	UpstreamBaseURL     string
	AppSigningSecret    string
	ResendAPIKey        string
	MailerFromAddresses map[string]string
}

type App struct {
	cfg      *Config
	logger   *slog.Logger
	upstream *upstreamClient
	mailer   *mailer.Mailer
	uploads  *uploadStore

	announcements  *resource[Announcement]
	gallery        *resource[GalleryItem]
	awards         *resource[Award]
	members        *resource[Member]
	programs       *resource[Program]
	villageDetails *resource[VillageDetail]
	feedback       *resource[FeedbackEntry]
	applications   *resource[SevaApplication]

	inflightMu sync.Mutex
	inflight   map[string]bool

	shutdown chan struct{}

	// test hooks for the upstream operations that fall outside the generic
	// resource shape
	loginAdmin           func(ctx context.Context, username, password string) (string, error)
	logoutAdmin          func(ctx context.Context, token string) error
	getSevaHeader        func(ctx context.Context) (*SevaHeader, error)
	updateSevaHeader     func(ctx context.Context, payload map[string]any) error
	setFeedbackStatus    func(ctx context.Context, id, status, adminNotes string) error
	setApplicationStatus func(ctx context.Context, id, status string) error
}

type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string { return e.Message }

func newApp(cfg *Config, logger *slog.Logger, mailClient *mailer.Mailer) *App {
	upstream := newUpstreamClient(cfg.UpstreamBaseURL)

	app := &App{
		cfg:      cfg,
		logger:   logger,
		upstream: upstream,
		mailer:   mailClient,
		uploads:  newUploadStore(),
		inflight: make(map[string]bool),
		shutdown: make(chan struct{}),

		announcements:  newResource[Announcement](upstream, "/announcements"),
		gallery:        newResource[GalleryItem](upstream, "/gallery"),
		awards:         newResource[Award](upstream, "/awards"),
		members:        newResource[Member](upstream, "/members"),
		programs:       newResource[Program](upstream, "/programs"),
		villageDetails: newResource[VillageDetail](upstream, "/village-details"),
		feedback:       newResource[FeedbackEntry](upstream, "/feedback"),
		applications:   newResource[SevaApplication](upstream, "/nagrik-seva/applications"),
	}

	app.loginAdmin = app.loginUpstream
	app.logoutAdmin = app.logoutUpstream
	app.getSevaHeader = app.fetchSevaHeaderUpstream
	app.updateSevaHeader = app.updateSevaHeaderUpstream
	app.setFeedbackStatus = app.setFeedbackStatusUpstream
	app.setApplicationStatus = app.setApplicationStatusUpstream

	return app
}

func main() {
	if err := loadDotEnvFile(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var mailProvider mailer.Provider
	if cfg.ResendAPIKey != "" {
		mailProvider = mailer.NewResendProvider(cfg.ResendAPIKey)
		logger.Info("mailer initialized", "provider", "resend")
	} else {
		mailProvider = mailer.NewLogProvider(logger)
		logger.Info("mailer initialized", "provider", "log")
	}
	mailClient := mailer.New(mailProvider, cfg.MailerFromAddresses[mailProvider.Name()])

	app := newApp(cfg, logger, mailClient)
	app.startUploadCleanup(uploadCleanupInterval)
	defer close(app.shutdown)

	logger.Info(
		"runtime configuration",
		"env", cfg.Env,
		"addr", cfg.Addr,
		"upstream", cfg.UpstreamBaseURL,
	)

	r := gin.New()
	if err := r.SetTrustedProxies([]string{trustedProxyLoopbackIPv4, trustedProxyLoopbackIPv6}); err != nil {
		panic(err)
	}
	r.Use(gin.Recovery())
	r.Use(app.loggingMiddleware())
	r.Use(app.corsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	app.registerRoutes(r)

	app.logger.Info("starting admin console", "addr", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		panic(err)
	}
}

func loadConfig() (*Config, error) {
	upstreamBase := strings.TrimSpace(os.Getenv("UPSTREAM_BASE_URL"))
	if upstreamBase == "" {
		return nil, fmt.Errorf("UPSTREAM_BASE_URL must be configured")
	}
	upstreamBase = strings.TrimRight(upstreamBase, "/")

	secret := strings.TrimSpace(os.Getenv("APP_SIGNING_SECRET"))
	if len(secret) < 16 {
		return nil, fmt.Errorf("APP_SIGNING_SECRET must be at least 16 characters")
	}

	publicBase := strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL"))
	publicBase = strings.TrimRight(publicBase, "/")

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "development"
	}

	cfg := &Config{
		Addr:             valueOrDefault("GIN_ADDR", ":8090"),
		Env:              env,
		PublicBaseURL:    publicBase,
		UpstreamBaseURL:  upstreamBase,
		AppSigningSecret: secret,
		ResendAPIKey:     strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
		MailerFromAddresses: map[string]string{
			"resend": valueOrDefault("MAILER_FROM_ADDRESS_RESEND", "noreply@grampanchayat.local"),
			"log":    valueOrDefault("MAILER_FROM_ADDRESS_LOG", "noreply@grampanchayat.local"),
		},
	}

	return cfg, nil
}

func loadDotEnvFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, raw := range strings.Split(string(content), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.Trim(strings.TrimSpace(line[idx+1:]), "\"")
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
	return nil
}

func valueOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func (a *App) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		)
	}
}

func (a *App) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := strings.TrimSpace(c.GetHeader("Origin"))
		if a.isAllowedCORSOrigin(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
			c.Header("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *App) isAllowedCORSOrigin(origin string) bool {
	if origin == "" || a.cfg == nil {
		return false
	}
	if a.cfg.PublicBaseURL != "" && origin == a.cfg.PublicBaseURL {
		return true
	}
	if !strings.EqualFold(a.cfg.Env, "development") {
		return false
	}
	return origin == devCORSOriginLocalhost || origin == devCORSOriginLoopback
}

func writeAPIError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, gin.H{"error": apiErr.Code, "message": apiErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": err.Error()})
}

// writeError is writeAPIError plus the session rule: an upstream 401 means
// the stored bearer token is no longer valid, so the signed cookie is
// dropped and the client has to sign in again.
func (a *App) writeError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		a.clearSessionCookie(c)
	}
	writeAPIError(c, err)
}
