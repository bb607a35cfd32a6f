package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/verly-ai/founder-platform/internal/config"
	"github.com/verly-ai/founder-platform/internal/db"
	admin "github.com/verly-ai/founder-platform/internal/http/api/admin"
	"github.com/verly-ai/founder-platform/internal/ledger"
	"github.com/verly-ai/founder-platform/internal/logging"
	"github.com/verly-ai/founder-platform/internal/metrics"
	"github.com/verly-ai/founder-platform/internal/models"
	"github.com/verly-ai/founder-platform/internal/security"
	"github.com/verly-ai/founder-platform/internal/session"
	"github.com/verly-ai/founder-platform/internal/settings"
	"github.com/verly-ai/founder-platform/internal/snapshot"
	"github.com/verly-ai/founder-platform/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

// CreateAdminParams holds inputs for admin creation.
type CreateAdminParams struct {
	Username string
	Password string
	Name     string
	Role     string
}

// MigrateOptions selects which datastores to migrate.
type MigrateOptions struct {
	Main bool // Also create the main-system tables (development and tests).
}

// Migrate opens the datastores and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig, opts MigrateOptions) error {
	conf, err := config.LoadDatabase(config.ResolveConfigPath(cfg.ConfigPath))
	if err != nil {
		return err
	}
	handles, err := db.OpenHandles(conf.Database.MainDSN, conf.Database.FounderDSN)
	if err != nil {
		return err
	}
	defer func() { _ = handles.Close() }()

	if errMigrate := db.Migrate(handles.Founder.WithContext(ctx)); errMigrate != nil {
		return errMigrate
	}
	if opts.Main {
		if errMigrate := db.MigrateMain(handles.Main.WithContext(ctx)); errMigrate != nil {
			return errMigrate
		}
	}
	log.Info("migrations applied")
	return nil
}

// CreateAdmin inserts a dashboard operator.
func CreateAdmin(ctx context.Context, cfg config.AppConfig, params CreateAdminParams) error {
	username := strings.TrimSpace(params.Username)
	if username == "" {
		return errors.New("username is required")
	}
	role := strings.TrimSpace(params.Role)
	if role == "" {
		role = models.AdminRoleFounder
	}
	if role != models.AdminRoleFounder && role != models.AdminRoleViewer {
		return fmt.Errorf("unknown role %q", role)
	}
	if errPassword := security.ValidatePassword(params.Password); errPassword != nil {
		return errPassword
	}
	hash, err := security.HashPassword(params.Password)
	if err != nil {
		return err
	}

	conf, err := config.LoadDatabase(config.ResolveConfigPath(cfg.ConfigPath))
	if err != nil {
		return err
	}
	conn, err := db.Open(conf.Database.FounderDSN)
	if err != nil {
		return err
	}
	if sqlDB, errDB := conn.DB(); errDB == nil {
		defer func() { _ = sqlDB.Close() }()
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}

	row := models.Admin{
		Username: username,
		Password: hash,
		Name:     strings.TrimSpace(params.Name),
		Role:     role,
		Active:   true,
	}
	if errCreate := conn.WithContext(ctx).Create(&row).Error; errCreate != nil {
		return fmt.Errorf("create admin: %w", errCreate)
	}
	log.WithFields(log.Fields{"admin_id": row.ID, "username": row.Username, "role": row.Role}).Info("admin created")
	return nil
}

// RecordSnapshot records today's metrics snapshot once.
func RecordSnapshot(ctx context.Context, cfg config.AppConfig) error {
	conf, err := config.LoadDatabase(config.ResolveConfigPath(cfg.ConfigPath))
	if err != nil {
		return err
	}
	handles, err := db.OpenHandles(conf.Database.MainDSN, conf.Database.FounderDSN)
	if err != nil {
		return err
	}
	defer func() { _ = handles.Close() }()
	if errMigrate := db.Migrate(handles.Founder); errMigrate != nil {
		return errMigrate
	}
	if errRefresh := settings.Refresh(ctx, handles.Founder); errRefresh != nil {
		log.WithError(errRefresh).Warn("load settings")
	}

	svc := newMetricsService(handles, conf.Metrics)
	recorder := newRecorder(handles, svc, conf.Metrics)
	row, err := recorder.RecordOnce(ctx)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"date":            row.Date,
		"mrr":             row.MRR.StringFixed(2),
		"active_accounts": row.ActiveAccounts,
	}).Info("metrics snapshot recorded")
	return nil
}

// RunServer boots the founder dashboard API and its background workers.
func RunServer(ctx context.Context, cfg config.AppConfig) error {
	conf, err := config.Load(config.ResolveConfigPath(cfg.ConfigPath))
	if err != nil {
		return err
	}
	logCloser, err := logging.Setup(conf.Log)
	if err != nil {
		return err
	}
	if logCloser != nil {
		defer func() { _ = logCloser.Close() }()
	}

	shutdownTracer, err := telemetry.InitTracer(ctx, conf.Telemetry)
	if err != nil {
		return err
	}
	defer shutdownTracer()

	handles, err := db.OpenHandles(conf.Database.MainDSN, conf.Database.FounderDSN)
	if err != nil {
		return err
	}
	defer func() { _ = handles.Close() }()
	if errMigrate := db.Migrate(handles.Founder); errMigrate != nil {
		return errMigrate
	}
	if errRefresh := settings.Refresh(ctx, handles.Founder); errRefresh != nil {
		log.WithError(errRefresh).Warn("load settings")
	}

	sessions, closeSessions := newSessionRegistry(conf.Redis)
	defer closeSessions()

	svc := newMetricsService(handles, conf.Metrics)
	newRecorder(handles, svc, conf.Metrics).Start(ctx)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(logging.GinLogger(), gin.Recovery())
	admin.RegisterAdminRoutes(engine, admin.Options{
		Handles:               handles,
		JWT:                   conf.JWT,
		Sessions:              sessions,
		Metrics:               svc,
		CostWindowDays:        conf.Metrics.CostWindowDays,
		SnapshotRetentionDays: conf.Metrics.SnapshotRetentionDays,
	})

	server := &http.Server{
		Addr:              conf.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errServe := make(chan error, 1)
	go func() {
		log.Infof("founder platform listening on %s", conf.ListenAddr)
		if errListen := server.ListenAndServe(); errListen != nil && !errors.Is(errListen, http.ErrServerClosed) {
			errServe <- errListen
		}
		close(errServe)
	}()

	select {
	case errListen := <-errServe:
		return errListen
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}

func newMetricsService(handles *db.Handles, cfg config.MetricsConfig) *metrics.Service {
	reader := ledger.NewReader(handles.Main, ledger.WithQueryTimeout(cfg.QueryTimeout))
	fallback := cfg.CostWindowDays
	return metrics.NewService(reader, metrics.WithCostWindow(func() int {
		return settings.CostWindowDays(fallback)
	}))
}

func newRecorder(handles *db.Handles, svc *metrics.Service, cfg config.MetricsConfig) *snapshot.Recorder {
	fallback := cfg.SnapshotRetentionDays
	return snapshot.NewRecorder(handles.Founder, handles.Main, svc, cfg.SnapshotInterval, func() int {
		return settings.SnapshotRetentionDays(fallback)
	})
}

// newSessionRegistry returns a Redis-backed registry when an address is configured,
// otherwise an in-memory one.
func newSessionRegistry(cfg config.RedisConfig) (session.Registry, func()) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		log.Info("session registry: in-memory")
		return session.NewMemoryRegistry(), func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	log.WithField("addr", addr).Info("session registry: redis")
	return session.NewRedisRegistry(client), func() { _ = client.Close() }
}
