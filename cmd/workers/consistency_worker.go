package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"subsurface-atlas/borehole-portal/borehole-portal-backend/internal/config"
	"subsurface-atlas/borehole-portal/borehole-portal-backend/internal/workflow"
)

// ConsistencyWorker periodically audits that every workflow's status equals
// the to_status of its most recent change entry. Violations are logged for
// operators; the worker never repairs rows on its own.
type ConsistencyWorker struct {
	db       *gorm.DB
	logger   *zap.Logger
	schedule string
	cron     *cron.Cron
}

func NewConsistencyWorker(db *gorm.DB, logger *zap.Logger, schedule string) *ConsistencyWorker {
	return &ConsistencyWorker{
		db:       db,
		logger:   logger,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start schedules the sweep and runs it once immediately.
func (w *ConsistencyWorker) Start() error {
	if _, err := w.cron.AddFunc(w.schedule, w.sweep); err != nil {
		return fmt.Errorf("failed to schedule consistency sweep: %w", err)
	}
	w.cron.Start()
	w.sweep()
	return nil
}

func (w *ConsistencyWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

type statusMismatch struct {
	WorkflowID   string          `gorm:"column:workflow_id"`
	Status       workflow.Status `gorm:"column:status"`
	LatestStatus workflow.Status `gorm:"column:latest_status"`
}

func (w *ConsistencyWorker) sweep() {
	var mismatches []statusMismatch
	err := w.db.Raw(`
		SELECT w.id AS workflow_id, w.status AS status, c.to_status AS latest_status
		FROM workflows w
		JOIN LATERAL (
			SELECT to_status
			FROM workflow_changes
			WHERE workflow_id = w.id
			ORDER BY created_at DESC
			LIMIT 1
		) c ON true
		WHERE w.status <> c.to_status`).Scan(&mismatches).Error
	if err != nil {
		w.logger.Error("consistency sweep failed", zap.Error(err))
		return
	}

	var untracked int64
	err = w.db.Raw(`
		SELECT COUNT(*)
		FROM workflows w
		WHERE w.status <> ?
		  AND NOT EXISTS (SELECT 1 FROM workflow_changes c WHERE c.workflow_id = w.id)`,
		int(workflow.StatusDraft)).Scan(&untracked).Error
	if err != nil {
		w.logger.Error("consistency sweep failed", zap.Error(err))
		return
	}

	for _, m := range mismatches {
		w.logger.Warn("workflow status diverges from change log",
			zap.String("workflow_id", m.WorkflowID),
			zap.Stringer("status", m.Status),
			zap.Stringer("latest_to_status", m.LatestStatus))
	}
	if untracked > 0 {
		w.logger.Warn("non-draft workflows without any change entry", zap.Int64("count", untracked))
	}
	if len(mismatches) == 0 && untracked == 0 {
		w.logger.Info("consistency sweep clean")
	}
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to access database pool", zap.Error(err))
	}
	defer sqlDB.Close()

	worker := NewConsistencyWorker(db, logger, cfg.Worker.ConsistencySchedule)
	if err := worker.Start(); err != nil {
		logger.Fatal("Failed to start consistency worker", zap.Error(err))
	}
	logger.Info("Consistency worker started", zap.String("schedule", cfg.Worker.ConsistencySchedule))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Stopping consistency worker...")
	worker.Stop()
}
