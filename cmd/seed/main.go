// Command seed creates the first admin account and a few sample leads in an
// empty database.  Running it again leaves existing data alone.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/septic-crm/internal/config"
	"github.com/iliyamo/septic-crm/internal/database"
	"github.com/iliyamo/septic-crm/internal/model"
	"github.com/iliyamo/septic-crm/internal/pipeline"
	"github.com/iliyamo/septic-crm/internal/repository"
)

func strp(s string) *string { return &s }

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger, err := config.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	users := repository.NewUserRepo(db)
	email := envOr("SEED_ADMIN_EMAIL", "admin@westernmassseptic.com")
	admin, err := users.Create(ctx, "Admin", email, envOr("SEED_ADMIN_PASSWORD", "admin123"), model.RoleAdmin, cfg.BcryptCost)
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		logger.Info("admin already exists, nothing to seed", zap.String("email", email))
		return
	case err != nil:
		logger.Fatal("create admin", zap.Error(err))
	}
	logger.Info("admin created", zap.String("email", admin.Email))

	stages, err := pipeline.Parse(cfg.Pipeline.Stages)
	if err != nil {
		logger.Fatal("invalid PIPELINE_STAGES", zap.Error(err))
	}
	fallback := []string{"lead", "contacted", "scheduled"}
	stageAt := func(i int) string {
		if i < len(stages) {
			return stages[i].Key
		}
		return fallback[i]
	}

	samples := []model.Lead{
		{Name: "Jane Doe", Email: strp("jane@example.com"), Phone: strp("(413) 555-0001"), Stage: stageAt(0), Source: strp("website")},
		{Name: "Bob Smith", Email: strp("bob@example.com"), Phone: strp("(413) 555-0002"), Stage: stageAt(1), Source: strp("phone")},
		{Name: "Alice Jones", Email: strp("alice@example.com"), Phone: strp("(413) 555-0003"), Stage: stageAt(2), Source: strp("website")},
	}
	leads := repository.NewLeadRepo(db)
	for i := range samples {
		samples[i].CustomFields = map[string]any{}
		l, err := leads.Create(ctx, &samples[i])
		if err != nil {
			logger.Fatal("create sample lead", zap.String("name", samples[i].Name), zap.Error(err))
		}
		logger.Info("sample lead created", zap.String("name", l.Name), zap.String("stage", l.Stage))
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
