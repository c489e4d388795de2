package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"equipment-store/pkg/config"
	"equipment-store/pkg/database/migrations"
	"equipment-store/pkg/database/postgresql"
	applogger "equipment-store/pkg/logger"
	"equipment-store/seeders"
)

func main() {
	runAdmin := flag.Bool("admin", false, "create the superuser from SEED_ADMIN_* settings")
	runFake := flag.Bool("fake", false, "generate random demo users, types, equipment and allocations")
	runAll := flag.Bool("all", false, "run every seeder (same as -admin -fake)")
	flag.Parse()

	if !*runAdmin && !*runFake && !*runAll {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, "")
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()
	db, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("could not connect to Postgres", zap.Error(err))
	}
	defer db.Close()

	if err := migrations.Up(db, logger); err != nil {
		logger.Fatal("could not apply migrations", zap.Error(err))
	}

	s := seeders.New(db, logger.Named("seed"))

	if *runAll || *runAdmin {
		if err := s.SeedAdmin(ctx, cfg.Seed); err != nil {
			logger.Fatal("admin seeding failed", zap.Error(err))
		}
	}
	if *runAll || *runFake {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		if err := s.SeedFakeData(ctx, rng); err != nil {
			logger.Fatal("fake data seeding failed", zap.Error(err))
		}
	}

	logger.Info("seeding finished")
}
