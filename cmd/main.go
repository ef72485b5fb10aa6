package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"glucolog/cmd/config"
	migration "glucolog/cmd/database/migrate"
	"glucolog/internal/logging"
	"glucolog/internal/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	flag.Parse()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	base, accessLog := logging.NewLogrus(logging.Options{
		Level:        cfg.LogLevel,
		Format:       cfg.LogFormat,
		File:         cfg.LogFile,
		LogstashURL:  cfg.LogstashURL,
		ElasticURL:   cfg.ElasticURL,
		ElasticIndex: cfg.ElasticIndex,
	})
	log := logging.NewLogrusLogger(base)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, dbErr := config.ConnectDB(cfg)
	if dbErr != nil {
		log.Error(ctx, "database unavailable", "error", dbErr)
	}

	if *migrate {
		if db == nil {
			base.Fatal("migrations need a reachable database")
		}
		if err := migration.Migrate(db); err != nil {
			base.Fatalf("migrate: %v", err)
		}
		log.Info(ctx, "database migration complete")
		return
	}

	app, err := config.NewApp(ctx, cfg, db, dbErr, log, accessLog)
	if err != nil {
		base.Fatalf("init app: %v", err)
	}

	go func() {
		<-ctx.Done()
		log.Info(context.Background(), "shutting down")
		_ = app.Shutdown()
	}()

	if err := app.Listen(":" + cfg.AppPort); err != nil {
		base.Fatalf("listen: %v", err)
	}
}
