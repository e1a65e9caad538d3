package main

import (
	log "github.com/sirupsen/logrus"

	"figaros/internal/cleanup"
	"figaros/internal/config"
	"figaros/internal/database"
	"figaros/internal/server"
	"figaros/internal/turnos"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.DSN)
	if err != nil {
		log.Fatalf("DB connect error: %v", err)
	}
	defer db.Close()

	// Run migrations if files exist (RunMigrations is tolerant if dir missing)
	if err := database.RunMigrations(db, "migrations"); err != nil {
		log.Fatalf("migrations error: %v", err)
	}

	turnoStore := turnos.NewMySQLStore(db)

	// Daily sweep of expired turnos
	if _, err := cleanup.Start(turnoStore); err != nil {
		log.Fatalf("cleanup cron error: %v", err)
	}

	srv := server.NewServer(cfg, db, turnoStore)
	log.Infof("API escuchando en :%s", cfg.Port)
	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
