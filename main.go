package main

import (
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/wildflower-dev/timecard-service/internal"
	"github.com/wildflower-dev/timecard-service/internal/config"
)

func main() {
	// load values from .env into the system
	if err := godotenv.Load(); err != nil {
		log.Print("No .env file found")
	}

	cfg := config.NewApplicationConfig()
	if level, err := log.ParseLevel(cfg.LogLevel()); err == nil {
		log.SetLevel(level)
	}

	server := internal.SetupServer(cfg)
	server.Start("", cfg.ServerPort())
}
