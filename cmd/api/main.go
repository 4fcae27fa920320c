package main

import (
	"log"

	"bioeq/adapters/artifact"
	"bioeq/internal"
	"bioeq/internal/api"
	"bioeq/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	gin.SetMode(cfg.Server.GinMode)

	logger := internal.NewDefaultLogger()
	sink := artifact.NewFSSink(cfg.Output.Dir)

	server := api.NewServer(logger, sink, cfg.Simulation.Seed, cfg.Simulation.NSim,
		cfg.Simulation.Workers)
	if err := server.Start(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
