package main

import (
	"context"
	"log"

	"clinical-docs-be/internal/bootstrap"
	"clinical-docs-be/internal/config"
	"clinical-docs-be/internal/server"
	"clinical-docs-be/internal/tracer"
	"clinical-docs-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	// Embedding worker runs next to the HTTP server.
	go func() {
		log.Println("Background: starting embedding consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background consumer error: %v", err)
		}
	}()

	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
