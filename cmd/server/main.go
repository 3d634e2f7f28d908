package main

import (
	"context"
	"log"

	"github.com/qondlabs/qad-assistant/internal/analytics"
	"github.com/qondlabs/qad-assistant/internal/auth"
	"github.com/qondlabs/qad-assistant/internal/config"
	"github.com/qondlabs/qad-assistant/internal/db"
	"github.com/qondlabs/qad-assistant/internal/httpapi"
	"github.com/qondlabs/qad-assistant/internal/httpapi/handlers"
	"github.com/qondlabs/qad-assistant/internal/kpi"
	"github.com/qondlabs/qad-assistant/internal/store/rabbitmq"
	"github.com/qondlabs/qad-assistant/internal/store/redisstore"
	"github.com/qondlabs/qad-assistant/internal/workflow"
)

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gdb.AutoMigrate(
		&analytics.Session{}, &analytics.Message{}, &analytics.UserAction{},
		&kpi.Job{},
	); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	creds, err := auth.LoadCredentials(cfg.CredentialsPath)
	if err != nil {
		log.Fatalf("load credentials: %v", err)
	}

	analyticsSvc := analytics.NewService(analytics.NewRepo(gdb))
	workflowClient := workflow.NewClient(cfg.WebhookURL, cfg.WebhookTimeout)

	var gen kpi.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := kpi.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("gemini client: %v", err)
		}
		gen = g
	} else {
		log.Printf("GEMINI_API_KEY not configured, visual KPI enrichment will return the setup fallback")
	}
	kpiSvc := kpi.NewService(kpi.NewRepo(gdb), gen)

	// Optional collaborators: the dashboard works without them.
	var rabbit *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		rabbit, err = rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Printf("rabbit unavailable, async KPI jobs disabled: %v", err)
			rabbit = nil
		} else {
			defer rabbit.Close()
		}
	}

	var rds *redisstore.Store
	if cfg.RedisAddr != "" {
		s := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := s.Ping(context.Background()); err != nil {
			log.Printf("redis unavailable, login throttle disabled: %v", err)
			_ = s.Close()
		} else {
			rds = s
			defer rds.Close()
		}
	}

	h := handlers.NewHandler(cfg, creds, analyticsSvc, workflowClient, kpiSvc, rabbit, rds)
	r := httpapi.NewRouter(h)

	log.Printf("server listening on :%s (db=%s)", cfg.Port, cfg.DBDriver)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
