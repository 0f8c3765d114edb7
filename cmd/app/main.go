package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/referral-earnings/pkg/config"
	"github.com/chris/referral-earnings/pkg/distribution"
	"github.com/chris/referral-earnings/pkg/events"
	"github.com/chris/referral-earnings/pkg/handlers"
	"github.com/chris/referral-earnings/pkg/middleware"
	"github.com/chris/referral-earnings/pkg/referral"
	"github.com/chris/referral-earnings/pkg/storage"
	dydbstore "github.com/chris/referral-earnings/pkg/storage/dynamodb"
	"github.com/chris/referral-earnings/pkg/storage/memory"
	"github.com/chris/referral-earnings/pkg/websockets"
	"github.com/go-chi/chi/v5"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var store storage.Storage
	var emitter events.Emitter
	var hub *websockets.Hub

	switch cfg.Mode {
	case "memory":
		// Self-contained mode: in-process store and websocket hub, no AWS.
		store = memory.New()
		hub = websockets.NewHub()
		emitter = hub
	default:
		if err := cfg.RequireDynamoDB(); err != nil {
			log.Fatal(err)
		}

		awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
		if err != nil {
			log.Fatalf("unable to load SDK config, %v", err)
		}

		dbClient := awsdynamodb.NewFromConfig(awsCfg)
		store = dydbstore.New(dbClient, cfg.ParticipantsTable, cfg.ReferralCodesTable,
			cfg.PurchasesTable, cfg.LedgerTable, cfg.ConnectionsTable)

		if cfg.EarningEventsQueueURL != "" {
			emitter = events.NewSQSEmitter(sqs.NewFromConfig(awsCfg), cfg.EarningEventsQueueURL)
		} else {
			log.Println("SQS_EARNING_EVENTS_QUEUE_URL not set, earning events disabled")
			emitter = events.NoOpEmitter{}
		}
	}

	directory := referral.NewDirectory(store)
	engine := distribution.NewEngine(directory, store, emitter)
	handler := handlers.NewApiHandler(store, directory, engine)

	router := chi.NewRouter()
	router.Use(middleware.NewStructuredLogger(logger))
	handler.RegisterRoutes(router)
	if hub != nil {
		router.Handle("/ws", hub)
	}

	log.Printf("Starting server on port %s", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
