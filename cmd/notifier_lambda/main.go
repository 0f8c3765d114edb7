package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/referral-earnings/pkg/models"
	dydbstore "github.com/chris/referral-earnings/pkg/storage/dynamodb"
	"github.com/chris/referral-earnings/pkg/websockets"
	"github.com/joho/godotenv"
)

var publisher websockets.Publisher

func init() {
	// Load environment variables from .env file (useful for local testing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	connectionsTable := os.Getenv("DYNAMODB_CONNECTIONS_TABLE_NAME")
	apiEndpoint := os.Getenv("WEBSOCKET_API_ENDPOINT")
	if connectionsTable == "" || apiEndpoint == "" {
		log.Fatal("DYNAMODB_CONNECTIONS_TABLE_NAME and WEBSOCKET_API_ENDPOINT must be set")
	}

	dbClient := awsdynamodb.NewFromConfig(cfg)
	store := dydbstore.New(dbClient, "", "", "", "", connectionsTable)

	publisher, err = websockets.NewPublisher(store, store, apiEndpoint)
	if err != nil {
		log.Fatalf("failed to create websocket publisher: %v", err)
	}
}

// HandleRequest pushes each queued earning event to the payee's connected
// sessions. Delivery is best effort: a push failure is logged and the message
// is not retried, because notifications are at-most-once by contract.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		var event models.EarningEvent
		if err := json.Unmarshal([]byte(message.Body), &event); err != nil {
			log.Printf("ERROR: failed to unmarshal earning event from SQS message %s: %v", message.MessageId, err)
			continue
		}

		if err := publisher.PublishTo(ctx, event.PayeeId, websockets.NewEarningMessage(&event)); err != nil {
			log.Printf("ERROR: failed to publish earning event to participant %s: %v", event.PayeeId, err)
		}
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
