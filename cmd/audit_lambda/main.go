package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/referral-earnings/pkg/storage"
	dydbstore "github.com/chris/referral-earnings/pkg/storage/dynamodb"
	"github.com/joho/godotenv"
)

var store storage.Storage

func init() {
	// Load environment variables for local testing.
	godotenv.Load()

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := awsdynamodb.NewFromConfig(cfg)

	participantsTable := os.Getenv("DYNAMODB_PARTICIPANTS_TABLE_NAME")
	codesTable := os.Getenv("DYNAMODB_REFERRAL_CODES_TABLE_NAME")
	purchasesTable := os.Getenv("DYNAMODB_PURCHASES_TABLE_NAME")
	ledgerTable := os.Getenv("DYNAMODB_LEDGER_TABLE_NAME")

	store = dydbstore.New(dbClient, participantsTable, codesTable, purchasesTable, ledgerTable, "")
}

// HandleRequest is triggered by an EventBridge Schedule. It audits the core
// ledger invariant: every participant's wallet balance equals the sum of the
// ledger entries paid to them. Because every payout commits the entry and the
// credit in one write, drift here means data was touched outside the engine.
func HandleRequest(ctx context.Context) error {
	log.Println("Starting wallet/ledger balance audit...")

	participants, err := store.ListParticipants(ctx)
	if err != nil {
		log.Printf("ERROR: failed to list participants: %v", err)
		return err
	}

	drifted := 0
	for _, participant := range participants {
		earnings, err := store.ListEarningsByPayee(ctx, participant.Id)
		if err != nil {
			log.Printf("ERROR: failed to list earnings for participant %s: %v", participant.Id, err)
			return err
		}

		var ledgerTotal int64
		for _, earning := range earnings {
			ledgerTotal += earning.Amount
		}

		if ledgerTotal != participant.WalletBalance {
			drifted++
			log.Printf("ALERT: balance drift for participant %s: wallet=%d ledger=%d",
				participant.Id, participant.WalletBalance, ledgerTotal)
		}
	}

	if drifted > 0 {
		return fmt.Errorf("balance audit found %d drifted participants", drifted)
	}

	log.Printf("Balance audit finished, %d participants consistent.", len(participants))
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
