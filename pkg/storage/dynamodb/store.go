package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/referral-earnings/pkg/storage"
)

// DynamoDBAPI defines the subset of the DynamoDB client used by the Store.
// It exists so tests can substitute a mock client.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client                        DynamoDBAPI
	ParticipantsTableName         string
	ReferralCodesTableName        string
	PurchasesTableName            string
	LedgerTableName               string
	WebsocketConnectionsTableName string
}

// New creates a new Store.
func New(client DynamoDBAPI, participantsTable, codesTable, purchasesTable, ledgerTable, connectionsTable string) *Store {
	return &Store{
		Client:                        client,
		ParticipantsTableName:         participantsTable,
		ReferralCodesTableName:        codesTable,
		PurchasesTableName:            purchasesTable,
		LedgerTableName:               ledgerTable,
		WebsocketConnectionsTableName: connectionsTable,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)
