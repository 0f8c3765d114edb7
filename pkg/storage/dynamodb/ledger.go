package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/referral-earnings/pkg/models"
	"github.com/chris/referral-earnings/pkg/storage"
)

const (
	payeeIDIndex = "payee_id-index"
	payerIDIndex = "payer_id-index"
	recentGSI    = "gsi1pk-created_at-index"
)

// ledgerPartition is the shared gsi1pk value that lets the recent-entries
// index be queried in creation-time order.
const ledgerPartition = "EARNINGS"

// ledgerItem is the persisted shape of an earning, extended with the GSI
// partition attribute.
type ledgerItem struct {
	models.Earning
	GSI1PK string `dynamodbav:"gsi1pk"`
}

// AppendEarning inserts the ledger entry and credits the payee's wallet in a
// single TransactWriteItems call. The entry put is conditioned on the
// (purchase, payee) composite key not existing, so a retried distribution can
// never double-pay; the wallet credit is an ADD expression, so no
// read-modify-write window exists for concurrent distributions to race on.
func (s *Store) AppendEarning(ctx context.Context, earning *models.Earning) error {
	item := ledgerItem{Earning: *earning, GSI1PK: ledgerPartition}
	earningAV, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal earning: %w", err)
	}

	amountAV, err := attributevalue.Marshal(earning.Amount)
	if err != nil {
		return fmt.Errorf("failed to marshal earning amount: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: Create the ledger entry.
				Put: &types.Put{
					TableName:           aws.String(s.LedgerTableName),
					Item:                earningAV,
					ConditionExpression: aws.String("attribute_not_exists(distribution_key)"),
				},
			},
			{
				// Operation 2: Credit the payee's wallet.
				Update: &types.Update{
					TableName: aws.String(s.ParticipantsTableName),
					Key: map[string]types.AttributeValue{
						"id": &types.AttributeValueMemberS{Value: earning.PayeeId},
					},
					UpdateExpression:    aws.String("ADD wallet_balance :amount SET version = version + :inc"),
					ConditionExpression: aws.String("attribute_exists(id)"),
					ExpressionAttributeValues: map[string]types.AttributeValue{
						":amount": amountAV,
						":inc":    &types.AttributeValueMemberN{Value: "1"},
					},
				},
			},
		},
	}

	_, err = s.Client.TransactWriteItems(ctx, input)
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			if len(tce.CancellationReasons) > 0 &&
				tce.CancellationReasons[0].Code != nil &&
				*tce.CancellationReasons[0].Code == "ConditionalCheckFailed" {
				return storage.ErrDuplicateEarning
			}
		}
		return fmt.Errorf("failed to execute earning transaction: %w", err)
	}

	return nil
}

// ListEarningsByPayee retrieves all ledger entries paid to a participant.
func (s *Store) ListEarningsByPayee(ctx context.Context, payeeID string) ([]models.Earning, error) {
	return s.queryEarnings(ctx, payeeIDIndex, "payee_id", payeeID)
}

// ListEarningsByPayer retrieves all ledger entries produced by a
// participant's purchases.
func (s *Store) ListEarningsByPayer(ctx context.Context, payerID string) ([]models.Earning, error) {
	return s.queryEarnings(ctx, payerIDIndex, "payer_id", payerID)
}

func (s *Store) queryEarnings(ctx context.Context, index, keyAttr, keyValue string) ([]models.Earning, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.LedgerTableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(fmt.Sprintf("%s = :v", keyAttr)),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: keyValue},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger index %s: %w", index, err)
	}

	var earnings []models.Earning
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &earnings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal earnings: %w", err)
	}

	return earnings, nil
}

// ListRecentEarnings retrieves the most recent ledger entries, newest first.
func (s *Store) ListRecentEarnings(ctx context.Context, limit int32) ([]models.Earning, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.LedgerTableName),
		IndexName:              aws.String(recentGSI),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: ledgerPartition},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query recent ledger entries: %w", err)
	}

	var earnings []models.Earning
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &earnings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal earnings: %w", err)
	}

	return earnings, nil
}

// SumEarningsByLevel aggregates a payee's entries into per-level totals and
// counts.
func (s *Store) SumEarningsByLevel(ctx context.Context, payeeID string) (map[int]models.LevelSummary, error) {
	earnings, err := s.ListEarningsByPayee(ctx, payeeID)
	if err != nil {
		return nil, err
	}

	summary := make(map[int]models.LevelSummary)
	for _, earning := range earnings {
		levelSummary := summary[earning.Level]
		levelSummary.Total += earning.Amount
		levelSummary.Count++
		summary[earning.Level] = levelSummary
	}

	return summary, nil
}
