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

const buyerIDIndex = "buyer_id-index"

// CreatePurchase creates a new purchase record in DynamoDB.
func (s *Store) CreatePurchase(ctx context.Context, purchase *models.Purchase) error {
	purchaseAV, err := attributevalue.MarshalMap(purchase)
	if err != nil {
		return fmt.Errorf("failed to marshal purchase: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.PurchasesTableName),
		Item:                purchaseAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return fmt.Errorf("purchase %s already exists", purchase.Id)
		}
		return fmt.Errorf("failed to create purchase in DynamoDB: %w", err)
	}

	return nil
}

// GetPurchase retrieves a purchase from DynamoDB by its ID.
func (s *Store) GetPurchase(ctx context.Context, purchaseID string) (*models.Purchase, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": purchaseID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal purchase ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.PurchasesTableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, storage.ErrPurchaseNotFound
	}

	var purchase models.Purchase
	if err := attributevalue.UnmarshalMap(result.Item, &purchase); err != nil {
		return nil, fmt.Errorf("failed to unmarshal purchase: %w", err)
	}

	return &purchase, nil
}

// ListPurchasesByBuyer retrieves all purchases made by a participant, using
// the buyer_id GSI.
func (s *Store) ListPurchasesByBuyer(ctx context.Context, buyerID string) ([]models.Purchase, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.PurchasesTableName),
		IndexName:              aws.String(buyerIDIndex),
		KeyConditionExpression: aws.String("buyer_id = :buyer_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":buyer_id": &types.AttributeValueMemberS{Value: buyerID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query purchases by buyer: %w", err)
	}

	var purchases []models.Purchase
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &purchases); err != nil {
		return nil, fmt.Errorf("failed to unmarshal purchases: %w", err)
	}

	return purchases, nil
}
