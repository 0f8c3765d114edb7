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

// referralCodeClaim reserves a referral code in the codes table. The table's
// partition key on code is what makes codes unique network-wide.
type referralCodeClaim struct {
	Code          string `dynamodbav:"code"`
	ParticipantId string `dynamodbav:"participant_id"`
}

// CreateParticipant persists a new participant, claims its referral code, and,
// when a sponsor is given, appends the new code to the sponsor's recruit list.
// All writes execute in a single TransactWriteItems call so a concurrent
// enrollment under the same sponsor can never breach the recruit cap: the
// recruit append is guarded by size(recruits) < cap inside the transaction.
func (s *Store) CreateParticipant(ctx context.Context, participant *models.Participant, sponsor *models.Participant) error {
	participantAV, err := attributevalue.MarshalMap(participant)
	if err != nil {
		return fmt.Errorf("failed to marshal participant: %w", err)
	}

	claim := referralCodeClaim{Code: participant.ReferralCode, ParticipantId: participant.Id}
	claimAV, err := attributevalue.MarshalMap(claim)
	if err != nil {
		return fmt.Errorf("failed to marshal referral code claim: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			// Operation 1: Create the participant record.
			Put: &types.Put{
				TableName:           aws.String(s.ParticipantsTableName),
				Item:                participantAV,
				ConditionExpression: aws.String("attribute_not_exists(id)"),
			},
		},
		{
			// Operation 2: Claim the referral code.
			Put: &types.Put{
				TableName:           aws.String(s.ReferralCodesTableName),
				Item:                claimAV,
				ConditionExpression: aws.String("attribute_not_exists(code)"),
			},
		},
	}

	if sponsor != nil {
		items = append(items, types.TransactWriteItem{
			// Operation 3: Append the recruit to the sponsor, capacity-guarded.
			Update: &types.Update{
				TableName: aws.String(s.ParticipantsTableName),
				Key: map[string]types.AttributeValue{
					"id": &types.AttributeValueMemberS{Value: sponsor.Id},
				},
				UpdateExpression:    aws.String("SET recruits = list_append(recruits, :new_recruit), version = version + :inc"),
				ConditionExpression: aws.String("attribute_exists(id) AND size(recruits) < :cap"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":new_recruit": &types.AttributeValueMemberL{
						Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: participant.ReferralCode}},
					},
					":cap": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", models.MaxDirectRecruits)},
					":inc": &types.AttributeValueMemberN{Value: "1"},
				},
			},
		})
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			for i, reason := range tce.CancellationReasons {
				if reason.Code == nil || *reason.Code != "ConditionalCheckFailed" {
					continue
				}
				switch i {
				case 1:
					return storage.ErrCodeTaken
				case 2:
					// The recruit-append guard also fails when the sponsor
					// row is gone; re-read to tell the two apart.
					if _, getErr := s.GetParticipant(ctx, sponsor.Id); getErr != nil {
						return getErr
					}
					return storage.ErrReferralCapacityExceeded
				}
			}
		}
		return fmt.Errorf("failed to execute enrollment transaction: %w", err)
	}

	return nil
}

// GetParticipant retrieves a participant from DynamoDB by its ID.
func (s *Store) GetParticipant(ctx context.Context, participantID string) (*models.Participant, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": participantID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal participant ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.ParticipantsTableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get participant from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, storage.ErrParticipantNotFound
	}

	var participant models.Participant
	if err := attributevalue.UnmarshalMap(result.Item, &participant); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participant: %w", err)
	}

	return &participant, nil
}

// GetParticipantByCode resolves a referral code through the codes table and
// loads the owning participant.
func (s *Store) GetParticipantByCode(ctx context.Context, referralCode string) (*models.Participant, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"code": referralCode})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal referral code: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.ReferralCodesTableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get referral code from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, storage.ErrParticipantNotFound
	}

	var claim referralCodeClaim
	if err := attributevalue.UnmarshalMap(result.Item, &claim); err != nil {
		return nil, fmt.Errorf("failed to unmarshal referral code claim: %w", err)
	}

	return s.GetParticipant(ctx, claim.ParticipantId)
}

// ListParticipants retrieves all participants from DynamoDB.
func (s *Store) ListParticipants(ctx context.Context) ([]models.Participant, error) {
	result, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.ParticipantsTableName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan participants table: %w", err)
	}

	var participants []models.Participant
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &participants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
	}

	return participants, nil
}
