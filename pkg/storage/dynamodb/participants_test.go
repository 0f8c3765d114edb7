package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/referral-earnings/pkg/models"
	"github.com/chris/referral-earnings/pkg/storage"
	"github.com/chris/referral-earnings/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestStore(client DynamoDBAPI) *Store {
	return New(client, "participants", "codes", "purchases", "ledger", "connections")
}

func cancellationReasons(failedIndex, total int) []types.CancellationReason {
	reasons := make([]types.CancellationReason, total)
	for i := range reasons {
		code := "None"
		if i == failedIndex {
			code = "ConditionalCheckFailed"
		}
		reasons[i] = types.CancellationReason{Code: aws.String(code)}
	}
	return reasons
}

func TestCreateParticipant(t *testing.T) {
	participant := &models.Participant{
		Id:           "p1",
		Name:         "Alice",
		ReferralCode: "AAAAAA",
		Recruits:     []string{},
	}
	sponsor := &models.Participant{
		Id:           "p0",
		ReferralCode: "SSSSSS",
		Recruits:     []string{"BBBBBB"},
	}

	t.Run("Success Without Sponsor", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(input *dynamodb.TransactWriteItemsInput) bool {
			return len(input.TransactItems) == 2
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := newTestStore(mockClient).CreateParticipant(context.Background(), participant, nil)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Success With Sponsor", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(input *dynamodb.TransactWriteItemsInput) bool {
			return len(input.TransactItems) == 3
		})).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := newTestStore(mockClient).CreateParticipant(context.Background(), participant, sponsor)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Code Collision", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{
			CancellationReasons: cancellationReasons(1, 3),
		})

		err := newTestStore(mockClient).CreateParticipant(context.Background(), participant, sponsor)

		assert.ErrorIs(t, err, storage.ErrCodeTaken)
		mockClient.AssertExpectations(t)
	})

	t.Run("Sponsor Full", func(t *testing.T) {
		sponsorItem, _ := attributevalue.MarshalMap(sponsor)

		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{
			CancellationReasons: cancellationReasons(2, 3),
		})
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: sponsorItem}, nil)

		err := newTestStore(mockClient).CreateParticipant(context.Background(), participant, sponsor)

		assert.ErrorIs(t, err, storage.ErrReferralCapacityExceeded)
		mockClient.AssertExpectations(t)
	})

	t.Run("Sponsor Deleted", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{
			CancellationReasons: cancellationReasons(2, 3),
		})
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		err := newTestStore(mockClient).CreateParticipant(context.Background(), participant, sponsor)

		assert.ErrorIs(t, err, storage.ErrParticipantNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("some dynamodb error"))

		err := newTestStore(mockClient).CreateParticipant(context.Background(), participant, sponsor)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute enrollment transaction")
		mockClient.AssertExpectations(t)
	})
}

func TestGetParticipant(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		participant := models.Participant{Id: "p1", Name: "Alice", ReferralCode: "AAAAAA"}
		item, _ := attributevalue.MarshalMap(participant)

		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: item}, nil)

		got, err := newTestStore(mockClient).GetParticipant(context.Background(), "p1")

		assert.NoError(t, err)
		assert.Equal(t, "Alice", got.Name)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		_, err := newTestStore(mockClient).GetParticipant(context.Background(), "missing")

		assert.ErrorIs(t, err, storage.ErrParticipantNotFound)
		mockClient.AssertExpectations(t)
	})
}

func TestGetParticipantByCode(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		claim := referralCodeClaim{Code: "AAAAAA", ParticipantId: "p1"}
		claimItem, _ := attributevalue.MarshalMap(claim)
		participant := models.Participant{Id: "p1", ReferralCode: "AAAAAA"}
		participantItem, _ := attributevalue.MarshalMap(participant)

		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: claimItem}, nil).Once()
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: participantItem}, nil).Once()

		got, err := newTestStore(mockClient).GetParticipantByCode(context.Background(), "AAAAAA")

		assert.NoError(t, err)
		assert.Equal(t, "p1", got.Id)
		mockClient.AssertExpectations(t)
	})

	t.Run("Unknown Code", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		_, err := newTestStore(mockClient).GetParticipantByCode(context.Background(), "NOSUCH")

		assert.ErrorIs(t, err, storage.ErrParticipantNotFound)
		mockClient.AssertExpectations(t)
	})
}
