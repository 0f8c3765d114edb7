package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/referral-earnings/pkg/models"
)

// SQSAPI defines the subset of the SQS client used by the emitter.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSEmitter implements the Emitter interface using AWS SQS. The notifier
// Lambda consumes the queue and pushes events to the payee's websocket
// connections.
type SQSEmitter struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSEmitter creates a new SQSEmitter.
func NewSQSEmitter(client SQSAPI, queueURL string) *SQSEmitter {
	return &SQSEmitter{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ Emitter = (*SQSEmitter)(nil)

// EmitEarning sends the earning event to the SQS queue.
func (e *SQSEmitter) EmitEarning(ctx context.Context, event *models.EarningEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal earning event for SQS: %w", err)
	}

	_, err = e.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(e.QueueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}
