package sqs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/apperr"
	"github.com/iyhunko/product-catalog/internal/model"
)

const (
	// TopicAttribute is the message attribute carrying the lifecycle topic.
	TopicAttribute = "topic"

	dependencyName = "sqs"
)

// SendMessageAPI defines the interface for SQS operations used by Publisher.
type SendMessageAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher handles publishing lifecycle events to AWS SQS.
type Publisher struct {
	client   SendMessageAPI
	queueURL string
	fifo     bool
}

// NewPublisher creates a new SQS Publisher with the given client and queue URL.
func NewPublisher(client SendMessageAPI, queueURL string) *Publisher {
	return &Publisher{
		client:   client,
		queueURL: queueURL,
		fifo:     strings.HasSuffix(queueURL, ".fifo"),
	}
}

// PublishEvent sends the JSON encoded event to the queue, tagged with topic.
// FIFO queues use the topic as the message group so events keep their order.
func (p *Publisher) PublishEvent(ctx context.Context, topic string, event model.LifecycleEvent) error {
	messageBody, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(messageBody)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			TopicAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(topic),
			},
		},
	}
	if p.fifo {
		input.MessageGroupId = aws.String(topic)
		input.MessageDeduplicationId = aws.String(uuid.NewString())
	}

	if _, err = p.client.SendMessage(ctx, input); err != nil {
		return apperr.Upstream(dependencyName, "send message", err)
	}

	return nil
}
