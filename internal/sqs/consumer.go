package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/iyhunko/product-catalog/internal/model"
)

// ConsumerAPI defines the interface for SQS operations used by Consumer.
type ConsumerAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Handler processes one decoded lifecycle event. A returned error keeps the message on the queue.
type Handler func(ctx context.Context, topic string, event model.LifecycleEvent) error

// Consumer handles consuming lifecycle events from AWS SQS.
type Consumer struct {
	client   ConsumerAPI
	queueURL string
	handle   Handler
}

// NewConsumer creates a new SQS Consumer. A nil handler logs every event.
func NewConsumer(client ConsumerAPI, queueURL string, handle Handler) *Consumer {
	if handle == nil {
		handle = LogEvent
	}
	return &Consumer{
		client:   client,
		queueURL: queueURL,
		handle:   handle,
	}
}

// Start begins consuming messages from the SQS queue until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	slog.Info("Starting SQS consumer", slog.String("queueURL", c.queueURL))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopping SQS consumer")
			return ctx.Err()
		default:
			if err := c.receiveMessages(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("Error receiving messages", slog.Any("err", err))
			}
		}
	}
}

func (c *Consumer) receiveMessages(ctx context.Context) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:              aws.String(c.queueURL),
		MaxNumberOfMessages:   10,
		WaitTimeSeconds:       20, // Long polling
		MessageAttributeNames: []string{TopicAttribute},
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, message := range result.Messages {
		if err := c.processMessage(ctx, message); err != nil {
			slog.Error("Error processing message", slog.Any("err", err))
			continue
		}

		// Delete message after successful processing
		if err := c.deleteMessage(ctx, message); err != nil {
			slog.Error("Error deleting message", slog.Any("err", err))
		}
	}

	return nil
}

func (c *Consumer) processMessage(ctx context.Context, message types.Message) error {
	if message.Body == nil {
		return fmt.Errorf("message body is nil")
	}

	var event model.LifecycleEvent
	if err := json.Unmarshal([]byte(*message.Body), &event); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if event.Action == "" {
		return fmt.Errorf("message has no action")
	}

	var topic string
	if attr, ok := message.MessageAttributes[TopicAttribute]; ok && attr.StringValue != nil {
		topic = *attr.StringValue
	}

	return c.handle(ctx, topic, event)
}

func (c *Consumer) deleteMessage(ctx context.Context, message types.Message) error {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: message.ReceiptHandle,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// LogEvent logs the received lifecycle event.
func LogEvent(_ context.Context, topic string, event model.LifecycleEvent) error {
	attrs := []any{
		slog.String("topic", topic),
		slog.String("action", string(event.Action)),
	}
	switch event.Action {
	case model.ActionImageUploaded:
		attrs = append(attrs, slog.Int64("product_id", event.ProductID), slog.String("filename", event.Filename))
	default:
		attrs = append(attrs, slog.Int64("id", event.ID), slog.String("name", event.Name), slog.String("upc", event.UPC))
		if event.Price != nil {
			attrs = append(attrs, slog.String("price", event.Price.String()))
		}
	}
	slog.Info("Received product notification", attrs...)
	return nil
}
