package notify

import (
	"context"
	"encoding/json"
	"errors"

	"cloud.google.com/go/pubsub"
	"github.com/TrongPhucX5/BizFlowProject/pkg/config"
	"github.com/TrongPhucX5/BizFlowProject/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Sender publishes fire-and-forget notifications. Callers own the error:
// a failed publish must never affect the transaction that triggered it.
type Sender interface {
	Publish(ctx context.Context, topic, title, body string) error
}

type message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PubSubSender publishes to Google Cloud Pub/Sub, one topic per store.
type PubSubSender struct {
	client *pubsub.Client
}

// NewPubSubSender builds a Pub/Sub-backed sender. It uses Application
// Default Credentials unless CredentialsJSON is provided.
func NewPubSubSender(ctx context.Context, cfg *config.PubSubConfig) (*PubSubSender, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("pubsub project id is required")
	}

	var (
		client *pubsub.Client
		err    error
	)
	if cfg.CredentialsJSON != "" {
		client, err = pubsub.NewClient(ctx, cfg.ProjectID, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	} else {
		client, err = pubsub.NewClient(ctx, cfg.ProjectID)
	}
	if err != nil {
		return nil, err
	}

	return &PubSubSender{client: client}, nil
}

// Publish sends one message and waits for the server-assigned id
func (s *PubSubSender) Publish(ctx context.Context, topic, title, body string) error {
	data, err := json.Marshal(message{Title: title, Body: body})
	if err != nil {
		return err
	}

	result := s.client.Topic(topic).Publish(ctx, &pubsub.Message{Data: data})
	_, err = result.Get(ctx)
	return err
}

// Close releases the underlying client
func (s *PubSubSender) Close() error {
	return s.client.Close()
}

// LogSender is the fallback when Pub/Sub is not configured: notifications
// are written to the log and considered delivered.
type LogSender struct{}

func (LogSender) Publish(_ context.Context, topic, title, body string) error {
	logger.GetLogger().Info("notification",
		zap.String("topic", topic),
		zap.String("title", title),
		zap.String("body", body))
	return nil
}

// FromConfig picks the Pub/Sub sender when a project is configured and the
// log fallback otherwise.
func FromConfig(ctx context.Context, cfg *config.PubSubConfig) (Sender, error) {
	if cfg.ProjectID == "" {
		return LogSender{}, nil
	}
	return NewPubSubSender(ctx, cfg)
}
