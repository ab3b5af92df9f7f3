package evolution

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/evogo/evolution/models"
)

// WebhookResource configures event delivery for an instance: HTTP
// webhooks plus the websocket, RabbitMQ and SQS sibling transports.
type WebhookResource struct {
	client *Client
	logger *zap.Logger
}

// Set replaces the webhook subscription of an instance and returns the
// stored configuration. Event names outside the documented set are
// forwarded as-is; they are logged first so typos stand out against
// genuinely new gateway events.
func (r *WebhookResource) Set(ctx context.Context, instance string, cfg models.WebhookConfig) (*models.WebhookConfig, error) {
	if unknown := models.UnknownEvents(cfg.Events); len(unknown) > 0 {
		r.logger.Warn("subscribing to events outside the documented set",
			zap.String("instance", instance),
			zap.Any("events", unknown),
		)
	}
	body := map[string]any{"webhook": cfg}
	raw, err := r.client.Request(ctx, http.MethodPost, "/webhook/set/{instance}", &RequestOptions{Instance: instance, Body: body})
	if err != nil {
		return nil, err
	}
	stored, err := models.ParseWebhookConfig(raw)
	if err != nil {
		return nil, newModelValidationError(err, raw)
	}
	return stored, nil
}

// Find returns the current webhook subscription of an instance.
func (r *WebhookResource) Find(ctx context.Context, instance string) (*models.WebhookConfig, error) {
	raw, err := r.client.Request(ctx, http.MethodGet, "/webhook/find/{instance}", &RequestOptions{Instance: instance})
	if err != nil {
		return nil, err
	}
	cfg, err := models.ParseWebhookConfig(raw)
	if err != nil {
		return nil, newModelValidationError(err, raw)
	}
	return cfg, nil
}

// SetWebsocket enables or disables the websocket event channel.
func (r *WebhookResource) SetWebsocket(ctx context.Context, instance string, cfg models.WebsocketConfig) (*models.WebsocketConfig, error) {
	body := map[string]any{"websocket": cfg}
	raw, err := r.client.Request(ctx, http.MethodPost, "/websocket/set/{instance}", &RequestOptions{Instance: instance, Body: body})
	if err != nil {
		return nil, err
	}
	stored, err := models.ParseWebsocketConfig(raw)
	if err != nil {
		return nil, newModelValidationError(err, raw)
	}
	return stored, nil
}

// FindWebsocket returns the websocket channel configuration.
func (r *WebhookResource) FindWebsocket(ctx context.Context, instance string) (*models.WebsocketConfig, error) {
	raw, err := r.client.Request(ctx, http.MethodGet, "/websocket/find/{instance}", &RequestOptions{Instance: instance})
	if err != nil {
		return nil, err
	}
	cfg, err := models.ParseWebsocketConfig(raw)
	if err != nil {
		return nil, newModelValidationError(err, raw)
	}
	return cfg, nil
}

// SetRabbitMQ routes instance events into an AMQP broker.
func (r *WebhookResource) SetRabbitMQ(ctx context.Context, instance string, cfg models.RabbitMQConfig) (*models.RabbitMQConfig, error) {
	body := map[string]any{"rabbitmq": cfg}
	raw, err := r.client.Request(ctx, http.MethodPost, "/rabbitmq/set/{instance}", &RequestOptions{Instance: instance, Body: body})
	if err != nil {
		return nil, err
	}
	stored, err := models.ParseRabbitMQConfig(raw)
	if err != nil {
		return nil, newModelValidationError(err, raw)
	}
	return stored, nil
}

// FindRabbitMQ returns the AMQP routing configuration.
func (r *WebhookResource) FindRabbitMQ(ctx context.Context, instance string) (*models.RabbitMQConfig, error) {
	raw, err := r.client.Request(ctx, http.MethodGet, "/rabbitmq/find/{instance}", &RequestOptions{Instance: instance})
	if err != nil {
		return nil, err
	}
	cfg, err := models.ParseRabbitMQConfig(raw)
	if err != nil {
		return nil, newModelValidationError(err, raw)
	}
	return cfg, nil
}

// SetSQS routes instance events into an Amazon SQS queue.
func (r *WebhookResource) SetSQS(ctx context.Context, instance string, cfg models.SQSConfig) (*models.SQSConfig, error) {
	body := map[string]any{"sqs": cfg}
	raw, err := r.client.Request(ctx, http.MethodPost, "/sqs/set/{instance}", &RequestOptions{Instance: instance, Body: body})
	if err != nil {
		return nil, err
	}
	stored, err := models.ParseSQSConfig(raw)
	if err != nil {
		return nil, newModelValidationError(err, raw)
	}
	return stored, nil
}

// FindSQS returns the SQS routing configuration.
func (r *WebhookResource) FindSQS(ctx context.Context, instance string) (*models.SQSConfig, error) {
	raw, err := r.client.Request(ctx, http.MethodGet, "/sqs/find/{instance}", &RequestOptions{Instance: instance})
	if err != nil {
		return nil, err
	}
	cfg, err := models.ParseSQSConfig(raw)
	if err != nil {
		return nil, newModelValidationError(err, raw)
	}
	return cfg, nil
}
