package evolution

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/evogo/evolution/models"
)

// MessageResource groups the send endpoints. Every send posts to
// /message/send<Kind>/{instance}; whether the gateway accepted the
// message is read off the response body via SendResponse.IsSuccess, not
// off the HTTP status.
type MessageResource struct {
	client *Client
	logger *zap.Logger
}

func (r *MessageResource) send(ctx context.Context, path, instance string, body any) (*models.SendResponse, error) {
	raw, err := r.client.Request(ctx, http.MethodPost, path, &RequestOptions{Instance: instance, Body: body})
	if err != nil {
		return nil, err
	}
	var out models.SendResponse
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	if !out.IsSuccess() {
		r.logger.Warn("gateway did not acknowledge message",
			zap.String("path", path),
			zap.String("status", out.Status),
		)
	}
	return &out, nil
}

// SendText sends a plain text message.
func (r *MessageResource) SendText(ctx context.Context, instance string, msg models.TextMessage) (*models.SendResponse, error) {
	return r.send(ctx, "/message/sendText/{instance}", instance, msg)
}

// SendMedia sends an image, video or document from a URL or base64 data.
func (r *MessageResource) SendMedia(ctx context.Context, instance string, msg models.MediaMessage) (*models.SendResponse, error) {
	return r.send(ctx, "/message/sendMedia/{instance}", instance, msg)
}

// SendAudio sends a voice note.
func (r *MessageResource) SendAudio(ctx context.Context, instance string, msg models.AudioMessage) (*models.SendResponse, error) {
	return r.send(ctx, "/message/sendWhatsAppAudio/{instance}", instance, msg)
}

// SendSticker sends a sticker.
func (r *MessageResource) SendSticker(ctx context.Context, instance string, msg models.StickerMessage) (*models.SendResponse, error) {
	return r.send(ctx, "/message/sendSticker/{instance}", instance, msg)
}

// SendLocation sends a location pin.
func (r *MessageResource) SendLocation(ctx context.Context, instance string, msg models.LocationMessage) (*models.SendResponse, error) {
	return r.send(ctx, "/message/sendLocation/{instance}", instance, msg)
}

// SendContact shares one or more contact cards.
func (r *MessageResource) SendContact(ctx context.Context, instance string, msg models.ContactMessage) (*models.SendResponse, error) {
	return r.send(ctx, "/message/sendContact/{instance}", instance, msg)
}

// SendReaction toggles an emoji reaction on an existing message.
func (r *MessageResource) SendReaction(ctx context.Context, instance string, msg models.ReactionMessage) (*models.SendResponse, error) {
	return r.send(ctx, "/message/sendReaction/{instance}", instance, msg)
}

// SendPoll sends a poll.
func (r *MessageResource) SendPoll(ctx context.Context, instance string, msg models.PollMessage) (*models.SendResponse, error) {
	return r.send(ctx, "/message/sendPoll/{instance}", instance, msg)
}

// SendStatus publishes a story to the instance's status feed.
func (r *MessageResource) SendStatus(ctx context.Context, instance string, msg models.StatusMessage) (*models.SendResponse, error) {
	return r.send(ctx, "/message/sendStatus/{instance}", instance, msg)
}
