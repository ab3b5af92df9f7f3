package evolution

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/evogo/evolution/models"
)

// ChatResource groups the conversation-level endpoints: number lookups,
// read receipts, archiving and the find queries backed by the gateway's
// message store.
type ChatResource struct {
	client *Client
	logger *zap.Logger
}

// CheckNumbers asks which of the dialed numbers exist on WhatsApp.
func (r *ChatResource) CheckNumbers(ctx context.Context, instance string, numbers []string) ([]models.NumberCheck, error) {
	body := map[string]any{"numbers": numbers}
	raw, err := r.client.Request(ctx, http.MethodPost, "/chat/whatsappNumbers/{instance}", &RequestOptions{Instance: instance, Body: body})
	if err != nil {
		return nil, err
	}
	var out []models.NumberCheck
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkAsRead acknowledges the given messages as read.
func (r *ChatResource) MarkAsRead(ctx context.Context, instance string, messages []models.ReadMessage) error {
	body := map[string]any{"readMessages": messages}
	_, err := r.client.Request(ctx, http.MethodPost, "/chat/markMessageAsRead/{instance}", &RequestOptions{Instance: instance, Body: body})
	return err
}

// Archive toggles the archived flag of a chat.
func (r *ChatResource) Archive(ctx context.Context, instance string, req models.ArchiveRequest) error {
	_, err := r.client.Request(ctx, http.MethodPost, "/chat/archiveChat/{instance}", &RequestOptions{Instance: instance, Body: req})
	return err
}

// DeleteForEveryone revokes a message for every participant.
func (r *ChatResource) DeleteForEveryone(ctx context.Context, instance string, req models.DeleteMessageRequest) error {
	_, err := r.client.Request(ctx, http.MethodDelete, "/chat/deleteMessageForEveryone/{instance}", &RequestOptions{Instance: instance, Body: req})
	return err
}

// SendPresence simulates typing or recording activity in a chat.
func (r *ChatResource) SendPresence(ctx context.Context, instance string, req models.PresenceRequest) error {
	_, err := r.client.Request(ctx, http.MethodPost, "/chat/sendPresence/{instance}", &RequestOptions{Instance: instance, Body: req})
	return err
}

// FetchProfilePicture looks up the profile picture URL of a number.
func (r *ChatResource) FetchProfilePicture(ctx context.Context, instance, number string) (*models.ProfilePicture, error) {
	body := map[string]any{"number": number}
	raw, err := r.client.Request(ctx, http.MethodPost, "/chat/fetchProfilePictureUrl/{instance}", &RequestOptions{Instance: instance, Body: body})
	if err != nil {
		return nil, err
	}
	var out models.ProfilePicture
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindContacts queries the gateway's contact store. An empty id returns
// every contact.
func (r *ChatResource) FindContacts(ctx context.Context, instance, id string) ([]models.Contact, error) {
	where := map[string]any{}
	if id != "" {
		where["id"] = id
	}
	body := map[string]any{"where": where}
	raw, err := r.client.Request(ctx, http.MethodPost, "/chat/findContacts/{instance}", &RequestOptions{Instance: instance, Body: body})
	if err != nil {
		return nil, err
	}
	list, err := models.ParseContactList(raw)
	if err != nil {
		return nil, newModelValidationError(err, raw)
	}
	return list, nil
}

// FindMessages pages through the stored messages of a conversation.
func (r *ChatResource) FindMessages(ctx context.Context, instance, remoteJID string, limit int) ([]models.StoredMessage, error) {
	body := map[string]any{
		"where": map[string]any{
			"key": map[string]any{"remoteJid": remoteJID},
		},
	}
	if limit > 0 {
		body["limit"] = limit
	}
	raw, err := r.client.Request(ctx, http.MethodPost, "/chat/findMessages/{instance}", &RequestOptions{Instance: instance, Body: body})
	if err != nil {
		return nil, err
	}
	list, err := models.ParseMessageList(raw)
	if err != nil {
		return nil, newModelValidationError(err, raw)
	}
	return list, nil
}

// FindChats lists the conversations known to the instance.
func (r *ChatResource) FindChats(ctx context.Context, instance string) ([]models.Chat, error) {
	raw, err := r.client.Request(ctx, http.MethodPost, "/chat/findChats/{instance}", &RequestOptions{Instance: instance})
	if err != nil {
		return nil, err
	}
	list, err := models.ParseChatList(raw)
	if err != nil {
		return nil, newModelValidationError(err, raw)
	}
	return list, nil
}
