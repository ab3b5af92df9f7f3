package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WebhookEvent names one gateway event stream. The set is open: gateway
// upgrades introduce events faster than clients track them, so names
// outside the documented set are passed through instead of rejected.
// Use Known to tell the two apart.
type WebhookEvent string

// Documented gateway events.
const (
	EventApplicationStartup      WebhookEvent = "APPLICATION_STARTUP"
	EventQRCodeUpdated           WebhookEvent = "QRCODE_UPDATED"
	EventMessagesSet             WebhookEvent = "MESSAGES_SET"
	EventMessagesUpsert          WebhookEvent = "MESSAGES_UPSERT"
	EventMessagesUpdate          WebhookEvent = "MESSAGES_UPDATE"
	EventMessagesDelete          WebhookEvent = "MESSAGES_DELETE"
	EventSendMessage             WebhookEvent = "SEND_MESSAGE"
	EventContactsSet             WebhookEvent = "CONTACTS_SET"
	EventContactsUpsert          WebhookEvent = "CONTACTS_UPSERT"
	EventContactsUpdate          WebhookEvent = "CONTACTS_UPDATE"
	EventPresenceUpdate          WebhookEvent = "PRESENCE_UPDATE"
	EventChatsSet                WebhookEvent = "CHATS_SET"
	EventChatsUpsert             WebhookEvent = "CHATS_UPSERT"
	EventChatsUpdate             WebhookEvent = "CHATS_UPDATE"
	EventChatsDelete             WebhookEvent = "CHATS_DELETE"
	EventGroupsUpsert            WebhookEvent = "GROUPS_UPSERT"
	EventGroupUpdate             WebhookEvent = "GROUP_UPDATE"
	EventGroupParticipantsUpdate WebhookEvent = "GROUP_PARTICIPANTS_UPDATE"
	EventConnectionUpdate        WebhookEvent = "CONNECTION_UPDATE"
	EventLabelsEdit              WebhookEvent = "LABELS_EDIT"
	EventLabelsAssociation       WebhookEvent = "LABELS_ASSOCIATION"
	EventCall                    WebhookEvent = "CALL"
	EventTypebotStart            WebhookEvent = "TYPEBOT_START"
	EventTypebotChangeStatus     WebhookEvent = "TYPEBOT_CHANGE_STATUS"
	EventRemoveInstance          WebhookEvent = "REMOVE_INSTANCE"
	EventLogoutInstance          WebhookEvent = "LOGOUT_INSTANCE"
)

var knownEvents = map[WebhookEvent]struct{}{
	EventApplicationStartup:      {},
	EventQRCodeUpdated:           {},
	EventMessagesSet:             {},
	EventMessagesUpsert:          {},
	EventMessagesUpdate:          {},
	EventMessagesDelete:          {},
	EventSendMessage:             {},
	EventContactsSet:             {},
	EventContactsUpsert:          {},
	EventContactsUpdate:          {},
	EventPresenceUpdate:          {},
	EventChatsSet:                {},
	EventChatsUpsert:             {},
	EventChatsUpdate:             {},
	EventChatsDelete:             {},
	EventGroupsUpsert:            {},
	EventGroupUpdate:             {},
	EventGroupParticipantsUpdate: {},
	EventConnectionUpdate:        {},
	EventLabelsEdit:              {},
	EventLabelsAssociation:       {},
	EventCall:                    {},
	EventTypebotStart:            {},
	EventTypebotChangeStatus:     {},
	EventRemoveInstance:          {},
	EventLogoutInstance:          {},
}

// Known reports whether e is one of the documented gateway events.
func (e WebhookEvent) Known() bool {
	_, ok := knownEvents[e]
	return ok
}

// UnknownEvents returns the subset of events that are not documented,
// preserving order. Callers typically log these before subscribing.
func UnknownEvents(events []WebhookEvent) []WebhookEvent {
	var out []WebhookEvent
	for _, e := range events {
		if !e.Known() {
			out = append(out, e)
		}
	}
	return out
}

// WebhookConfig describes an outbound event subscription. ByEvents asks
// the gateway for one delivery per event kind on a suffixed path, Base64
// asks for media as inline base64 instead of download URLs.
type WebhookConfig struct {
	Enabled  bool              `json:"enabled"`
	URL      string            `json:"url"`
	Headers  map[string]string `json:"headers,omitempty"`
	ByEvents bool              `json:"byEvents"`
	Base64   bool              `json:"base64"`
	Events   []WebhookEvent    `json:"events,omitempty"`
}

// webhookConfigWire carries every spelling the gateway has used for the
// delivery-mode flags across versions.
type webhookConfigWire struct {
	Enabled         *bool             `json:"enabled"`
	URL             string            `json:"url"`
	Headers         map[string]string `json:"headers"`
	ByEvents        *bool             `json:"byEvents"`
	WebhookByEvents *bool             `json:"webhookByEvents"`
	ByEventsSnake   *bool             `json:"webhook_by_events"`
	Base64          *bool             `json:"base64"`
	WebhookBase64   *bool             `json:"webhookBase64"`
	Base64Snake     *bool             `json:"webhook_base64"`
	Events          []WebhookEvent    `json:"events"`
}

func (c *WebhookConfig) UnmarshalJSON(data []byte) error {
	var w webhookConfigWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	c.URL = w.URL
	c.Headers = w.Headers
	c.Events = w.Events
	c.Enabled = w.Enabled == nil || *w.Enabled
	c.ByEvents = firstBool(w.ByEvents, w.WebhookByEvents, w.ByEventsSnake)
	c.Base64 = firstBool(w.Base64, w.WebhookBase64, w.Base64Snake)

	return nil
}

// firstBool returns the first non-nil flag, false when all are absent.
func firstBool(flags ...*bool) bool {
	for _, f := range flags {
		if f != nil {
			return *f
		}
	}
	return false
}

// ParseWebhookConfig decodes a webhook find/set payload, unwrapping the
// {"webhook": {...}} envelope some gateway versions add.
func ParseWebhookConfig(data []byte) (*WebhookConfig, error) {
	var cfg WebhookConfig
	if err := json.Unmarshal(unwrapKey(data, "webhook"), &cfg); err != nil {
		return nil, fmt.Errorf("webhook config: %w", err)
	}
	return &cfg, nil
}

// WebsocketConfig enables the websocket event channel.
type WebsocketConfig struct {
	Enabled bool           `json:"enabled"`
	Events  []WebhookEvent `json:"events,omitempty"`
}

// RabbitMQConfig routes events into an AMQP broker.
type RabbitMQConfig struct {
	Enabled    bool           `json:"enabled"`
	URI        string         `json:"uri,omitempty"`
	Exchange   string         `json:"exchange,omitempty"`
	RoutingKey string         `json:"routingKey,omitempty"`
	Events     []WebhookEvent `json:"events,omitempty"`
}

// SQSConfig routes events into an Amazon SQS queue.
type SQSConfig struct {
	Enabled         bool           `json:"enabled"`
	AccessKeyID     string         `json:"accessKeyId,omitempty"`
	SecretAccessKey string         `json:"secretAccessKey,omitempty"`
	AccountID       string         `json:"accountId,omitempty"`
	Region          string         `json:"region,omitempty"`
	QueueURL        string         `json:"queueUrl,omitempty"`
	Events          []WebhookEvent `json:"events,omitempty"`
}

// ParseWebsocketConfig decodes a websocket find/set payload, unwrapping
// the {"websocket": {...}} envelope when present.
func ParseWebsocketConfig(data []byte) (*WebsocketConfig, error) {
	var cfg WebsocketConfig
	if err := json.Unmarshal(unwrapKey(data, "websocket"), &cfg); err != nil {
		return nil, fmt.Errorf("websocket config: %w", err)
	}
	return &cfg, nil
}

// ParseRabbitMQConfig decodes a RabbitMQ find/set payload, unwrapping
// the {"rabbitmq": {...}} envelope when present.
func ParseRabbitMQConfig(data []byte) (*RabbitMQConfig, error) {
	var cfg RabbitMQConfig
	if err := json.Unmarshal(unwrapKey(data, "rabbitmq"), &cfg); err != nil {
		return nil, fmt.Errorf("rabbitmq config: %w", err)
	}
	return &cfg, nil
}

// ParseSQSConfig decodes an SQS find/set payload, unwrapping the
// {"sqs": {...}} envelope when present.
func ParseSQSConfig(data []byte) (*SQSConfig, error) {
	var cfg SQSConfig
	if err := json.Unmarshal(unwrapKey(data, "sqs"), &cfg); err != nil {
		return nil, fmt.Errorf("sqs config: %w", err)
	}
	return &cfg, nil
}

// WebhookEventPayload is the body the gateway posts to a configured
// webhook URL. Data stays raw since every event carries its own shape.
type WebhookEventPayload struct {
	Event       string          `json:"event"`
	Instance    string          `json:"instance"`
	Data        json.RawMessage `json:"data,omitempty"`
	Destination string          `json:"destination,omitempty"`
	DateTime    string          `json:"date_time,omitempty"`
	Sender      string          `json:"sender,omitempty"`
	ServerURL   string          `json:"server_url,omitempty"`
	APIKey      string          `json:"apikey,omitempty"`
}

// CanonicalEvent maps the dotted lowercase spelling used on delivery
// ("messages.upsert") onto the constant spelling used for subscriptions
// ("MESSAGES_UPSERT").
func (p *WebhookEventPayload) CanonicalEvent() WebhookEvent {
	return WebhookEvent(strings.ToUpper(strings.ReplaceAll(p.Event, ".", "_")))
}
