package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Message acknowledgment statuses reported by the gateway.
const (
	MessagePending   = "PENDING"
	MessageServerAck = "SERVER_ACK"
	MessageDelivered = "DELIVERY_ACK"
	MessageRead      = "READ"
	MessagePlayed    = "PLAYED"
)

// MessageKey identifies one message within a conversation.
type MessageKey struct {
	RemoteJID   string `json:"remoteJid"`
	FromMe      bool   `json:"fromMe"`
	ID          string `json:"id"`
	Participant string `json:"participant,omitempty"`
}

// Quoted references an earlier message, e.g. when replying or archiving.
// The message body is kept raw since every message kind nests its
// content differently.
type Quoted struct {
	Key     *MessageKey     `json:"key,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
}

// Timestamp tolerates the gateway writing message timestamps as either a
// JSON number or a string, depending on version.
type Timestamp string

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Timestamp(n.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	*t = Timestamp(s)
	return nil
}

// Unix parses the timestamp as Unix seconds, zero when absent or
// unparseable.
func (t Timestamp) Unix() int64 {
	v, err := strconv.ParseInt(string(t), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Time converts the timestamp to a time.Time, the zero value when it
// cannot be parsed.
func (t Timestamp) Time() time.Time {
	unix := t.Unix()
	if unix == 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0)
}

// SendResponse is the gateway acknowledgment of a send operation. The
// gateway can answer 200 with a failure body, so success is derived from
// the payload rather than the HTTP status.
type SendResponse struct {
	Key              *MessageKey     `json:"key,omitempty"`
	Message          json.RawMessage `json:"message,omitempty"`
	MessageType      string          `json:"messageType,omitempty"`
	MessageTimestamp Timestamp       `json:"messageTimestamp,omitempty"`
	Status           string          `json:"status,omitempty"`
	Error            bool            `json:"error,omitempty"`
}

// IsSuccess reports whether the gateway accepted the message: no error
// flag, no failing status label and a message key with an id.
func (r *SendResponse) IsSuccess() bool {
	if r == nil || r.Error {
		return false
	}
	switch strings.ToUpper(r.Status) {
	case "ERROR", "FAILED":
		return false
	}
	return r.Key != nil && r.Key.ID != ""
}

// MessageID returns the gateway-assigned message identifier, empty when
// the acknowledgment carried none.
func (r *SendResponse) MessageID() string {
	if r == nil || r.Key == nil {
		return ""
	}
	return r.Key.ID
}

// TextMessage is the request body for a plain text send.
type TextMessage struct {
	Number           string   `json:"number"`
	Text             string   `json:"text"`
	Delay            int      `json:"delay,omitempty"`
	Quoted           *Quoted  `json:"quoted,omitempty"`
	LinkPreview      *bool    `json:"linkPreview,omitempty"`
	MentionsEveryOne *bool    `json:"mentionsEveryOne,omitempty"`
	Mentioned        []string `json:"mentioned,omitempty"`
}

// MediaType selects the media kind of a MediaMessage.
type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaDocument MediaType = "document"
)

// MediaMessage is the request body for image, video and document sends.
// Media carries either a public URL or base64 data.
type MediaMessage struct {
	Number    string    `json:"number"`
	MediaType MediaType `json:"mediatype"`
	MimeType  string    `json:"mimetype,omitempty"`
	Caption   string    `json:"caption,omitempty"`
	Media     string    `json:"media"`
	FileName  string    `json:"fileName,omitempty"`
	Delay     int       `json:"delay,omitempty"`
	Quoted    *Quoted   `json:"quoted,omitempty"`
}

// AudioMessage is the request body for a voice-note send. Audio carries
// either a public URL or base64 data.
type AudioMessage struct {
	Number   string  `json:"number"`
	Audio    string  `json:"audio"`
	Delay    int     `json:"delay,omitempty"`
	Encoding *bool   `json:"encoding,omitempty"`
	Quoted   *Quoted `json:"quoted,omitempty"`
}

// LocationMessage is the request body for a location pin send.
type LocationMessage struct {
	Number    string  `json:"number"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Delay     int     `json:"delay,omitempty"`
}

// ContactCard is one vCard entry within a ContactMessage.
type ContactCard struct {
	FullName     string `json:"fullName"`
	WUID         string `json:"wuid"`
	PhoneNumber  string `json:"phoneNumber"`
	Organization string `json:"organization,omitempty"`
	Email        string `json:"email,omitempty"`
	URL          string `json:"url,omitempty"`
}

// ContactMessage shares one or more contact cards.
type ContactMessage struct {
	Number  string        `json:"number"`
	Contact []ContactCard `json:"contact"`
}

// ReactionMessage toggles an emoji reaction on a message. An empty
// Reaction removes a previous one.
type ReactionMessage struct {
	Key      MessageKey `json:"key"`
	Reaction string     `json:"reaction"`
}

// PollMessage is the request body for a poll send.
type PollMessage struct {
	Number          string   `json:"number"`
	Name            string   `json:"name"`
	SelectableCount int      `json:"selectableCount"`
	Values          []string `json:"values"`
	Delay           int      `json:"delay,omitempty"`
}

// StickerMessage is the request body for a sticker send. Sticker carries
// either a public URL or base64 data.
type StickerMessage struct {
	Number  string  `json:"number"`
	Sticker string  `json:"sticker"`
	Delay   int     `json:"delay,omitempty"`
	Quoted  *Quoted `json:"quoted,omitempty"`
}

// StatusMessage publishes a story to the instance's status feed. Type is
// "text", "image", "video" or "audio"; Content is the text or media URL.
type StatusMessage struct {
	Type            string   `json:"type"`
	Content         string   `json:"content"`
	Caption         string   `json:"caption,omitempty"`
	BackgroundColor string   `json:"backgroundColor,omitempty"`
	Font            int      `json:"font,omitempty"`
	AllContacts     bool     `json:"allContacts"`
	StatusJIDList   []string `json:"statusJidList,omitempty"`
}

// StoredMessage is one message record returned by the find endpoint.
type StoredMessage struct {
	ID               string          `json:"id,omitempty"`
	Key              *MessageKey     `json:"key,omitempty"`
	PushName         string          `json:"pushName,omitempty"`
	Message          json.RawMessage `json:"message,omitempty"`
	MessageType      string          `json:"messageType,omitempty"`
	MessageTimestamp Timestamp       `json:"messageTimestamp,omitempty"`
	InstanceID       string          `json:"instanceId,omitempty"`
	Source           string          `json:"source,omitempty"`
}

// ParseMessageList decodes a find-messages payload, accepting a raw
// array, {"messages": [...]} and the paginated
// {"messages": {"records": [...]}} wrapper.
func ParseMessageList(data []byte) ([]StoredMessage, error) {
	if isJSONArray(data) {
		var out []StoredMessage
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("message list: %w", err)
		}
		return out, nil
	}
	var wrapped struct {
		Messages json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("message list: %w", err)
	}
	if isJSONArray(wrapped.Messages) {
		var out []StoredMessage
		if err := json.Unmarshal(wrapped.Messages, &out); err != nil {
			return nil, fmt.Errorf("message list: %w", err)
		}
		return out, nil
	}
	var paginated struct {
		Records []StoredMessage `json:"records"`
	}
	if err := json.Unmarshal(wrapped.Messages, &paginated); err != nil {
		return nil, fmt.Errorf("message list: %w", err)
	}
	return paginated.Records, nil
}
