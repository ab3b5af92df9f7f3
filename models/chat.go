package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Chat mirrors one conversation entry from the chat listing endpoint.
type Chat struct {
	ID          string     `json:"id,omitempty"`
	RemoteJID   string     `json:"remoteJid,omitempty"`
	Name        string     `json:"name,omitempty"`
	Labels      []string   `json:"labels,omitempty"`
	UnreadCount int        `json:"unreadCount,omitempty"`
	Archived    bool       `json:"archived,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Contact mirrors one address-book entry.
type Contact struct {
	ID                string `json:"id,omitempty"`
	RemoteJID         string `json:"remoteJid,omitempty"`
	PushName          string `json:"pushName,omitempty"`
	ProfilePictureURL string `json:"profilePicUrl,omitempty"`
	Owner             string `json:"owner,omitempty"`
}

// ProfilePicture is the answer of the profile-picture lookup.
type ProfilePicture struct {
	WUID              string `json:"wuid,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

// PrivacySettings mirrors the gateway's privacy flags. Values are
// audience labels such as "all", "contacts", "contact_blacklist",
// "match_last_seen" and "none".
type PrivacySettings struct {
	ReadReceipts string `json:"readreceipts,omitempty"`
	Profile      string `json:"profile,omitempty"`
	Status       string `json:"status,omitempty"`
	Online       string `json:"online,omitempty"`
	Last         string `json:"last,omitempty"`
	GroupAdd     string `json:"groupadd,omitempty"`
}

// NumberCheck reports whether one dialed number exists on WhatsApp.
type NumberCheck struct {
	Exists bool   `json:"exists"`
	JID    string `json:"jid"`
	Number string `json:"number"`
}

// Presence labels accepted by the presence endpoints.
type Presence string

const (
	PresenceAvailable   Presence = "available"
	PresenceUnavailable Presence = "unavailable"
	PresenceComposing   Presence = "composing"
	PresenceRecording   Presence = "recording"
	PresencePaused      Presence = "paused"
)

// PresenceRequest simulates typing or recording activity in a chat for
// Delay milliseconds.
type PresenceRequest struct {
	Number   string   `json:"number"`
	Delay    int      `json:"delay,omitempty"`
	Presence Presence `json:"presence"`
}

// ReadMessage identifies one message to acknowledge as read.
type ReadMessage struct {
	RemoteJID string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
	ID        string `json:"id"`
}

// ArchiveRequest toggles the archived flag of a chat. The gateway wants
// the key of the chat's most recent message along with the toggle.
type ArchiveRequest struct {
	Chat        string  `json:"chat"`
	Archive     bool    `json:"archive"`
	LastMessage *Quoted `json:"lastMessage,omitempty"`
}

// DeleteMessageRequest identifies a message to revoke for everyone.
type DeleteMessageRequest struct {
	ID          string `json:"id"`
	RemoteJID   string `json:"remoteJid"`
	FromMe      bool   `json:"fromMe"`
	Participant string `json:"participant,omitempty"`
}

// ProfileStatus tolerates both the flat string and the
// {"status", "setAt"} object shapes the gateway uses for the profile
// status text.
type ProfileStatus struct {
	Status string     `json:"status,omitempty"`
	SetAt  *time.Time `json:"setAt,omitempty"`
}

func (p *ProfileStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Status = s
		p.SetAt = nil
		return nil
	}
	type alias ProfileStatus
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("profile status: %w", err)
	}
	*p = ProfileStatus(a)
	return nil
}

// Profile is the public profile attached to a number.
type Profile struct {
	WUID         string         `json:"wuid,omitempty"`
	Name         string         `json:"name,omitempty"`
	NumberExists bool           `json:"numberExists,omitempty"`
	Picture      string         `json:"picture,omitempty"`
	Status       *ProfileStatus `json:"status,omitempty"`
	IsBusiness   bool           `json:"isBusiness,omitempty"`
	Email        string         `json:"email,omitempty"`
	Description  string         `json:"description,omitempty"`
	Website      string         `json:"website,omitempty"`
}

// ParseChatList decodes a chat listing, accepting both a raw array and
// the {"chats": [...]} wrapper.
func ParseChatList(data []byte) ([]Chat, error) {
	if isJSONArray(data) {
		var out []Chat
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("chat list: %w", err)
		}
		return out, nil
	}
	var wrapped struct {
		Chats []Chat `json:"chats"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("chat list: %w", err)
	}
	return wrapped.Chats, nil
}

// ParseContactList decodes a contact listing, accepting both a raw array
// and the {"contacts": [...]} wrapper.
func ParseContactList(data []byte) ([]Contact, error) {
	if isJSONArray(data) {
		var out []Contact
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("contact list: %w", err)
		}
		return out, nil
	}
	var wrapped struct {
		Contacts []Contact `json:"contacts"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("contact list: %w", err)
	}
	return wrapped.Contacts, nil
}
