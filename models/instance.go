package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// InstanceStatus is the management-plane lifecycle label of an instance.
// The gateway introduces labels faster than clients track them, so
// values outside the documented set are kept as-is rather than rejected.
type InstanceStatus string

const (
	StatusCreated      InstanceStatus = "created"
	StatusConnecting   InstanceStatus = "connecting"
	StatusConnected    InstanceStatus = "connected"
	StatusDisconnected InstanceStatus = "disconnected"
	StatusDeleted      InstanceStatus = "deleted"
)

// ConnectionState is the connection-plane label of the instance's live
// socket session. It is independent from InstanceStatus: a listing may
// report a status with no state at all.
type ConnectionState string

const (
	StateOpen       ConnectionState = "open"
	StateClose      ConnectionState = "close"
	StateConnecting ConnectionState = "connecting"
)

// Integration kinds accepted by the gateway when creating an instance.
const (
	IntegrationBaileys  = "WHATSAPP-BAILEYS"
	IntegrationBusiness = "WHATSAPP-BUSINESS"
)

// ErrNoIdentifier is returned when an instance payload carries neither a
// name nor an id under any of the known key spellings.
var ErrNoIdentifier = errors.New("instance payload has no name or id")

// Instance is the normalized view of one gateway session. API versions
// spell the identifying fields differently (name/instanceName,
// id/instanceId); decoding folds every observed spelling into Name and
// ID and fails only when both end up empty.
type Instance struct {
	Name              string            `json:"name,omitempty"`
	ID                string            `json:"id,omitempty"`
	Status            InstanceStatus    `json:"status,omitempty"`
	State             ConnectionState   `json:"state,omitempty"`
	Integration       string            `json:"integration,omitempty"`
	Number            string            `json:"number,omitempty"`
	OwnerJID          string            `json:"ownerJid,omitempty"`
	ProfileName       string            `json:"profileName,omitempty"`
	ProfilePictureURL string            `json:"profilePicUrl,omitempty"`
	Token             string            `json:"token,omitempty"`
	ClientName        string            `json:"clientName,omitempty"`
	CreatedAt         *time.Time        `json:"createdAt,omitempty"`
	UpdatedAt         *time.Time        `json:"updatedAt,omitempty"`
	Settings          *InstanceSettings `json:"settings,omitempty"`
	Counters          *InstanceCounters `json:"_count,omitempty"`
}

// instanceWire lists every field spelling the gateway has been observed
// to use for an instance across versions and endpoints.
type instanceWire struct {
	ID                string            `json:"id"`
	InstanceID        string            `json:"instanceId"`
	Name              string            `json:"name"`
	InstanceName      string            `json:"instanceName"`
	Status            InstanceStatus    `json:"status"`
	State             ConnectionState   `json:"state"`
	ConnectionStatus  ConnectionState   `json:"connectionStatus"`
	Integration       string            `json:"integration"`
	Number            string            `json:"number"`
	Owner             string            `json:"owner"`
	OwnerJID          string            `json:"ownerJid"`
	ProfileName       string            `json:"profileName"`
	ProfilePicURL     string            `json:"profilePicUrl"`
	ProfilePictureURL string            `json:"profilePictureUrl"`
	Token             string            `json:"token"`
	APIKey            string            `json:"apikey"`
	ClientName        string            `json:"clientName"`
	CreatedAt         *time.Time        `json:"createdAt"`
	UpdatedAt         *time.Time        `json:"updatedAt"`
	Settings          *InstanceSettings `json:"settings"`
	SettingBlock      *InstanceSettings `json:"Setting"`
	Counters          *InstanceCounters `json:"_count"`
}

func (i *Instance) UnmarshalJSON(data []byte) error {
	var w instanceWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	i.Name = firstNonEmpty(w.Name, w.InstanceName)
	i.ID = firstNonEmpty(w.ID, w.InstanceID)
	if i.Name == "" && i.ID == "" {
		return ErrNoIdentifier
	}

	i.Status = w.Status
	i.State = w.State
	if i.State == "" {
		i.State = w.ConnectionStatus
	}
	i.Integration = w.Integration
	i.Number = w.Number
	i.OwnerJID = firstNonEmpty(w.OwnerJID, w.Owner)
	i.ProfileName = w.ProfileName
	i.ProfilePictureURL = firstNonEmpty(w.ProfilePicURL, w.ProfilePictureURL)
	i.Token = firstNonEmpty(w.Token, w.APIKey)
	i.ClientName = w.ClientName
	i.CreatedAt = w.CreatedAt
	i.UpdatedAt = w.UpdatedAt
	i.Settings = w.Settings
	if i.Settings == nil {
		i.Settings = w.SettingBlock
	}
	i.Counters = w.Counters

	return nil
}

// InstanceSettings mirrors the behavior flags attached to an instance.
type InstanceSettings struct {
	RejectCall      bool   `json:"rejectCall"`
	MsgCall         string `json:"msgCall,omitempty"`
	GroupsIgnore    bool   `json:"groupsIgnore"`
	AlwaysOnline    bool   `json:"alwaysOnline"`
	ReadMessages    bool   `json:"readMessages"`
	ReadStatus      bool   `json:"readStatus"`
	SyncFullHistory bool   `json:"syncFullHistory"`
}

// Identifier returns the stable handle of the instance: the gateway id
// when present, the name otherwise.
func (i *Instance) Identifier() string {
	if i.ID != "" {
		return i.ID
	}
	return i.Name
}

// InstanceCounters mirrors the _count block of the v2 listing endpoint.
type InstanceCounters struct {
	Message int `json:"Message"`
	Contact int `json:"Contact"`
	Chat    int `json:"Chat"`
}

// Hash normalizes the create-response hash, which arrives as a bare
// string on newer gateways and as {"apikey": "..."} on older ones.
type Hash string

func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*h = Hash(s)
		return nil
	}
	var obj struct {
		APIKey string `json:"apikey"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	*h = Hash(obj.APIKey)
	return nil
}

// QRCode carries the pairing metadata for an instance. The gateway mixes
// value types freely here (string image data, integer scan counts,
// booleans), so the payload stays an open map instead of a fixed schema.
// Numbers are preserved as json.Number.
type QRCode struct {
	Fields map[string]any
}

func (q *QRCode) UnmarshalJSON(data []byte) error {
	m, err := decodeObject(data)
	if err != nil {
		return fmt.Errorf("qrcode: %w", err)
	}
	q.Fields = m
	return nil
}

func (q QRCode) MarshalJSON() ([]byte, error) {
	if q.Fields == nil {
		return []byte("null"), nil
	}
	return json.Marshal(q.Fields)
}

// payload returns the map actually holding the QR fields, unwrapping one
// optional level of nesting under a "qrcode" key.
func (q QRCode) payload() map[string]any {
	if nested, ok := q.Fields["qrcode"].(map[string]any); ok {
		return nested
	}
	return q.Fields
}

// Base64 returns the inline image data, whether it sits at the top level
// or one level down under "qrcode".
func (q QRCode) Base64() string { return stringField(q.payload(), "base64") }

// Code returns the raw pairing code string.
func (q QRCode) Code() string { return stringField(q.payload(), "code") }

// PairingCode returns the phone-pairing code, when the gateway issued one.
func (q QRCode) PairingCode() string { return stringField(q.payload(), "pairingCode") }

// Count reports how many times the code was regenerated. The second
// return is false when the gateway omitted the field or sent a
// non-numeric value.
func (q QRCode) Count() (int, bool) {
	n, ok := q.payload()["count"].(json.Number)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(n.String())
	if err != nil {
		return 0, false
	}
	return v, true
}

// InstanceCreate is the request body for provisioning a new instance.
type InstanceCreate struct {
	InstanceName string `json:"instanceName"`
	Token        string `json:"token,omitempty"`
	Number       string `json:"number,omitempty"`
	QRCode       bool   `json:"qrcode"`
	Integration  string `json:"integration,omitempty"`

	RejectCall      *bool  `json:"rejectCall,omitempty"`
	MsgCall         string `json:"msgCall,omitempty"`
	GroupsIgnore    *bool  `json:"groupsIgnore,omitempty"`
	AlwaysOnline    *bool  `json:"alwaysOnline,omitempty"`
	ReadMessages    *bool  `json:"readMessages,omitempty"`
	ReadStatus      *bool  `json:"readStatus,omitempty"`
	SyncFullHistory *bool  `json:"syncFullHistory,omitempty"`

	Webhook   *WebhookConfig   `json:"webhook,omitempty"`
	Websocket *WebsocketConfig `json:"websocket,omitempty"`
	RabbitMQ  *RabbitMQConfig  `json:"rabbitmq,omitempty"`
	SQS       *SQSConfig       `json:"sqs,omitempty"`
}

// InstanceResponse is the envelope of the instance lifecycle endpoints.
// Only the fields the gateway chose to send are populated; every one of
// them is optional.
type InstanceResponse struct {
	Status    string            `json:"status,omitempty"`
	Error     bool              `json:"error,omitempty"`
	Instance  *Instance         `json:"instance,omitempty"`
	Hash      Hash              `json:"hash,omitempty"`
	QRCode    *QRCode           `json:"qrcode,omitempty"`
	Instances []Instance        `json:"instances,omitempty"`
	Settings  *InstanceSettings `json:"settings,omitempty"`
	Webhook   *WebhookConfig    `json:"webhook,omitempty"`
}

// QRCodeBase64 returns the inline pairing image of a lifecycle response,
// empty when the gateway sent none.
func (r *InstanceResponse) QRCodeBase64() string {
	if r == nil || r.QRCode == nil {
		return ""
	}
	return r.QRCode.Base64()
}

// ParseInstanceList decodes a listing payload. The gateway answers with
// a raw JSON array on some versions, with {"instances": [...]} on others
// and with a single bare object for one-instance lookups; every shape
// yields the same flat slice, order preserved. Elements wrapped in an
// {"instance": {...}} envelope are unwrapped.
func ParseInstanceList(data []byte) ([]Instance, error) {
	var elements []json.RawMessage
	switch {
	case isJSONArray(data):
		if err := json.Unmarshal(data, &elements); err != nil {
			return nil, fmt.Errorf("instance list: %w", err)
		}
	case isJSONObject(data):
		var wrapped struct {
			Instances []json.RawMessage `json:"instances"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("instance list: %w", err)
		}
		if wrapped.Instances != nil {
			elements = wrapped.Instances
		} else {
			elements = []json.RawMessage{data}
		}
	default:
		return nil, errors.New("instance list: payload is neither an array nor an object")
	}

	out := make([]Instance, 0, len(elements))
	for idx, element := range elements {
		var envelope struct {
			Instance json.RawMessage `json:"instance"`
		}
		if err := json.Unmarshal(element, &envelope); err == nil && isJSONObject(envelope.Instance) {
			element = envelope.Instance
		}
		var inst Instance
		if err := json.Unmarshal(element, &inst); err != nil {
			return nil, fmt.Errorf("instance list: element %d: %w", idx, err)
		}
		out = append(out, inst)
	}
	return out, nil
}
