package models

import (
	"encoding/json"
	"fmt"
)

// Participant actions accepted by the member-management endpoint.
const (
	ParticipantAdd     = "add"
	ParticipantRemove  = "remove"
	ParticipantPromote = "promote"
	ParticipantDemote  = "demote"
)

// Group setting actions: who may send messages and who may edit info.
const (
	GroupAnnouncement    = "announcement"
	GroupNotAnnouncement = "not_announcement"
	GroupLocked          = "locked"
	GroupUnlocked        = "unlocked"
)

// GroupParticipant is one member of a group. Admin is "admin",
// "superadmin" or empty for ordinary members.
type GroupParticipant struct {
	ID    string `json:"id"`
	Admin string `json:"admin,omitempty"`
}

// Group mirrors the gateway's group metadata record. SubjectTime and
// Creation are Unix seconds.
type Group struct {
	ID            string             `json:"id"`
	Subject       string             `json:"subject,omitempty"`
	SubjectOwner  string             `json:"subjectOwner,omitempty"`
	SubjectTime   int64              `json:"subjectTime,omitempty"`
	PictureURL    string             `json:"pictureUrl,omitempty"`
	Size          int                `json:"size,omitempty"`
	Creation      int64              `json:"creation,omitempty"`
	Owner         string             `json:"owner,omitempty"`
	Description   string             `json:"desc,omitempty"`
	DescriptionID string             `json:"descId,omitempty"`
	Restrict      bool               `json:"restrict,omitempty"`
	Announce      bool               `json:"announce,omitempty"`
	IsCommunity   bool               `json:"isCommunity,omitempty"`
	Participants  []GroupParticipant `json:"participants,omitempty"`
}

// GroupCreate is the request body for creating a group.
type GroupCreate struct {
	Subject      string   `json:"subject"`
	Description  string   `json:"description,omitempty"`
	Participants []string `json:"participants"`
}

// ParticipantsUpdate adds, removes or re-ranks group members.
type ParticipantsUpdate struct {
	Action       string   `json:"action"`
	Participants []string `json:"participants"`
}

// GroupInvite is the shareable invite handle of a group.
type GroupInvite struct {
	InviteURL  string `json:"inviteUrl,omitempty"`
	InviteCode string `json:"inviteCode,omitempty"`
}

// ParseParticipantList decodes a participant listing, accepting both a
// raw array and the {"participants": [...]} wrapper.
func ParseParticipantList(data []byte) ([]GroupParticipant, error) {
	if isJSONArray(data) {
		var out []GroupParticipant
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("participant list: %w", err)
		}
		return out, nil
	}
	var wrapped struct {
		Participants []GroupParticipant `json:"participants"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("participant list: %w", err)
	}
	return wrapped.Participants, nil
}

// ParseGroupList decodes a group listing, accepting both a raw array and
// the {"groups": [...]} wrapper.
func ParseGroupList(data []byte) ([]Group, error) {
	if isJSONArray(data) {
		var out []Group
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("group list: %w", err)
		}
		return out, nil
	}
	var wrapped struct {
		Groups []Group `json:"groups"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("group list: %w", err)
	}
	return wrapped.Groups, nil
}
