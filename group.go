package evolution

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/evogo/evolution/models"
)

// GroupResource groups the group-management endpoints. Except for
// creation, every operation addresses the group through the groupJid
// query parameter.
type GroupResource struct {
	client *Client
	logger *zap.Logger
}

func groupQuery(groupJID string) url.Values {
	q := url.Values{}
	q.Set("groupJid", groupJID)
	return q
}

// Create opens a new group with the given participants. The echo must
// carry the new group's JID; anything else means the gateway did not
// actually create one.
func (r *GroupResource) Create(ctx context.Context, instance string, req models.GroupCreate) (*models.Group, error) {
	raw, err := r.client.Request(ctx, http.MethodPost, "/group/create/{instance}", &RequestOptions{Instance: instance, Body: req})
	if err != nil {
		return nil, err
	}
	var out models.Group
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, &ValidationError{
			APIError: &APIError{Message: "group create response has no id"},
			Source:   ValidationModel,
			Field:    "id",
			Fragment: truncateFragment(raw),
		}
	}
	r.logger.Info("group created", zap.String("instance", instance), zap.String("group", out.ID))
	return &out, nil
}

// FetchAll lists the groups the instance participates in. Participant
// lists are large; they are only included when asked for.
func (r *GroupResource) FetchAll(ctx context.Context, instance string, withParticipants bool) ([]models.Group, error) {
	query := url.Values{}
	query.Set("getParticipants", strconv.FormatBool(withParticipants))
	raw, err := r.client.Request(ctx, http.MethodGet, "/group/fetchAllGroups/{instance}", &RequestOptions{Instance: instance, Query: query})
	if err != nil {
		return nil, err
	}
	list, err := models.ParseGroupList(raw)
	if err != nil {
		return nil, newModelValidationError(err, raw)
	}
	return list, nil
}

// Find returns the metadata of one group.
func (r *GroupResource) Find(ctx context.Context, instance, groupJID string) (*models.Group, error) {
	raw, err := r.client.Request(ctx, http.MethodGet, "/group/findGroupInfos/{instance}", &RequestOptions{Instance: instance, Query: groupQuery(groupJID)})
	if err != nil {
		return nil, err
	}
	var out models.Group
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Participants lists the members of a group.
func (r *GroupResource) Participants(ctx context.Context, instance, groupJID string) ([]models.GroupParticipant, error) {
	raw, err := r.client.Request(ctx, http.MethodGet, "/group/participants/{instance}", &RequestOptions{Instance: instance, Query: groupQuery(groupJID)})
	if err != nil {
		return nil, err
	}
	list, err := models.ParseParticipantList(raw)
	if err != nil {
		return nil, newModelValidationError(err, raw)
	}
	return list, nil
}

// UpdateSubject renames a group.
func (r *GroupResource) UpdateSubject(ctx context.Context, instance, groupJID, subject string) error {
	body := map[string]any{"subject": subject}
	_, err := r.client.Request(ctx, http.MethodPost, "/group/updateGroupSubject/{instance}", &RequestOptions{Instance: instance, Query: groupQuery(groupJID), Body: body})
	return err
}

// UpdateDescription replaces the group description.
func (r *GroupResource) UpdateDescription(ctx context.Context, instance, groupJID, description string) error {
	body := map[string]any{"description": description}
	_, err := r.client.Request(ctx, http.MethodPost, "/group/updateGroupDescription/{instance}", &RequestOptions{Instance: instance, Query: groupQuery(groupJID), Body: body})
	return err
}

// UpdatePicture replaces the group picture with the image at url.
func (r *GroupResource) UpdatePicture(ctx context.Context, instance, groupJID, imageURL string) error {
	body := map[string]any{"image": imageURL}
	_, err := r.client.Request(ctx, http.MethodPost, "/group/updateGroupPicture/{instance}", &RequestOptions{Instance: instance, Query: groupQuery(groupJID), Body: body})
	return err
}

// UpdateSetting switches who may send messages or edit group info, using
// the GroupAnnouncement/GroupLocked action labels.
func (r *GroupResource) UpdateSetting(ctx context.Context, instance, groupJID, action string) error {
	body := map[string]any{"action": action}
	_, err := r.client.Request(ctx, http.MethodPost, "/group/updateSetting/{instance}", &RequestOptions{Instance: instance, Query: groupQuery(groupJID), Body: body})
	return err
}

// UpdateParticipant adds, removes, promotes or demotes members.
func (r *GroupResource) UpdateParticipant(ctx context.Context, instance, groupJID string, update models.ParticipantsUpdate) error {
	_, err := r.client.Request(ctx, http.MethodPost, "/group/updateParticipant/{instance}", &RequestOptions{Instance: instance, Query: groupQuery(groupJID), Body: update})
	return err
}

// InviteCode returns the current invite handle of a group.
func (r *GroupResource) InviteCode(ctx context.Context, instance, groupJID string) (*models.GroupInvite, error) {
	raw, err := r.client.Request(ctx, http.MethodGet, "/group/inviteCode/{instance}", &RequestOptions{Instance: instance, Query: groupQuery(groupJID)})
	if err != nil {
		return nil, err
	}
	var out models.GroupInvite
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeInviteCode invalidates the current invite link and mints a new
// one.
func (r *GroupResource) RevokeInviteCode(ctx context.Context, instance, groupJID string) (*models.GroupInvite, error) {
	raw, err := r.client.Request(ctx, http.MethodPost, "/group/revokeInviteCode/{instance}", &RequestOptions{Instance: instance, Query: groupQuery(groupJID)})
	if err != nil {
		return nil, err
	}
	var out models.GroupInvite
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Leave removes the instance from the group.
func (r *GroupResource) Leave(ctx context.Context, instance, groupJID string) error {
	_, err := r.client.Request(ctx, http.MethodDelete, "/group/leaveGroup/{instance}", &RequestOptions{Instance: instance, Query: groupQuery(groupJID)})
	if err == nil {
		r.logger.Info("left group", zap.String("instance", instance), zap.String("group", groupJID))
	}
	return err
}
