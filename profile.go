package evolution

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/evogo/evolution/models"
)

// ProfileResource groups the profile and privacy endpoints, which the
// gateway serves under the /chat prefix.
type ProfileResource struct {
	client *Client
	logger *zap.Logger
}

// Fetch looks up the public profile of a number.
func (r *ProfileResource) Fetch(ctx context.Context, instance, number string) (*models.Profile, error) {
	body := map[string]any{"number": number}
	raw, err := r.client.Request(ctx, http.MethodPost, "/chat/fetchProfile/{instance}", &RequestOptions{Instance: instance, Body: body})
	if err != nil {
		return nil, err
	}
	var out models.Profile
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateName renames the instance's own profile.
func (r *ProfileResource) UpdateName(ctx context.Context, instance, name string) error {
	body := map[string]any{"name": name}
	_, err := r.client.Request(ctx, http.MethodPost, "/chat/updateProfileName/{instance}", &RequestOptions{Instance: instance, Body: body})
	return err
}

// UpdateStatus replaces the instance's profile status text.
func (r *ProfileResource) UpdateStatus(ctx context.Context, instance, status string) error {
	body := map[string]any{"status": status}
	_, err := r.client.Request(ctx, http.MethodPost, "/chat/updateProfileStatus/{instance}", &RequestOptions{Instance: instance, Body: body})
	return err
}

// UpdatePicture replaces the instance's profile picture with the image
// at url.
func (r *ProfileResource) UpdatePicture(ctx context.Context, instance, pictureURL string) error {
	body := map[string]any{"picture": pictureURL}
	_, err := r.client.Request(ctx, http.MethodPut, "/chat/updateProfilePicture/{instance}", &RequestOptions{Instance: instance, Body: body})
	return err
}

// RemovePicture clears the instance's profile picture.
func (r *ProfileResource) RemovePicture(ctx context.Context, instance string) error {
	_, err := r.client.Request(ctx, http.MethodDelete, "/chat/removeProfilePicture/{instance}", &RequestOptions{Instance: instance})
	return err
}

// FetchPrivacySettings returns the current privacy flags.
func (r *ProfileResource) FetchPrivacySettings(ctx context.Context, instance string) (*models.PrivacySettings, error) {
	raw, err := r.client.Request(ctx, http.MethodGet, "/chat/fetchPrivacySettings/{instance}", &RequestOptions{Instance: instance})
	if err != nil {
		return nil, err
	}
	var out models.PrivacySettings
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePrivacySettings replaces the privacy flags. The gateway applies
// the whole set at once, so pass every field.
func (r *ProfileResource) UpdatePrivacySettings(ctx context.Context, instance string, settings models.PrivacySettings) error {
	_, err := r.client.Request(ctx, http.MethodPut, "/chat/updatePrivacySettings/{instance}", &RequestOptions{Instance: instance, Body: settings})
	if err == nil {
		r.logger.Info("privacy settings updated", zap.String("instance", instance))
	}
	return err
}
