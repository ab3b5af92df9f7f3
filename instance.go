package evolution

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/evogo/evolution/models"
)

// InstanceResource groups the instance lifecycle endpoints.
type InstanceResource struct {
	client *Client
	logger *zap.Logger
}

// Create provisions a new instance on the gateway. When req asks for a
// QR code the response carries the initial pairing payload.
func (r *InstanceResource) Create(ctx context.Context, req models.InstanceCreate) (*models.InstanceResponse, error) {
	raw, err := r.client.Request(ctx, http.MethodPost, "/instance/create", &RequestOptions{Body: req})
	if err != nil {
		return nil, err
	}
	var out models.InstanceResponse
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	r.logger.Info("instance created", zap.String("instance", req.InstanceName))
	return &out, nil
}

// FetchAll lists every instance known to the gateway. Both listing
// shapes the gateway uses flatten into the same slice.
func (r *InstanceResource) FetchAll(ctx context.Context) ([]models.Instance, error) {
	return r.fetch(ctx, nil)
}

// Fetch lists the instances matching name. The gateway answers with a
// list even for a single name.
func (r *InstanceResource) Fetch(ctx context.Context, name string) ([]models.Instance, error) {
	query := url.Values{}
	query.Set("instanceName", name)
	return r.fetch(ctx, query)
}

func (r *InstanceResource) fetch(ctx context.Context, query url.Values) ([]models.Instance, error) {
	raw, err := r.client.Request(ctx, http.MethodGet, "/instance/fetchInstances", &RequestOptions{Query: query})
	if err != nil {
		return nil, err
	}
	list, err := models.ParseInstanceList(raw)
	if err != nil {
		return nil, newModelValidationError(err, raw)
	}
	return list, nil
}

// Connect requests the pairing payload for an instance. The QR fields
// arrive at the top level or nested under "qrcode" depending on gateway
// version; the model's accessors handle both.
func (r *InstanceResource) Connect(ctx context.Context, instance string) (*models.QRCode, error) {
	raw, err := r.client.Request(ctx, http.MethodGet, "/instance/connect/{instance}", &RequestOptions{Instance: instance})
	if err != nil {
		return nil, err
	}
	var qr models.QRCode
	if err := decodeInto(raw, &qr); err != nil {
		return nil, err
	}
	return &qr, nil
}

// ConnectionState reports the live socket state of an instance.
func (r *InstanceResource) ConnectionState(ctx context.Context, instance string) (*models.InstanceResponse, error) {
	raw, err := r.client.Request(ctx, http.MethodGet, "/instance/connectionState/{instance}", &RequestOptions{Instance: instance})
	if err != nil {
		return nil, err
	}
	var out models.InstanceResponse
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Restart tears down and re-establishes the instance session.
func (r *InstanceResource) Restart(ctx context.Context, instance string) (*models.InstanceResponse, error) {
	raw, err := r.client.Request(ctx, http.MethodPost, "/instance/restart/{instance}", &RequestOptions{Instance: instance})
	if err != nil {
		return nil, err
	}
	var out models.InstanceResponse
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	r.logger.Info("instance restarted", zap.String("instance", instance))
	return &out, nil
}

// SetPresence sets the instance-wide presence, "available" or
// "unavailable".
func (r *InstanceResource) SetPresence(ctx context.Context, instance string, presence models.Presence) error {
	body := map[string]any{"presence": presence}
	_, err := r.client.Request(ctx, http.MethodPost, "/instance/setPresence/{instance}", &RequestOptions{Instance: instance, Body: body})
	return err
}

// Logout disconnects the WhatsApp session but keeps the instance
// registered on the gateway.
func (r *InstanceResource) Logout(ctx context.Context, instance string) (*models.InstanceResponse, error) {
	raw, err := r.client.Request(ctx, http.MethodDelete, "/instance/logout/{instance}", &RequestOptions{Instance: instance})
	if err != nil {
		return nil, err
	}
	var out models.InstanceResponse
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	r.logger.Info("instance logged out", zap.String("instance", instance))
	return &out, nil
}

// Delete removes the instance from the gateway entirely. The gateway
// refuses to delete a connected instance; Logout first.
func (r *InstanceResource) Delete(ctx context.Context, instance string) (*models.InstanceResponse, error) {
	raw, err := r.client.Request(ctx, http.MethodDelete, "/instance/delete/{instance}", &RequestOptions{Instance: instance})
	if err != nil {
		return nil, err
	}
	var out models.InstanceResponse
	if err := decodeInto(raw, &out); err != nil {
		return nil, err
	}
	r.logger.Info("instance deleted", zap.String("instance", instance))
	return &out, nil
}
