// Package evolution is a Go client for the Evolution API, a self-hosted
// WhatsApp messaging gateway. It wraps the gateway's REST surface with
// typed resource groups (Instance, Messages, Chat, Group, Profile,
// Webhook) and normalizes the JSON shapes that vary between gateway
// versions.
package evolution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/evogo/evolution/pkg/logger"
)

const instancePlaceholder = "{instance}"

// Client talks to one Evolution API deployment. Zero-value Clients are
// not usable; build one with New or NewFromEnv and Close it when done.
type Client struct {
	cfg    Config
	http   *resty.Client
	logger *zap.Logger

	// Resource groups, one per gateway API area.
	Instance *InstanceResource
	Messages *MessageResource
	Chat     *ChatResource
	Group    *GroupResource
	Profile  *ProfileResource
	Webhook  *WebhookResource
}

// New builds a client from cfg. A nil logger is replaced with a no-op
// logger so the SDK stays silent unless asked not to be.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("apikey", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout).
		SetLogger(restyLogger{log: log.Named("http").Sugar()})
	if cfg.RetryCount > 0 {
		httpClient.
			SetRetryCount(cfg.RetryCount).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				return err != nil || r.StatusCode() >= http.StatusInternalServerError
			})
	}
	if cfg.Debug {
		httpClient.SetDebug(true)
	}

	c := &Client{
		cfg:    cfg,
		http:   httpClient,
		logger: log,
	}
	c.Instance = &InstanceResource{client: c, logger: log.Named("instance")}
	c.Messages = &MessageResource{client: c, logger: log.Named("messages")}
	c.Chat = &ChatResource{client: c, logger: log.Named("chat")}
	c.Group = &GroupResource{client: c, logger: log.Named("group")}
	c.Profile = &ProfileResource{client: c, logger: log.Named("profile")}
	c.Webhook = &WebhookResource{client: c, logger: log.Named("webhook")}

	return c, nil
}

// NewFromEnv builds a client from EVOLUTION_* environment variables,
// reading a .env file when one is present. The logger level follows
// EVOLUTION_LOG_LEVEL.
func NewFromEnv() (*Client, error) {
	cfg, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return New(*cfg, log)
}

// Config returns a copy of the configuration the client was built with,
// defaults filled in.
func (c *Client) Config() Config {
	return c.cfg
}

// Close releases the pooled connections held by the transport. The
// client must not be used afterwards.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

// RequestOptions carries the optional parts of one gateway call.
type RequestOptions struct {
	// Instance fills the {instance} path placeholder, overriding the
	// configured default instance.
	Instance string
	// Body is marshaled as the JSON request body when non-nil.
	Body any
	// Query is appended to the request URL.
	Query url.Values
}

// Request performs one authenticated call against the gateway and
// returns the raw body of any 2xx answer. Non-2xx answers and transport
// failures are mapped onto the error taxonomy rooted at APIError.
func (c *Client) Request(ctx context.Context, method, path string, opts *RequestOptions) (json.RawMessage, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	resolved, err := c.resolvePath(path, opts.Instance)
	if err != nil {
		return nil, err
	}

	req := c.http.R().SetContext(ctx)
	if opts.Body != nil {
		req.SetBody(opts.Body)
	}
	if len(opts.Query) > 0 {
		req.SetQueryParamsFromValues(opts.Query)
	}

	start := time.Now()
	resp, err := req.Execute(method, resolved)
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn("gateway request timed out",
				zap.String("method", method),
				zap.String("path", resolved),
				zap.Duration("timeout", c.cfg.Timeout),
			)
			return nil, newTimeoutError(method, resolved, c.cfg.Timeout, err)
		}
		return nil, fmt.Errorf("evolution: %s %s: %w", method, resolved, err)
	}

	c.logger.Debug("gateway request",
		zap.String("method", method),
		zap.String("path", resolved),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.IsSuccess() {
		return json.RawMessage(resp.Body()), nil
	}
	return nil, errorFromStatus(resp.StatusCode(), resp.Body())
}

// HealthCheck probes the gateway root endpoint. It returns false on any
// failure instead of an error: callers only want a boolean, and this is
// the single place the SDK swallows errors on purpose.
func (c *Client) HealthCheck(ctx context.Context) bool {
	resp, err := c.http.R().SetContext(ctx).Get("/")
	if err != nil {
		c.logger.Debug("health check failed", zap.Error(err))
		return false
	}
	return resp.IsSuccess()
}

// resolvePath substitutes the {instance} placeholder, falling back to
// the configured default instance when the call names none.
func (c *Client) resolvePath(path, instance string) (string, error) {
	if !strings.Contains(path, instancePlaceholder) {
		return path, nil
	}
	name := instance
	if name == "" {
		name = c.cfg.DefaultInstance
	}
	if name == "" {
		return "", newConfigurationError("path %s requires an instance name and none is configured", path)
	}
	return strings.ReplaceAll(path, instancePlaceholder, url.PathEscape(name)), nil
}

// isTimeout classifies deadline-related transport failures.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// decodeInto unmarshals a 2xx payload, converting decode failures into
// model-side ValidationErrors carrying the offending fragment.
func decodeInto(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return newModelValidationError(err, raw)
	}
	return nil
}

// restyLogger adapts zap to resty's logger interface so retry warnings
// and wire-level debug output land next to everything else.
type restyLogger struct {
	log *zap.SugaredLogger
}

func (l restyLogger) Errorf(format string, v ...any) { l.log.Errorf(format, v...) }
func (l restyLogger) Warnf(format string, v ...any)  { l.log.Warnf(format, v...) }
func (l restyLogger) Debugf(format string, v ...any) { l.log.Debugf(format, v...) }
