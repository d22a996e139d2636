package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anicoll/homedash/internal/pkg/model"
)

const requestIDHeader = "X-Request-ID"

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(g *Client) {
		g.httpClient = c
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Client) {
		g.logger = l
	}
}

// Client talks to the remote dashboard service. It makes exactly one
// attempt per call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     zap.L(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ListDevices returns the raw body of GET <base>/devices.
func (c *Client) ListDevices(ctx context.Context) ([]byte, error) {
	return c.list(ctx, model.ResourceDevices)
}

// ListEvents returns the raw body of GET <base>/events.
func (c *Client) ListEvents(ctx context.Context) ([]byte, error) {
	return c.list(ctx, model.ResourceEvents)
}

// List dispatches to the list operation for kind.
func (c *Client) List(ctx context.Context, kind model.ResourceKind) ([]byte, error) {
	switch kind {
	case model.ResourceDevices:
		return c.ListDevices(ctx)
	case model.ResourceEvents:
		return c.ListEvents(ctx)
	}
	return nil, fmt.Errorf("unknown resource kind %q", kind)
}

func (c *Client) list(ctx context.Context, kind model.ResourceKind) ([]byte, error) {
	op := "list " + kind.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+kind.String(), nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer res.Body.Close()

	if !isSuccess(res.StatusCode) {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, &TransportError{Op: op, StatusCode: res.StatusCode}
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	c.logger.Debug("fetched", zap.String("resource", kind.String()), zap.Int("bytes", len(data)))
	return data, nil
}

// SendCommand posts a command for one device. action and value are
// forwarded untouched; value is omitted from the body when nil.
func (c *Client) SendCommand(ctx context.Context, deviceID, action string, value any) (*model.CommandResponse, error) {
	body, err := json.Marshal(model.CommandRequest{
		DeviceID: deviceID,
		Action:   action,
		Value:    value,
	})
	if err != nil {
		return nil, &CommandError{Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/control", bytes.NewReader(body))
	if err != nil {
		return nil, &CommandError{Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)

	logger := c.logger.With(
		zap.String("request_id", requestID),
		zap.String("device_id", deviceID),
		zap.String("action", action),
	)
	logger.Debug("sending command", zap.Any("value", value))

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &CommandError{Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &CommandError{StatusCode: res.StatusCode, Err: err}
	}
	if !isSuccess(res.StatusCode) {
		return nil, newStatusCommandError(res.StatusCode, strings.TrimSpace(string(data)))
	}

	out := &model.CommandResponse{}
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, &CommandError{StatusCode: res.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	logger.Debug("command accepted", zap.Int("status", res.StatusCode))
	return out, nil
}
