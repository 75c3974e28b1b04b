package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/functionland/blox-wizard/pkg/utilities"
)

// ErrorMarker is the literal the backend writes into bodies of failed actions.
const ErrorMarker = "ERROR"

// Body is a raw backend response body.
type Body []byte

// Decode unmarshals the body as JSON. Failures are MalformedResponse errors.
func (b Body) Decode(op string, v any) error {
	if err := json.Unmarshal(b, v); err != nil {
		return &Error{Kind: MalformedResponse, Op: op, Err: err}
	}
	return nil
}

// HasErrorMarker reports whether the body contains the ERROR literal.
func (b Body) HasErrorMarker() bool {
	return bytes.Contains(b, []byte(ErrorMarker))
}

// Client is the single way the wizard talks to the node backend.
type Client struct {
	transport Transport
	timeout   time.Duration
	logger    *zap.SugaredLogger
}

func NewClient(t Transport, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{transport: t, timeout: timeout, logger: logger}
}

// Call issues one request to an allow-listed backend endpoint.
func (c *Client) Call(ctx context.Context, method, path string, payload Payload) (Body, error) {
	ep, ok := allowList[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEndpointNotAllowed, path)
	}
	if ep.method != method {
		return nil, fmt.Errorf("%w: %s %s", ErrMethodNotAllowed, method, path)
	}
	op := method + " " + path

	body, contentType, err := payload.encode(ep.encoding)
	if err != nil {
		return nil, fmt.Errorf("%s: encode payload: %w", op, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.transport.Do(ctx, Request{Method: method, Path: path, ContentType: contentType, Body: body})
	if err != nil {
		c.logger.Warnw("backend call failed", "op", op, "err", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, &Error{Kind: ProcessFailure, Op: op, Err: err}
	}
	c.logger.Debugw("backend call", "op", op, "status", resp.Status, "duration_ms", time.Since(start).Milliseconds())
	if resp.Status < 200 || resp.Status > 299 {
		return nil, &Error{Kind: UpstreamError, Op: op, Status: resp.Status, Err: errors.New(strings.TrimSpace(string(resp.Body)))}
	}
	return Body(resp.Body), nil
}

// AccountID returns the node's account id, or "" when the backend has none yet.
func (c *Client) AccountID(ctx context.Context) (string, error) {
	var out struct {
		AccountID string `json:"accountId"`
	}
	if err := c.readIdentity(ctx, PathAccountID, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.AccountID), nil
}

// AccountSeed returns the node's account seed, or "" when the backend has none yet.
// The seed must not be logged or stored by callers.
func (c *Client) AccountSeed(ctx context.Context) (string, error) {
	var out struct {
		AccountSeed string `json:"accountSeed"`
	}
	if err := c.readIdentity(ctx, PathAccountSeed, &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.AccountSeed), nil
}

// readIdentity degrades a malformed body to the zero value so the wizard can
// treat it as "not configured yet".
func (c *Client) readIdentity(ctx context.Context, path string, v any) error {
	body, err := c.Call(ctx, "GET", path, nil)
	if err != nil {
		return err
	}
	if err := body.Decode("GET "+path, v); err != nil {
		c.logger.Infow("identity not configured", "path", path, "err", err)
		return nil
	}
	return nil
}

// ChainStatus returns the chain sync status document. Unlike the identity reads,
// an unparseable body is an error.
func (c *Client) ChainStatus(ctx context.Context) (json.RawMessage, error) {
	body, err := c.Call(ctx, "GET", PathChainStatus, nil)
	if err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := body.Decode("GET "+PathChainStatus, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) Properties(ctx context.Context) (Body, error) {
	return c.Call(ctx, "GET", PathProperties, nil)
}

func (c *Client) GenerateIdentity(ctx context.Context, seed string) (Body, error) {
	c.logger.Debugw("generate identity", "seed_fp", utilities.Fingerprint(seed))
	return c.Call(ctx, "POST", PathGenerateIdentity, Payload{"seed": seed})
}

func (c *Client) ExchangePeer(ctx context.Context, peerID, seed string) (Body, error) {
	c.logger.Debugw("peer exchange", "peer_id", peerID, "seed_fp", utilities.Fingerprint(seed))
	return c.Call(ctx, "POST", PathPeerExchange, Payload{"peer_id": peerID, "seed": seed})
}

func (c *Client) JoinPool(ctx context.Context, poolID, accountID string) (Body, error) {
	return c.poolAction(ctx, PathPoolJoin, poolID, accountID)
}

func (c *Client) LeavePool(ctx context.Context, poolID, accountID string) (Body, error) {
	return c.poolAction(ctx, PathPoolLeave, poolID, accountID)
}

func (c *Client) CancelJoin(ctx context.Context, poolID, accountID string) (Body, error) {
	return c.poolAction(ctx, PathPoolCancel, poolID, accountID)
}

func (c *Client) poolAction(ctx context.Context, path, poolID, accountID string) (Body, error) {
	body, err := c.Call(ctx, "POST", path, Payload{"poolID": poolID, "accountId": accountID})
	if err != nil {
		return nil, err
	}
	if body.HasErrorMarker() {
		return nil, &Error{Kind: UpstreamError, Op: "POST " + path, Err: errors.New(strings.TrimSpace(string(body)))}
	}
	return body, nil
}
