package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/functionland/blox-wizard/internal/gateway"
)

const (
	pathPools = "/fula/pool"
	pathUsers = "/fula/pool/users"
)

// PoolID is a pool identifier as reported by the pool API, which sends it as a
// number, a string or null depending on the field.
type PoolID string

func (p *PoolID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*p = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*p = PoolID(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = PoolID(n.String())
	return nil
}

// UserStatus is the pool membership record of one account.
type UserStatus struct {
	Account       string `json:"account"`
	PoolID        PoolID `json:"pool_id"`
	RequestPoolID PoolID `json:"request_pool_id"`
	PeerID        string `json:"peer_id,omitempty"`
}

// Client queries the public pool API.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Pools returns the pool list document as-is.
func (c *Client) Pools(ctx context.Context) (json.RawMessage, error) {
	return c.post(ctx, pathPools, []byte("{}"))
}

// Users forwards a users query body and returns the document as-is.
func (c *Client) Users(ctx context.Context, body []byte) (json.RawMessage, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	return c.post(ctx, pathUsers, body)
}

// UserStatus returns the membership record for accountID. An account the API
// does not know yields the zero status.
func (c *Client) UserStatus(ctx context.Context, accountID string) (UserStatus, error) {
	req, _ := json.Marshal(map[string]string{"account": accountID})
	raw, err := c.post(ctx, pathUsers, req)
	if err != nil {
		return UserStatus{}, err
	}
	var out struct {
		Users []UserStatus `json:"users"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return UserStatus{}, &gateway.Error{Kind: gateway.MalformedResponse, Op: "POST " + pathUsers, Err: err}
	}
	if len(out.Users) == 0 {
		return UserStatus{Account: accountID}, nil
	}
	return out.Users[0], nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (json.RawMessage, error) {
	op := "POST " + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &gateway.Error{Kind: gateway.ProcessFailure, Op: op, Err: err}
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &gateway.Error{Kind: gateway.ProcessFailure, Op: op, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &gateway.Error{Kind: gateway.UpstreamError, Op: op, Status: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(b)))}
	}
	if !json.Valid(b) {
		return nil, &gateway.Error{Kind: gateway.MalformedResponse, Op: op, Err: errors.New("body is not JSON")}
	}
	return json.RawMessage(b), nil
}
