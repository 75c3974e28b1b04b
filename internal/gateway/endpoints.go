package gateway

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// Backend endpoints exposed by the node container.
const (
	PathAccountID        = "/account/id"
	PathAccountSeed      = "/account/seed"
	PathPeerExchange     = "/peer/exchange"
	PathGenerateIdentity = "/peer/generate-identity"
	PathPoolJoin         = "/pools/join"
	PathPoolLeave        = "/pools/leave"
	PathPoolCancel       = "/pools/cancel"
	PathChainStatus      = "/chain/status"
	PathProperties       = "/properties"
)

// Encoding selects how a payload is serialized for an endpoint.
type Encoding int

const (
	EncodingNone Encoding = iota
	EncodingForm
	EncodingJSON
)

type endpoint struct {
	method   string
	encoding Encoding
}

var allowList = map[string]endpoint{
	PathAccountID:        {http.MethodGet, EncodingNone},
	PathAccountSeed:      {http.MethodGet, EncodingNone},
	PathPeerExchange:     {http.MethodPost, EncodingForm},
	PathGenerateIdentity: {http.MethodPost, EncodingForm},
	PathPoolJoin:         {http.MethodPost, EncodingForm},
	PathPoolLeave:        {http.MethodPost, EncodingForm},
	PathPoolCancel:       {http.MethodPost, EncodingForm},
	PathChainStatus:      {http.MethodGet, EncodingNone},
	PathProperties:       {http.MethodGet, EncodingNone},
}

// Payload is a flat set of request fields.
type Payload map[string]string

func (p Payload) encode(enc Encoding) (body []byte, contentType string, err error) {
	switch enc {
	case EncodingForm:
		v := url.Values{}
		for k, s := range p {
			v.Set(k, s)
		}
		return []byte(v.Encode()), "application/x-www-form-urlencoded", nil
	case EncodingJSON:
		b, err := json.Marshal(p)
		return b, "application/json", err
	default:
		return nil, "", nil
	}
}
