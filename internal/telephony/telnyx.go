package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"carrier-gateway/internal/config"
)

// TelnyxClient talks to the Telnyx v2 messaging API.
type TelnyxClient struct {
	cfg  config.TelnyxConfig
	http *http.Client
}

func NewTelnyxClient(cfg config.TelnyxConfig, httpClient *http.Client) *TelnyxClient {
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.telnyx.com"
	}
	return &TelnyxClient{cfg: cfg, http: httpClient}
}

func (c *TelnyxClient) Config() config.TelnyxConfig { return c.cfg }

// TelnyxMessageParams must set exactly one of From and MessagingProfileID.
type TelnyxMessageParams struct {
	To                 string `json:"to"`
	Text               string `json:"text"`
	From               string `json:"from,omitempty"`
	MessagingProfileID string `json:"messaging_profile_id,omitempty"`
}

type TelnyxMessage struct {
	ID   string
	From string
}

type telnyxMessageResponse struct {
	Data struct {
		ID   string `json:"id"`
		From struct {
			PhoneNumber string `json:"phone_number"`
		} `json:"from"`
	} `json:"data"`
}

type telnyxErrorResponse struct {
	Errors []struct {
		Code   string `json:"code"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

func (c *TelnyxClient) SendMessage(ctx context.Context, p TelnyxMessageParams) (TelnyxMessage, error) {
	if c.cfg.APIKey == "" {
		return TelnyxMessage{}, ErrMissingCredentials
	}

	b, err := json.Marshal(p)
	if err != nil {
		return TelnyxMessage{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.APIBaseURL, "/")+"/v2/messages", bytes.NewReader(b))
	if err != nil {
		return TelnyxMessage{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return TelnyxMessage{}, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return TelnyxMessage{}, err
	}

	if res.StatusCode/100 != 2 {
		apiErr := &APIError{Provider: "telnyx", Status: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		var e telnyxErrorResponse
		if json.Unmarshal(body, &e) == nil && len(e.Errors) > 0 {
			apiErr.Code = e.Errors[0].Code
			apiErr.Message = e.Errors[0].Title
			if e.Errors[0].Detail != "" {
				apiErr.Message = e.Errors[0].Detail
			}
		}
		return TelnyxMessage{}, apiErr
	}

	var out telnyxMessageResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return TelnyxMessage{}, err
	}
	return TelnyxMessage{ID: out.Data.ID, From: out.Data.From.PhoneNumber}, nil
}
