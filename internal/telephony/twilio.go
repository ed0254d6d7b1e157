package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"carrier-gateway/internal/calls"
	"carrier-gateway/internal/config"
)

// TwilioClient talks to the Twilio REST API with form-encoded requests.
// Credentials are read from cfg on every call.
type TwilioClient struct {
	cfg  config.TwilioConfig
	http *http.Client
}

func NewTwilioClient(cfg config.TwilioConfig, httpClient *http.Client) *TwilioClient {
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.twilio.com/2010-04-01"
	}
	return &TwilioClient{cfg: cfg, http: httpClient}
}

func (c *TwilioClient) Config() config.TwilioConfig { return c.cfg }

// TwilioMessageParams must set exactly one of From and MessagingServiceSID.
type TwilioMessageParams struct {
	To                  string
	Body                string
	From                string
	MessagingServiceSID string
	StatusCallback      string
}

type TwilioMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
	From   string `json:"from"`
}

func (c *TwilioClient) SendMessage(ctx context.Context, p TwilioMessageParams) (TwilioMessage, error) {
	form := url.Values{}
	form.Set("To", p.To)
	form.Set("Body", p.Body)
	if p.MessagingServiceSID != "" {
		form.Set("MessagingServiceSid", p.MessagingServiceSID)
	} else {
		form.Set("From", p.From)
	}
	if p.StatusCallback != "" {
		form.Set("StatusCallback", p.StatusCallback)
	}

	var out TwilioMessage
	if err := c.post(ctx, "Messages.json", form, &out); err != nil {
		return TwilioMessage{}, err
	}
	return out, nil
}

type twilioCall struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// CreateCall places an outbound call whose TwiML is fetched from req.URL.
func (c *TwilioClient) CreateCall(ctx context.Context, req calls.CallRequest) (calls.CallHandle, error) {
	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", req.From)
	form.Set("Url", req.URL)
	form.Set("Method", http.MethodPost)
	if req.StatusCallback != "" {
		form.Set("StatusCallback", req.StatusCallback)
		form.Set("StatusCallbackMethod", http.MethodPost)
		for _, ev := range req.StatusEvents {
			form.Add("StatusCallbackEvent", ev)
		}
	}
	if req.MachineDetection {
		form.Set("MachineDetection", "Enable")
	}

	var out twilioCall
	if err := c.post(ctx, "Calls.json", form, &out); err != nil {
		return calls.CallHandle{}, err
	}
	return calls.CallHandle{SID: out.SID, Status: out.Status}, nil
}

func (c *TwilioClient) post(ctx context.Context, resource string, form url.Values, out any) error {
	if c.cfg.AccountSID == "" || c.cfg.AuthToken == "" {
		return ErrMissingCredentials
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/%s", strings.TrimRight(c.cfg.APIBaseURL, "/"), url.PathEscape(c.cfg.AccountSID), resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return err
	}

	if res.StatusCode/100 != 2 {
		var e struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &e)
		apiErr := &APIError{Provider: "twilio", Status: res.StatusCode, Message: e.Message}
		if e.Code != 0 {
			apiErr.Code = strconv.Itoa(e.Code)
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(res.StatusCode)
		}
		return apiErr
	}
	return json.Unmarshal(body, out)
}
