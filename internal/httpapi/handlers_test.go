package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"carrier-gateway/internal/auth"
	"carrier-gateway/internal/calls"
	"carrier-gateway/internal/delivery"
	"carrier-gateway/internal/sms"

	"github.com/gin-gonic/gin"
)

type fakeSender struct {
	res sms.Result
	err error
	got sms.SendSMSRequest
}

func (f *fakeSender) SendSMS(_ context.Context, req sms.SendSMSRequest) (sms.Result, error) {
	f.got = req
	return f.res, f.err
}

type fakeCaller struct {
	res calls.StartResult
	err error
	got calls.StartRequest
}

func (f *fakeCaller) StartAliasCall(_ context.Context, req calls.StartRequest) (calls.StartResult, error) {
	f.got = req
	return f.res, f.err
}

type fakeSink struct{ payloads []delivery.Payload }

func (f *fakeSink) HandleStatusUpdate(_ context.Context, p delivery.Payload) {
	f.payloads = append(f.payloads, p)
}

func router(h Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	asUser := func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithUserID(c.Request.Context(), "u1"))
		c.Next()
	}
	r.POST("/sms", asUser, h.SendSMS)
	r.POST("/calls", asUser, h.StartAliasCall)
	r.POST("/hook", h.SMSStatusWebhook)
	return r
}

func postJSON(r http.Handler, path string, v any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(v)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSendSMSOK(t *testing.T) {
	s := &fakeSender{res: sms.Result{Provider: "telnyx", MessageID: "m1", To: "+15550000001"}}
	r := router(Handlers{SMS: s})

	w := postJSON(r, "/sms", map[string]string{"to": "+15550000001", "text": "hi", "preferred": "twilio", "UserID": "spoofed"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if s.got.Preferred != "twilio" {
		t.Fatalf("expected preferred forwarded, got %+v", s.got)
	}
	if s.got.UserID != "u1" {
		t.Fatalf("sender must come from the token, got %q", s.got.UserID)
	}
	var res sms.Result
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Provider != "telnyx" || res.MessageID != "m1" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestSendSMSErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{sms.ErrInvalidRequest, http.StatusBadRequest},
		{&sms.AllProvidersFailedError{Failures: []sms.Failure{{Provider: "a", Err: &sms.TransportError{Provider: "a", Err: errors.New("x")}}}}, http.StatusBadGateway},
		{&sms.AllProvidersFailedError{Failures: []sms.Failure{{Provider: "a", Err: &sms.ConfigurationError{Provider: "a", Reason: "no origin"}}}}, http.StatusInternalServerError},
		{&sms.ConfigurationError{Provider: "dispatcher", Reason: "none"}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		r := router(Handlers{SMS: &fakeSender{err: tc.err}})
		w := postJSON(r, "/sms", map[string]string{"to": "+15550000001", "text": "hi"})
		if w.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, w.Code)
		}
	}
}

func TestStartAliasCallUsesTokenUser(t *testing.T) {
	cl := &fakeCaller{res: calls.StartResult{OK: true, CallSID: "CA1", Stage: calls.StageLegADialing}}
	r := router(Handlers{Calls: cl})

	w := postJSON(r, "/calls", map[string]string{"to": "+442079460958", "user_id": "someone-else"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cl.got.UserID != "u1" || cl.got.To != "+442079460958" {
		t.Fatalf("unexpected request %+v", cl.got)
	}
}

func TestStartAliasCallPreconditionStatuses(t *testing.T) {
	cases := map[error]int{
		calls.ErrInvalidDestination:         http.StatusBadRequest,
		calls.ErrNoAssignedNumber:           http.StatusPreconditionFailed,
		calls.ErrUnverifiedForwardingNumber: http.StatusPreconditionFailed,
		calls.ErrCarrierUnavailable:         http.StatusBadGateway,
	}
	for err, want := range cases {
		r := router(Handlers{Calls: &fakeCaller{err: err}})
		w := postJSON(r, "/calls", map[string]string{"to": "x"})
		if w.Code != want {
			t.Fatalf("%v: expected %d, got %d", err, want, w.Code)
		}
		if !strings.Contains(w.Body.String(), calls.Code(err)) {
			t.Fatalf("expected error code in body: %s", w.Body.String())
		}
	}
}

func TestSMSStatusWebhookAlways204(t *testing.T) {
	sink := &fakeSink{}
	r := router(Handlers{Delivery: sink})

	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader("MessageSid=SM1&MessageStatus=delivered&To=%2B15550000001"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if len(sink.payloads) != 1 || sink.payloads[0]["MessageSid"] != "SM1" || sink.payloads[0]["To"] != "+15550000001" {
		t.Fatalf("unexpected payloads %+v", sink.payloads)
	}
}
