package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"carrier-gateway/internal/events"
	"carrier-gateway/pkg/logger"
)

func seeded(t *testing.T, sids ...string) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	for _, sid := range sids {
		if err := s.Create(context.Background(), OutboundMessage{
			ProviderMessageID: sid,
			Provider:          "twilio",
			To:                "+15550000001",
			Body:              "hi",
			DeliveryStatus:    StatusSent,
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return s
}

func statusOf(t *testing.T, s *MemoryStore, sid string) []DeliveryStatus {
	t.Helper()
	var out []DeliveryStatus
	for _, m := range s.Messages() {
		if m.ProviderMessageID == sid {
			out = append(out, m.DeliveryStatus)
		}
	}
	return out
}

func TestHandleStatusUpdateMessageSid(t *testing.T) {
	store := seeded(t, "SM1", "SM1", "SM9")
	em := events.NewMemory()
	c := NewCorrelator(store, em)

	c.HandleStatusUpdate(context.Background(), Payload{
		"MessageSid":    "SM1",
		"MessageStatus": "delivered",
		"To":            "+15550000001",
		"From":          "+15550000002",
	})

	for _, st := range statusOf(t, store, "SM1") {
		if st != StatusDelivered {
			t.Fatalf("expected SM1 delivered, got %s", st)
		}
	}
	if got := statusOf(t, store, "SM9"); got[0] != StatusSent {
		t.Fatalf("other messages must be untouched, got %s", got[0])
	}
	for _, m := range store.Messages() {
		if m.ProviderMessageID == "SM1" && (m.DeliveryUpdatedAt == nil || m.DeliveryErrorCode != nil) {
			t.Fatalf("expected timestamp set and no error code: %+v", m)
		}
	}
	if evs := em.Events(); len(evs) != 1 || evs[0].Type != events.TypeSMSStatus {
		t.Fatalf("expected one sms.status event, got %+v", evs)
	}
}

func TestHandleStatusUpdateSmsSidFallback(t *testing.T) {
	store := seeded(t, "SM2")
	c := NewCorrelator(store, nil)

	c.HandleStatusUpdate(context.Background(), Payload{"SmsSid": "SM2", "SmsStatus": "failed", "ErrorCode": "30003"})

	msgs := store.Messages()
	if msgs[0].DeliveryStatus != StatusFailed {
		t.Fatalf("expected failed, got %s", msgs[0].DeliveryStatus)
	}
	if msgs[0].DeliveryErrorCode == nil || *msgs[0].DeliveryErrorCode != "30003" {
		t.Fatalf("expected error code recorded")
	}
}

func TestHandleStatusUpdateLastWriteWins(t *testing.T) {
	store := seeded(t, "SM3")
	c := NewCorrelator(store, nil)
	ctx := context.Background()

	c.HandleStatusUpdate(ctx, Payload{"MessageSid": "SM3", "MessageStatus": "delivered"})
	c.HandleStatusUpdate(ctx, Payload{"MessageSid": "SM3", "MessageStatus": "sent"})

	if got := statusOf(t, store, "SM3")[0]; got != StatusSent {
		t.Fatalf("expected later write to win, got %s", got)
	}
}

func TestHandleStatusUpdateIgnoresIncompletePayload(t *testing.T) {
	store := seeded(t, "SM4")
	c := NewCorrelator(store, nil)

	c.HandleStatusUpdate(context.Background(), Payload{"MessageSid": "SM4"})
	c.HandleStatusUpdate(context.Background(), Payload{"MessageSid": "SM4", "MessageStatus": "teleported"})

	if got := statusOf(t, store, "SM4")[0]; got != StatusSent {
		t.Fatalf("expected untouched, got %s", got)
	}
}

type failingStore struct{ MemoryStore }

func (f *failingStore) UpdateDeliveryStatus(context.Context, string, DeliveryUpdate) ([]string, error) {
	return nil, errors.New("db down")
}

func TestHandleStatusUpdateSwallowsStoreError(t *testing.T) {
	var buf bytes.Buffer
	ctx := logger.With(context.Background(), logger.NewWithWriter(&buf, "production", "info"))

	em := events.NewMemory()
	c := NewCorrelator(&failingStore{}, em)
	c.now = func() time.Time { return time.Unix(1700000000, 0) }

	c.HandleStatusUpdate(ctx, Payload{"MessageSid": "SM5", "MessageStatus": "delivered", "To": "+1555"})

	var levels []string
	dec := json.NewDecoder(&buf)
	for dec.More() {
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			t.Fatalf("decode: %v", err)
		}
		levels = append(levels, rec["level"].(string))
		if rec["sid"] != "SM5" {
			t.Fatalf("expected sid on every line: %v", rec)
		}
	}
	if len(levels) != 2 || levels[0] != "INFO" || levels[1] != "WARN" {
		t.Fatalf("expected info before persist then warn, got %v", levels)
	}
	if len(em.Events()) != 0 {
		t.Fatalf("no event on failed persist")
	}
}

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]DeliveryStatus{
		"accepted":    StatusQueued,
		"Queued":      StatusQueued,
		"sending":     StatusSent,
		"sent":        StatusSent,
		"read":        StatusDelivered,
		"delivered":   StatusDelivered,
		"undelivered": StatusUndelivered,
		"canceled":    StatusFailed,
		"failed":      StatusFailed,
	}
	for in, want := range cases {
		got, ok := NormalizeStatus(in)
		if !ok || got != want {
			t.Fatalf("NormalizeStatus(%q) = %q,%v want %q", in, got, ok, want)
		}
	}
	if _, ok := NormalizeStatus("teleported"); ok {
		t.Fatalf("expected unknown status rejected")
	}
}

func TestExtractPrefersMessageFields(t *testing.T) {
	ref, ok := Extract(Payload{"MessageSid": "A", "MessageStatus": "sent", "SmsSid": "B", "SmsStatus": "failed"})
	if !ok || ref.SID != "A" || ref.Status != "sent" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	ref, ok = Extract(Payload{"MessageSid": "", "MessageStatus": "sent", "SmsSid": "B", "SmsStatus": "failed"})
	if !ok || ref.SID != "B" {
		t.Fatalf("expected fallback to SmsSid, got %+v", ref)
	}
	if _, ok := Extract(Payload{}); ok {
		t.Fatalf("expected empty payload rejected")
	}
}

func TestHandleStatusUpdateAddressesEventToSender(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Create(context.Background(), OutboundMessage{ProviderMessageID: "SM7", UserID: "u7", DeliveryStatus: StatusSent})
	em := events.NewMemory()

	NewCorrelator(store, em).HandleStatusUpdate(context.Background(), Payload{"MessageSid": "SM7", "MessageStatus": "delivered"})

	evs := em.Events()
	if len(evs) != 1 || evs[0].UserID != "u7" {
		t.Fatalf("expected one event for u7, got %+v", evs)
	}
}

func TestHandleStatusUpdateConcurrentDuplicates(t *testing.T) {
	store := seeded(t, "SM8")
	em := events.NewMemory()
	c := NewCorrelator(store, em)

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.HandleStatusUpdate(context.Background(), Payload{"MessageSid": "SM8", "MessageStatus": "delivered"})
		}()
	}
	wg.Wait()

	msgs := store.Messages()
	if len(msgs) != 1 {
		t.Fatalf("duplicates must not create rows, got %d", len(msgs))
	}
	if msgs[0].DeliveryStatus != StatusDelivered || msgs[0].DeliveryUpdatedAt == nil {
		t.Fatalf("expected delivered, got %+v", msgs[0])
	}
	if got := len(em.Events()); got != n {
		t.Fatalf("expected one event per delivery, got %d", got)
	}
}
