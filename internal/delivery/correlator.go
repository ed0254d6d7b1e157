package delivery

import (
	"context"
	"time"

	"carrier-gateway/internal/events"
	"carrier-gateway/internal/metrics"
	"carrier-gateway/pkg/logger"
)

// Correlator applies carrier delivery webhooks to stored messages.
// Updates are last-write-wins: carriers give no ordering or sequence number,
// so a late "failed" may overwrite an earlier "delivered".
type Correlator struct {
	store   MessageStore
	emitter events.Emitter
	now     func() time.Time
}

func NewCorrelator(store MessageStore, emitter events.Emitter) *Correlator {
	if emitter == nil {
		emitter = events.Noop{}
	}
	return &Correlator{store: store, emitter: emitter, now: time.Now}
}

// HandleStatusUpdate never fails. The carrier gets a 2xx regardless, since a
// non-2xx only triggers redelivery of the same payload.
func (c *Correlator) HandleStatusUpdate(ctx context.Context, p Payload) {
	log := logger.From(ctx)

	ref, ok := Extract(p)
	if !ok {
		log.Warn("sms status webhook without sid/status", "keys", len(p))
		return
	}

	errCode := optional(p.get("ErrorCode"))
	errMsg := optional(p.get("ErrorMessage"))

	log.Info("sms status update",
		"sid", ref.SID,
		"to", p.get("To"),
		"from", p.get("From"),
		"status", ref.Status,
		"error_code", deref(errCode),
		"error_message", deref(errMsg),
	)

	status, known := NormalizeStatus(ref.Status)
	if !known {
		log.Warn("sms status not recognised, ignoring", "sid", ref.SID, "status", ref.Status)
		return
	}

	owners, err := c.store.UpdateDeliveryStatus(ctx, ref.SID, DeliveryUpdate{
		Status:       status,
		ErrorCode:    errCode,
		ErrorMessage: errMsg,
		UpdatedAt:    c.now().UTC(),
	})
	if err != nil {
		log.Warn("sms status persist failed", "sid", ref.SID, "err", err)
		return
	}
	if len(owners) == 0 {
		log.Debug("sms status for unknown message", "sid", ref.SID)
		return
	}

	metrics.DeliveryUpdates.WithLabelValues(string(status)).Inc()

	data := map[string]any{
		"provider_message_id": ref.SID,
		"status":              string(status),
	}
	if errCode != nil {
		data["error_code"] = *errCode
	}
	// one event per owner; rows sharing a sid normally share the sender
	seen := make(map[string]struct{}, len(owners))
	for _, userID := range owners {
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		if err := c.emitter.Emit(ctx, events.New(events.TypeSMSStatus, userID, data)); err != nil {
			log.Warn("sms status emit failed", "sid", ref.SID, "user_id", userID, "err", err)
		}
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
