package calls

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrier-gateway/internal/events"
	"carrier-gateway/internal/metrics"
	"carrier-gateway/pkg/logger"
	"carrier-gateway/pkg/utils"
)

// StatusEvents are the carrier progress events every leg subscribes to.
var StatusEvents = []string{"initiated", "ringing", "answered", "completed"}

type OrchestratorConfig struct {
	// StatusCallbackURL receives progress events for both legs.
	StatusCallbackURL string
	// ContinuationURL is fetched by the carrier once leg A is answered.
	ContinuationURL string
}

// Orchestrator places bridged alias calls: it rings the user's own phone
// first (leg A) and, once answered, dials the destination (leg B) with the
// user's assigned number as caller id.
type Orchestrator struct {
	cfg      OrchestratorConfig
	carrier  VoiceCarrier
	sessions SessionStore
	identity IdentityStore
	emitter  events.Emitter
	now      func() time.Time
}

func NewOrchestrator(cfg OrchestratorConfig, carrier VoiceCarrier, sessions SessionStore, identity IdentityStore, emitter events.Emitter) *Orchestrator {
	if emitter == nil {
		emitter = events.Noop{}
	}
	return &Orchestrator{
		cfg:      cfg,
		carrier:  carrier,
		sessions: sessions,
		identity: identity,
		emitter:  emitter,
		now:      time.Now,
	}
}

type StartRequest struct {
	UserID string `json:"user_id"`
	To     string `json:"to"`
}

type StartResult struct {
	OK                   bool   `json:"ok"`
	From                 string `json:"from"`
	To                   string `json:"to"`
	UserForwardingNumber string `json:"user_forwarding_number"`
	Stage                Stage  `json:"stage"`
	CallSID              string `json:"call_sid"`
}

// StartAliasCall validates the request, dials leg A and records the session.
// Precondition failures return before any store or carrier access that
// could leave state behind.
func (o *Orchestrator) StartAliasCall(ctx context.Context, req StartRequest) (StartResult, error) {
	log := logger.From(ctx)

	to := utils.NormalizePhone(req.To)
	if !utils.IsE164(to) {
		return StartResult{}, ErrInvalidDestination
	}
	if strings.TrimSpace(req.UserID) == "" {
		return StartResult{}, fmt.Errorf("%w: user id required", ErrInvalidRequest)
	}

	id, err := o.identity.Identity(ctx, req.UserID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return StartResult{}, fmt.Errorf("identity lookup: %w", err)
	}
	primary, ok := id.Primary()
	if !ok {
		return StartResult{}, ErrNoAssignedNumber
	}
	forwarding := utils.NormalizePhone(id.ForwardingNumber)
	if !utils.IsE164(forwarding) {
		return StartResult{}, ErrUnverifiedForwardingNumber
	}

	next, err := ContinuationURL(o.cfg.ContinuationURL, ContinuationState{
		UserID: req.UserID,
		From:   primary.Number,
		To:     to,
	})
	if err != nil {
		return StartResult{}, err
	}

	handle, err := o.carrier.CreateCall(ctx, CallRequest{
		From:             primary.Number,
		To:               forwarding,
		URL:              next,
		StatusCallback:   o.cfg.StatusCallbackURL,
		StatusEvents:     StatusEvents,
		MachineDetection: true,
	})
	if err != nil {
		log.Warn("leg A call failed", "user_id", req.UserID, "err", err)
		return StartResult{}, fmt.Errorf("%w: %w", ErrCarrierUnavailable, err)
	}

	now := o.now().UTC()
	sess := Session{
		CallSID:              handle.SID,
		UserID:               req.UserID,
		FromNumber:           primary.Number,
		ToNumber:             to,
		UserForwardingNumber: forwarding,
		Stage:                StageLegADialing,
		LastStatusEvent:      handle.Status,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	// the carrier is already dialing; a lost record only costs us tracking
	if err := o.sessions.Create(ctx, sess); err != nil {
		log.Error("call session persist failed", "call_sid", handle.SID, "err", err)
	}
	metrics.CallStageTransitions.WithLabelValues(string(StageLegADialing)).Inc()
	o.emit(ctx, sess.UserID, sess.CallSID, StageLegADialing)

	log.Info("alias call started", "call_sid", handle.SID, "user_id", req.UserID)

	return StartResult{
		OK:                   true,
		From:                 primary.Number,
		To:                   to,
		UserForwardingNumber: forwarding,
		Stage:                StageLegADialing,
		CallSID:              handle.SID,
	}, nil
}

func (o *Orchestrator) emit(ctx context.Context, userID, callSID string, stage Stage) {
	ev := events.New(events.TypeCallStage, userID, map[string]any{
		"call_sid": callSID,
		"stage":    string(stage),
	})
	if err := o.emitter.Emit(ctx, ev); err != nil {
		logger.From(ctx).Warn("call stage emit failed", "call_sid", callSID, "err", err)
	}
}

// advance applies a transition if the session's current stage allows it.
func (o *Orchestrator) advance(ctx context.Context, sess Session, to Stage, event, answeredBy string) bool {
	return o.transition(ctx, sess, to, predecessors(to), event, answeredBy)
}

// transition moves the session to `to` only if its stored stage is in from.
func (o *Orchestrator) transition(ctx context.Context, sess Session, to Stage, from []Stage, event, answeredBy string) bool {
	log := logger.From(ctx)

	changed, err := o.sessions.Transition(ctx, sess.CallSID, from, StageUpdate{
		Stage:                  to,
		LastStatusEvent:        event,
		MachineDetectionResult: answeredBy,
		UpdatedAt:              o.now().UTC(),
	})
	if err != nil {
		log.Warn("call stage persist failed", "call_sid", sess.CallSID, "stage", to, "err", err)
		return false
	}
	if !changed {
		log.Debug("call stage not advanced", "call_sid", sess.CallSID, "from", sess.Stage, "to", to)
		return false
	}

	metrics.CallStageTransitions.WithLabelValues(string(to)).Inc()
	o.emit(ctx, sess.UserID, sess.CallSID, to)
	return true
}
