package calls

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"carrier-gateway/pkg/logger"
	"carrier-gateway/pkg/utils"
)

// Event is the normalized progress event vocabulary.
type Event string

const (
	EventInitiated Event = "initiated"
	EventRinging   Event = "ringing"
	EventAnswered  Event = "answered"
	EventCompleted Event = "completed"
	EventFailed    Event = "failed"
)

// NormalizeEvent maps a carrier call status to the event vocabulary.
// Carrier terminal errors (busy, no-answer, canceled) and anything unknown
// collapse to failed.
func NormalizeEvent(raw string) Event {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "initiated", "queued":
		return EventInitiated
	case "ringing":
		return EventRinging
	case "answered", "in-progress":
		return EventAnswered
	case "completed":
		return EventCompleted
	default:
		return EventFailed
	}
}

// StatusEvent is one inbound status callback.
type StatusEvent struct {
	CallSID       string
	ParentCallSID string
	// LegB is set for callbacks of the dialed destination leg.
	LegB         bool
	Status       string
	AnsweredBy   string
	ErrorCode    string
	ErrorMessage string
}

// HandleStatusEvent advances the session the event belongs to. It never
// fails: unknown calls and stale events are logged and dropped.
func (o *Orchestrator) HandleStatusEvent(ctx context.Context, ev StatusEvent) {
	log := logger.From(ctx)

	sid := ev.CallSID
	if ev.LegB {
		sid = ev.ParentCallSID
	}
	if sid == "" {
		log.Warn("call status event without call sid", "status", ev.Status)
		return
	}

	sess, err := o.sessions.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Debug("call status event for unknown session", "call_sid", sid)
		} else {
			log.Warn("call session load failed", "call_sid", sid, "err", err)
		}
		return
	}
	if sess.Stage.Terminal() {
		log.Debug("call status event after terminal stage", "call_sid", sid, "stage", sess.Stage)
		return
	}

	event := NormalizeEvent(ev.Status)
	if ev.ErrorCode != "" || ev.ErrorMessage != "" {
		event = EventFailed
	}

	// leg A hanging up before leg B answered means the bridge never happened
	if !ev.LegB && event == EventCompleted {
		if o.transition(ctx, sess, StageFailed, stagesBefore(StageBridged), ev.Status, ev.AnsweredBy) {
			log.Warn("call failed", "call_sid", sid, "status", ev.Status, "reason", "leg A ended before bridge")
			return
		}
	}

	target, ok := targetStage(event, ev.LegB)
	if !ok {
		return
	}
	if target == StageFailed {
		log.Warn("call failed", "call_sid", sid, "status", ev.Status, "error_code", ev.ErrorCode, "error_message", ev.ErrorMessage, "leg_b", ev.LegB)
	}
	o.advance(ctx, sess, target, ev.Status, ev.AnsweredBy)
}

func targetStage(ev Event, legB bool) (Stage, bool) {
	if ev == EventFailed {
		return StageFailed, true
	}
	if legB {
		switch ev {
		case EventAnswered:
			return StageBridged, true
		case EventCompleted:
			return StageCompleted, true
		default:
			// leg B dialing is entered from the continuation webhook
			return "", false
		}
	}
	switch ev {
	case EventInitiated:
		return StageLegADialing, true
	case EventRinging:
		return StageLegARinging, true
	case EventAnswered:
		return StageLegAAnswered, true
	case EventCompleted:
		return StageCompleted, true
	}
	return "", false
}

// Bridge tells the carrier what to do with an answered leg A.
type Bridge struct {
	Hangup bool

	CallerID       string
	Number         string
	StatusCallback string
	StatusEvents   []string
}

// HandleContinuation starts leg B from the state carried in the callback
// URL. The query string is not covered by the webhook signature, so the
// state is checked before anything is dialed: against the stored session
// when there is one, otherwise against the user's assigned numbers.
func (o *Orchestrator) HandleContinuation(ctx context.Context, callSID, answeredBy string, st ContinuationState) (Bridge, error) {
	log := logger.From(ctx)

	from := utils.NormalizePhone(st.From)
	to := utils.NormalizePhone(st.To)
	if !utils.IsE164(from) || !utils.IsE164(to) {
		return Bridge{Hangup: true}, ErrInvalidDestination
	}

	sess, found, err := o.continuationSession(ctx, callSID, st.UserID, from, to)
	if err != nil {
		log.Warn("continuation rejected", "call_sid", callSID, "user_id", st.UserID, "err", err)
		return Bridge{Hangup: true}, err
	}

	if isMachine(answeredBy) {
		log.Info("leg A answered by machine, hanging up", "call_sid", callSID, "answered_by", answeredBy)
		if found {
			o.advance(ctx, sess, StageFailed, "answered", answeredBy)
		}
		return Bridge{Hangup: true}, nil
	}

	if found && !o.advance(ctx, sess, StageLegBDialing, "answered", answeredBy) {
		// a duplicate continuation finds legB-dialing already set; anything
		// else means the session moved on concurrently
		cur, err := o.sessions.Get(ctx, callSID)
		if err != nil || cur.Stage != StageLegBDialing {
			log.Warn("continuation for session that moved on", "call_sid", callSID, "stage", cur.Stage)
			return Bridge{Hangup: true}, fmt.Errorf("%w: session is %s", ErrContinuationRejected, cur.Stage)
		}
	}

	return Bridge{
		CallerID:       from,
		Number:         to,
		StatusCallback: legBCallback(o.cfg.StatusCallbackURL),
		StatusEvents:   StatusEvents,
	}, nil
}

// continuationSession loads the session for callSID and checks the
// continuation state against it. Without a session, from must be one of the
// user's assigned numbers.
func (o *Orchestrator) continuationSession(ctx context.Context, callSID, userID, from, to string) (Session, bool, error) {
	if callSID != "" {
		sess, err := o.sessions.Get(ctx, callSID)
		switch {
		case err == nil:
			if sess.Stage.Terminal() {
				return Session{}, false, fmt.Errorf("%w: session is %s", ErrContinuationRejected, sess.Stage)
			}
			if sess.UserID != userID || utils.NormalizePhone(sess.FromNumber) != from || utils.NormalizePhone(sess.ToNumber) != to {
				return Session{}, false, fmt.Errorf("%w: state does not match session", ErrContinuationRejected)
			}
			return sess, true, nil
		case !errors.Is(err, ErrNotFound):
			logger.From(ctx).Warn("call session load failed", "call_sid", callSID, "err", err)
		}
	}

	id, err := o.identity.Identity(ctx, userID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return Session{}, false, fmt.Errorf("identity lookup: %w", err)
	}
	for _, n := range id.AssignedNumbers {
		if utils.NormalizePhone(n.Number) == from {
			return Session{}, false, nil
		}
	}
	return Session{}, false, fmt.Errorf("%w: %s is not assigned to user", ErrContinuationRejected, from)
}

func isMachine(answeredBy string) bool {
	a := strings.ToLower(answeredBy)
	return strings.HasPrefix(a, "machine") || a == "fax"
}

func legBCallback(base string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "leg=b"
}
