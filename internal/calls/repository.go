package calls

import (
	"context"
	"time"
)

// SessionStore persists call sessions keyed by leg A call sid.
type SessionStore interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, callSID string) (Session, error)
	// Transition moves the session to u.Stage only if its current stage is
	// one of from. It reports whether a row changed, so concurrent webhooks
	// for the same call cannot move it backwards.
	Transition(ctx context.Context, callSID string, from []Stage, u StageUpdate) (bool, error)
}

type StageUpdate struct {
	Stage                  Stage
	LastStatusEvent        string
	MachineDetectionResult string // empty keeps the stored value
	UpdatedAt              time.Time
}

// IdentityStore resolves a user's assigned numbers and forwarding number.
type IdentityStore interface {
	Identity(ctx context.Context, userID string) (Identity, error)
}

// CallRequest asks the voice carrier to place one outbound call.
type CallRequest struct {
	From             string
	To               string
	URL              string
	StatusCallback   string
	StatusEvents     []string
	MachineDetection bool
}

type CallHandle struct {
	SID    string
	Status string
}

// VoiceCarrier places calls. Implementations live in internal/telephony.
type VoiceCarrier interface {
	CreateCall(ctx context.Context, req CallRequest) (CallHandle, error)
}
