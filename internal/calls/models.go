package calls

import "time"

// Session is one outbound bridged call, keyed by the carrier sid of leg A.
//
// A session only exists once the caller's identity checks passed and leg A
// was accepted by the carrier. It is frozen once Stage is terminal.
type Session struct {
	CallSID string `json:"call_sid" db:"call_sid"`
	UserID  string `json:"user_id" db:"user_id"`

	FromNumber           string `json:"from_number" db:"from_number"`
	ToNumber             string `json:"to_number" db:"to_number"`
	UserForwardingNumber string `json:"user_forwarding_number" db:"user_forwarding_number"`

	Stage Stage `json:"stage" db:"stage"`

	MachineDetectionResult string `json:"machine_detection_result,omitempty" db:"machine_detection_result"`
	LastStatusEvent        string `json:"last_status_event,omitempty" db:"last_status_event"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Stage string

const (
	StageValidating   Stage = "validating"
	StageLegADialing  Stage = "legA-dialing"
	StageLegARinging  Stage = "legA-ringing"
	StageLegAAnswered Stage = "legA-answered"
	StageLegBDialing  Stage = "legB-dialing"
	StageBridged      Stage = "bridged"
	StageCompleted    Stage = "completed"
	StageFailed       Stage = "failed"
)

var stageRank = map[Stage]int{
	StageValidating:   0,
	StageLegADialing:  1,
	StageLegARinging:  2,
	StageLegAAnswered: 3,
	StageLegBDialing:  4,
	StageBridged:      5,
	StageCompleted:    6,
}

func (s Stage) Valid() bool {
	_, ok := stageRank[s]
	return ok || s == StageFailed
}

func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// CanAdvance reports whether a session at s may move to next: strictly
// forward, or into failed from any non-terminal stage.
func (s Stage) CanAdvance(next Stage) bool {
	if s.Terminal() || !s.Valid() {
		return false
	}
	if next == StageFailed {
		return true
	}
	nr, ok := stageRank[next]
	return ok && nr > stageRank[s]
}

// stagesBefore lists the non-terminal stages ranked below s.
func stagesBefore(s Stage) []Stage {
	var out []Stage
	for st, r := range stageRank {
		if !st.Terminal() && r < stageRank[s] {
			out = append(out, st)
		}
	}
	return out
}

// predecessors lists every stage from which next is reachable.
func predecessors(next Stage) []Stage {
	var out []Stage
	for s := range stageRank {
		if s.CanAdvance(next) {
			out = append(out, s)
		}
	}
	return out
}

// Identity is the caller's telephony setup.
type Identity struct {
	UserID           string
	AssignedNumbers  []AssignedNumber
	ForwardingNumber string
}

type AssignedNumber struct {
	Number     string    `db:"number"`
	AssignedAt time.Time `db:"assigned_at"`
}

// Primary returns the earliest-assigned number.
func (id Identity) Primary() (AssignedNumber, bool) {
	if len(id.AssignedNumbers) == 0 {
		return AssignedNumber{}, false
	}
	best := id.AssignedNumbers[0]
	for _, n := range id.AssignedNumbers[1:] {
		if n.AssignedAt.Before(best.AssignedAt) {
			best = n
		}
	}
	return best, true
}
