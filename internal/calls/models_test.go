package calls

import (
	"testing"
	"time"
)

func TestStageCanAdvance(t *testing.T) {
	cases := []struct {
		from, to Stage
		want     bool
	}{
		{StageValidating, StageLegADialing, true},
		{StageLegADialing, StageLegAAnswered, true},
		{StageLegAAnswered, StageLegARinging, false},
		{StageBridged, StageLegBDialing, false},
		{StageBridged, StageCompleted, true},
		{StageLegARinging, StageFailed, true},
		{StageCompleted, StageFailed, false},
		{StageFailed, StageCompleted, false},
		{StageLegADialing, StageLegADialing, false},
		{StageLegADialing, Stage("bogus"), false},
	}
	for _, tc := range cases {
		if got := tc.from.CanAdvance(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: got %v want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestPredecessorsOfFailedAreNonTerminal(t *testing.T) {
	for _, s := range predecessors(StageFailed) {
		if s.Terminal() {
			t.Fatalf("terminal stage %s listed as predecessor", s)
		}
	}
	if len(predecessors(StageFailed)) != 6 {
		t.Fatalf("expected every non-terminal stage, got %v", predecessors(StageFailed))
	}
}

func TestIdentityPrimaryIsEarliest(t *testing.T) {
	base := time.Unix(1700000000, 0)
	id := Identity{AssignedNumbers: []AssignedNumber{
		{Number: "+15550000003", AssignedAt: base.Add(2 * time.Hour)},
		{Number: "+15550000001", AssignedAt: base},
		{Number: "+15550000002", AssignedAt: base.Add(time.Hour)},
	}}
	n, ok := id.Primary()
	if !ok || n.Number != "+15550000001" {
		t.Fatalf("expected earliest number, got %+v", n)
	}
	if _, ok := (Identity{}).Primary(); ok {
		t.Fatalf("expected no primary without numbers")
	}
}

func TestNormalizeEvent(t *testing.T) {
	cases := map[string]Event{
		"queued":      EventInitiated,
		"initiated":   EventInitiated,
		"ringing":     EventRinging,
		"in-progress": EventAnswered,
		"answered":    EventAnswered,
		"completed":   EventCompleted,
		"busy":        EventFailed,
		"no-answer":   EventFailed,
		"":            EventFailed,
	}
	for in, want := range cases {
		if got := NormalizeEvent(in); got != want {
			t.Fatalf("NormalizeEvent(%q) = %s want %s", in, got, want)
		}
	}
}
