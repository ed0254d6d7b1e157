package sms

import (
	"testing"
	"time"
)

func TestMicroBreakerOpensAndProbes(t *testing.T) {
	now := time.Unix(1700000000, 0)
	b := NewMicroBreaker(2, time.Minute)
	b.now = func() time.Time { return now }

	b.OnFailure()
	if !b.TryAcquire() {
		t.Fatalf("expected closed after one failure")
	}
	b.OnFailure()
	if b.TryAcquire() {
		t.Fatalf("expected open after threshold")
	}

	now = now.Add(2 * time.Minute)
	if !b.TryAcquire() {
		t.Fatalf("expected one probe after cool down")
	}
	if b.TryAcquire() {
		t.Fatalf("only one probe may be in flight")
	}
	b.OnSuccess()
	if !b.TryAcquire() {
		t.Fatalf("expected closed after successful probe")
	}
}

func TestMicroBreakerFailedProbeReopens(t *testing.T) {
	now := time.Unix(1700000000, 0)
	b := NewMicroBreaker(1, time.Minute)
	b.now = func() time.Time { return now }

	b.OnFailure()
	now = now.Add(2 * time.Minute)
	if !b.TryAcquire() {
		t.Fatalf("expected probe")
	}
	b.OnFailure()
	if b.TryAcquire() {
		t.Fatalf("expected open again after failed probe")
	}
}
