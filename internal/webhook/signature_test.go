package webhook

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestSignFormat(t *testing.T) {
	sig := Sign("s3cret", "1700000000", []byte(`{"a":1}`))
	if !strings.HasPrefix(sig, "sha256=") || len(sig) != len("sha256=")+64 {
		t.Fatalf("unexpected signature: %q", sig)
	}
	if sig != Sign("s3cret", "1700000000", []byte(`{"a":1}`)) {
		t.Fatalf("expected deterministic signature")
	}
	if sig == Sign("other", "1700000000", []byte(`{"a":1}`)) {
		t.Fatalf("expected secret to change signature")
	}
}

func TestVerifyRoundTripWithinTolerance(t *testing.T) {
	bodies := [][]byte{nil, []byte(""), []byte("MessageSid=SM1&MessageStatus=delivered"), []byte("ünïcode ✓")}
	now := time.Now()
	for _, offset := range []time.Duration{0, -4 * time.Minute, 4 * time.Minute} {
		ts := strconv.FormatInt(now.Add(offset).Unix(), 10)
		for _, b := range bodies {
			sig := Sign("secret", ts, b)
			if !Verify("secret", ts, b, sig, 5*time.Minute) {
				t.Fatalf("expected valid signature for offset %s body %q", offset, b)
			}
		}
	}
}

func TestCheckRejections(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := "1700000000"
	body := []byte("payload")
	good := Sign("secret", ts, body)

	cases := []struct {
		name      string
		timestamp string
		sig       string
		body      []byte
		want      error
	}{
		{"non numeric timestamp", "yesterday", good, body, ErrInvalidTimestamp},
		{"NaN timestamp", "NaN", good, body, ErrInvalidTimestamp},
		{"infinite timestamp", "+Inf", good, body, ErrInvalidTimestamp},
		{"too old", "1699999000", Sign("secret", "1699999000", body), body, ErrStaleTimestamp},
		{"too far ahead", "1700001000", Sign("secret", "1700001000", body), body, ErrStaleTimestamp},
		{"missing header", ts, "", body, ErrMissingSignature},
		{"short signature", ts, "sha256=abc", body, ErrSignatureLength},
		{"long signature", ts, good + "00", body, ErrSignatureLength},
		{"tampered body", ts, good, []byte("payload2"), ErrSignatureMismatch},
		{"wrong secret", ts, Sign("other", ts, body), body, ErrSignatureMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Check("secret", tc.timestamp, tc.body, tc.sig, 5*time.Minute, now)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if err := Check("secret", ts, body, good, 5*time.Minute, now); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestLengthMismatchNeverMatches(t *testing.T) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	good := Sign("secret", ts, []byte("b"))
	for n := 0; n < len(good)+8; n++ {
		if n == len(good) {
			continue
		}
		cand := strings.Repeat("a", n)
		if n <= len(good) {
			cand = good[:n]
		}
		if Verify("secret", ts, []byte("b"), cand, time.Minute) {
			t.Fatalf("signature of length %d accepted", n)
		}
	}
}

func TestFractionalTimestampAccepted(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ts := "1700000000.250"
	body := []byte("x")
	if err := Check("secret", ts, body, Sign("secret", ts, body), time.Minute, now); err != nil {
		t.Fatalf("expected fractional timestamp accepted, got %v", err)
	}
}

func TestReason(t *testing.T) {
	if Reason(ErrStaleTimestamp) != "stale_timestamp" || Reason(nil) != "" {
		t.Fatalf("unexpected reason mapping")
	}
}
