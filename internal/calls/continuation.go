package calls

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	paramUserID = "userId"
	paramFrom   = "from"
	paramTo     = "to"
)

// ContinuationState is everything leg B needs. It travels in the leg A
// callback URL and the carrier returns that URL verbatim, so no session
// lookup is needed to start leg B.
type ContinuationState struct {
	UserID string
	From   string
	To     string
}

// ContinuationURL appends the state to base as query parameters.
func ContinuationURL(base string, st ContinuationState) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("continuation base url: %w", err)
	}
	q := u.Query()
	q.Set(paramUserID, st.UserID)
	q.Set(paramFrom, st.From)
	q.Set(paramTo, st.To)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ParseContinuation reads the state back from callback query parameters.
func ParseContinuation(q url.Values) (ContinuationState, error) {
	st := ContinuationState{
		UserID: strings.TrimSpace(q.Get(paramUserID)),
		From:   strings.TrimSpace(q.Get(paramFrom)),
		To:     strings.TrimSpace(q.Get(paramTo)),
	}
	if st.UserID == "" || st.From == "" || st.To == "" {
		return ContinuationState{}, fmt.Errorf("%w: continuation needs userId, from and to", ErrInvalidRequest)
	}
	return st, nil
}
