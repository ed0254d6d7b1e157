package telephony

import (
	"net/http"
	"strings"

	"carrier-gateway/internal/calls"
)

// TwilioStatusForm captures the voice status callback fields we act on.
// Twilio posts application/x-www-form-urlencoded.
type TwilioStatusForm struct {
	CallSid       string
	ParentCallSid string
	CallStatus    string
	AnsweredBy    string
	ErrorCode     string
	ErrorMessage  string
	From          string
	To            string
}

func ParseTwilioStatus(r *http.Request) (TwilioStatusForm, error) {
	if err := r.ParseForm(); err != nil {
		return TwilioStatusForm{}, err
	}
	return TwilioStatusForm{
		CallSid:       strings.TrimSpace(r.PostFormValue("CallSid")),
		ParentCallSid: strings.TrimSpace(r.PostFormValue("ParentCallSid")),
		CallStatus:    strings.TrimSpace(r.PostFormValue("CallStatus")),
		AnsweredBy:    strings.TrimSpace(r.PostFormValue("AnsweredBy")),
		ErrorCode:     strings.TrimSpace(r.PostFormValue("ErrorCode")),
		ErrorMessage:  strings.TrimSpace(r.PostFormValue("ErrorMessage")),
		From:          strings.TrimSpace(r.PostFormValue("From")),
		To:            strings.TrimSpace(r.PostFormValue("To")),
	}, nil
}

// ToStatusEvent marks the event as leg B when the callback URL says so.
func (f TwilioStatusForm) ToStatusEvent(legB bool) calls.StatusEvent {
	return calls.StatusEvent{
		CallSID:       f.CallSid,
		ParentCallSID: f.ParentCallSid,
		LegB:          legB,
		Status:        f.CallStatus,
		AnsweredBy:    f.AnsweredBy,
		ErrorCode:     f.ErrorCode,
		ErrorMessage:  f.ErrorMessage,
	}
}

// FlattenForm turns a parsed form into single-valued fields, keeping the
// first value of repeated keys.
func FlattenForm(r *http.Request) (map[string]string, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out, nil
}
