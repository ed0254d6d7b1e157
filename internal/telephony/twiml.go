package telephony

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strings"

	"carrier-gateway/internal/calls"
)

// TwiML is a minimal Twilio Markup Language response builder. Only the
// verbs the bridge needs are modelled.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type twimlDial struct {
	XMLName  xml.Name    `xml:"Dial"`
	CallerID string      `xml:"callerId,attr"`
	Number   twimlNumber `xml:"Number"`
}

type twimlNumber struct {
	StatusCallback       string `xml:"statusCallback,attr,omitempty"`
	StatusCallbackEvent  string `xml:"statusCallbackEvent,attr,omitempty"`
	StatusCallbackMethod string `xml:"statusCallbackMethod,attr,omitempty"`
	Number               string `xml:",chardata"`
}

// RenderBridge maps a bridge decision to TwiML.
func RenderBridge(b calls.Bridge) (string, error) {
	var r twimlResponse

	if b.Hangup {
		r.Verbs = append(r.Verbs, twimlHangup{})
		return encode(r)
	}

	if strings.TrimSpace(b.Number) == "" || strings.TrimSpace(b.CallerID) == "" {
		return "", errors.New("telephony: bridge needs number and caller id")
	}
	n := twimlNumber{Number: b.Number}
	if b.StatusCallback != "" {
		n.StatusCallback = b.StatusCallback
		n.StatusCallbackEvent = strings.Join(b.StatusEvents, " ")
		n.StatusCallbackMethod = "POST"
	}
	r.Verbs = append(r.Verbs, twimlDial{CallerID: b.CallerID, Number: n})
	return encode(r)
}

// HangupTwiML is the fallback answer when no bridge can be built.
func HangupTwiML() string {
	s, _ := encode(twimlResponse{Verbs: []any{twimlHangup{}}})
	return s
}

func encode(r twimlResponse) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
