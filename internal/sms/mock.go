package sms

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// MockAdapter accepts everything without network I/O. Config validation
// keeps it out of production.
type MockAdapter struct{}

func (MockAdapter) Name() string { return "mock" }

func (a MockAdapter) Send(_ context.Context, req SendRequest) (Receipt, error) {
	return Receipt{
		Provider:   a.Name(),
		MessageSID: "mock-" + ulid.Make().String(),
		ClientRef:  req.ClientRef,
	}, nil
}
