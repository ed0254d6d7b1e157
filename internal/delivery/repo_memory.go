package delivery

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory MessageStore useful for tests and local runs.
// It is not intended for production use.
type MemoryStore struct {
	mu       sync.Mutex
	messages []OutboundMessage
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Create(_ context.Context, m OutboundMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	return nil
}

func (s *MemoryStore) UpdateDeliveryStatus(_ context.Context, providerMessageID string, u DeliveryUpdate) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owners []string
	for i := range s.messages {
		if s.messages[i].ProviderMessageID != providerMessageID {
			continue
		}
		at := u.UpdatedAt
		s.messages[i].DeliveryStatus = u.Status
		s.messages[i].DeliveryErrorCode = u.ErrorCode
		s.messages[i].DeliveryErrorMessage = u.ErrorMessage
		s.messages[i].DeliveryUpdatedAt = &at
		owners = append(owners, s.messages[i].UserID)
	}
	return owners, nil
}

func (s *MemoryStore) Messages() []OutboundMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]OutboundMessage, len(s.messages))
	copy(out, s.messages)
	return out
}
