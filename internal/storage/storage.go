package storage

import "github.com/JustRK-07/Sip-advanced/internal/types"

// Store defines the call record persistence interface
type Store interface {
	SaveCallRecord(record types.CallRecord) error
	GetCallRecords(dateKey string) ([]types.CallRecord, error)
}

// NoopStore is a no-op implementation when DynamoDB is disabled
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) SaveCallRecord(_ types.CallRecord) error             { return nil }
func (s *NoopStore) GetCallRecords(_ string) ([]types.CallRecord, error) { return nil, nil }
