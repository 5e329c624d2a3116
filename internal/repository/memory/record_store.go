package memory

import (
	"context"
	"fmt"
	"sync"

	"payments_engine/internal/domain"
	"payments_engine/internal/repository"
)

type RecordStore struct {
	mu      sync.RWMutex
	records map[uint32]*domain.TransactionRecord
}

func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[uint32]*domain.TransactionRecord),
	}
}

func (s *RecordStore) Insert(ctx context.Context, record *domain.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.TxID]; exists {
		return fmt.Errorf("%w: transaction %d", repository.ErrDuplicate, record.TxID)
	}
	s.records[record.TxID] = record

	return nil
}

func (s *RecordStore) Lookup(ctx context.Context, txID uint32) (*domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[txID]
	if !exists {
		return nil, fmt.Errorf("%w: transaction %d", repository.ErrNotFound, txID)
	}
	return record, nil
}

func (s *RecordStore) UpdateDisputeState(ctx context.Context, txID uint32, state domain.DisputeState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[txID]
	if !exists {
		return fmt.Errorf("%w: transaction %d", repository.ErrNotFound, txID)
	}
	record.State = state

	return nil
}
