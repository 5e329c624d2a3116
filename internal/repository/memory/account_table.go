package memory

import (
	"context"
	"sort"
	"sync"

	"payments_engine/internal/domain"
)

type AccountTable struct {
	mu       sync.RWMutex
	accounts map[uint16]*domain.Account
}

func NewAccountTable() *AccountTable {
	return &AccountTable{
		accounts: make(map[uint16]*domain.Account),
	}
}

func (t *AccountTable) GetOrCreate(ctx context.Context, clientID uint16) *domain.Account {
	t.mu.Lock()
	defer t.mu.Unlock()

	account, exists := t.accounts[clientID]
	if !exists {
		account = domain.NewAccount(clientID)
		t.accounts[clientID] = account
	}
	return account
}

func (t *AccountTable) Snapshot(ctx context.Context) []*domain.Account {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]*domain.Account, 0, len(t.accounts))
	for _, account := range t.accounts {
		result = append(result, account)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ClientID < result[j].ClientID
	})

	return result
}
