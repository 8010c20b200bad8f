package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jwalitptl/walkin-api/internal/model"
	"github.com/jwalitptl/walkin-api/internal/repository"
)

type backupCache struct {
	mu      sync.Mutex
	entries [][]byte
}

func NewBackupCache() repository.BackupCache {
	return &backupCache{}
}

func (b *backupCache) Append(ctx context.Context, record *model.PatientRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal backup entry: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, data)
	return nil
}

func (b *backupCache) Dump(ctx context.Context) ([][]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][]byte, len(b.entries))
	copy(out, b.entries)
	return out, nil
}
