package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/courtloop/challenge-engine/internal/rewards"
)

// Mem is an in-memory store with the same contract as SQLite. It backs tests
// and browser-host deployments where persistence is delegated to an opaque
// key-value surface outside this process.
type Mem struct {
	mu           sync.Mutex
	achievements []rewards.Achievement
	clears       []rewards.ChallengeClear
	state        map[string][]byte
}

// NewMem creates an empty in-memory store.
func NewMem() *Mem {
	return &Mem{state: make(map[string][]byte)}
}

func (m *Mem) SaveAchievement(_ context.Context, a rewards.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.achievements = append(m.achievements, a)
	return nil
}

func (m *Mem) ListAchievements(_ context.Context) ([]rewards.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]rewards.Achievement, len(m.achievements))
	copy(out, m.achievements)
	return out, nil
}

func (m *Mem) SaveClear(_ context.Context, c rewards.ChallengeClear) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears = append(m.clears, c)
	return nil
}

func (m *Mem) ListClears(_ context.Context, limit, offset int) ([]rewards.ChallengeClear, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := len(m.clears)
	if offset >= total {
		return nil, total, nil
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]rewards.ChallengeClear, end-offset)
	copy(out, m.clears[offset:end])
	return out, total, nil
}

func (m *Mem) SaveState(_ context.Context, key string, v any) error {
	data, err := json.Marshal(stateEnvelope{Version: stateVersion, Data: mustMarshal(v)})
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[key] = data
	return nil
}

func (m *Mem) LoadState(_ context.Context, key string, out any) (bool, error) {
	m.mu.Lock()
	blob, ok := m.state[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	var env stateEnvelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return false, nil
	}
	if env.Version != stateVersion {
		return false, nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return false, nil
	}
	return true, nil
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}
