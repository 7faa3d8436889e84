package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"depot-helpdesk/internal/models"
	"depot-helpdesk/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedStore keeps the snapshot in memory. When armed, the next Load reads
// the snapshot and then waits on the gate before returning it.
type gatedStore struct {
	mu     sync.Mutex
	saved  store.Snapshot
	gate   chan struct{}
	loaded chan struct{}
}

func (s *gatedStore) arm() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = make(chan struct{})
	s.loaded = make(chan struct{})
	return s.gate
}

func (s *gatedStore) Load(ctx context.Context) (store.Snapshot, error) {
	s.mu.Lock()
	snap := s.saved.Clone()
	gate, loaded := s.gate, s.loaded
	s.gate = nil
	s.mu.Unlock()

	if gate != nil {
		close(loaded)
		<-gate
	}
	return snap, nil
}

func (s *gatedStore) Save(ctx context.Context, snap store.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = snap.Clone()
	return nil
}

func (s *gatedStore) snapshot() store.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved.Clone()
}

func TestReloadDoesNotDropConcurrentAdd(t *testing.T) {
	st := &gatedStore{saved: store.Snapshot{Comments: models.CommentBuckets{}}}
	repo, err := New(ctx, st, WithClock(func() time.Time { return fixedAt }))
	require.NoError(t, err)

	gate := st.arm()
	loaded := st.loaded

	reloadDone := make(chan error, 1)
	go func() { reloadDone <- repo.Reload(ctx) }()
	<-loaded

	addDone := make(chan error, 1)
	go func() {
		_, err := repo.Add(ctx, validDraft())
		addDone <- err
	}()

	select {
	case err := <-addDone:
		t.Fatalf("Add completed while Reload held an older snapshot: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(gate)
	require.NoError(t, <-reloadDone)
	require.NoError(t, <-addDone)

	_, err = repo.Add(ctx, validDraft())
	require.NoError(t, err)

	assert.Equal(t, 2, repo.Len())
	assert.Len(t, st.snapshot().Requests, 2)
}
