package store

import (
	"context"
	"fmt"

	"depot-helpdesk/internal/models"
)

// Snapshot is the full persisted state: the requests document and the
// comments document.
type Snapshot struct {
	Requests []models.Request
	Comments models.CommentBuckets
}

// Clone returns a deep copy so callers can build the next state without
// touching the current one.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Requests: make([]models.Request, len(s.Requests)),
		Comments: s.Comments.Clone(),
	}
	for i, r := range s.Requests {
		out.Requests[i] = r.Clone()
	}
	return out
}

// Store loads and saves whole snapshots. Save must write both documents or
// report an error.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// ConcurrentModificationError means the persisted state changed after it
// was last loaded or saved by this process.
type ConcurrentModificationError struct {
	Path string
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("%s was modified by another writer since it was loaded", e.Path)
}
