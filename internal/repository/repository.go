package repository

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"depot-helpdesk/internal/models"
	"depot-helpdesk/internal/store"

	"github.com/rs/zerolog/log"
)

// DefaultAuthor signs comments submitted without a name.
const DefaultAuthor = "User"

// Repository is the in-memory copy of the store. Each mutation is built on
// a copy, persisted, and only then made visible.
type Repository struct {
	mu    sync.Mutex
	store store.Store
	state store.Snapshot
	now   func() time.Time
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides time.Now, used for default order dates and comment
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New loads the store and returns a repository over it.
func New(ctx context.Context, st store.Store, opts ...Option) (*Repository, error) {
	r := &Repository{store: st, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.Reload(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload replaces the in-memory state with what the store holds. Mutations
// wait for it, so a write committed before Reload is never swapped out.
func (r *Repository) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.store.Load(ctx)
	if err != nil {
		return &PersistenceError{Op: "reload", Err: err}
	}
	if snap.Comments == nil {
		snap.Comments = models.CommentBuckets{}
	}
	r.state = snap
	return nil
}

// List returns the requests in stored order.
func (r *Repository) List() []models.Request {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Request, len(r.state.Requests))
	for i, req := range r.state.Requests {
		out[i] = req.Clone()
	}
	return out
}

// Len is the number of requests.
func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.Requests)
}

// Get returns the request at index.
func (r *Repository) Get(index int) (models.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndex(index); err != nil {
		return models.Request{}, err
	}
	return r.state.Requests[index].Clone(), nil
}

// Comments returns the thread of the request at index, oldest first.
func (r *Repository) Comments(index int) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndex(index); err != nil {
		return nil, err
	}
	return append([]models.Comment{}, r.state.Comments[bucketKey(index)]...), nil
}

// Add validates the draft, appends it with an empty comment thread and
// persists. The returned index is durable once Add returns nil.
func (r *Repository) Add(ctx context.Context, draft models.RequestDraft) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req, err := normalizeDraft(draft, r.now())
	if err != nil {
		return 0, err
	}

	next := r.state.Clone()
	index := len(next.Requests)
	next.Requests = append(next.Requests, req)
	next.Comments[bucketKey(index)] = []models.Comment{}

	if err := r.commit(ctx, "add", next); err != nil {
		return 0, err
	}
	log.Info().Int("index", index).Str("type", string(req.Type)).Msg("Request added")
	return index, nil
}

// Update merges the non-nil fields of patch into the request at index.
func (r *Repository) Update(ctx context.Context, index int, patch models.RequestPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndex(index); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return nil
	}

	updated, err := applyPatch(r.state.Requests[index], patch)
	if err != nil {
		return err
	}

	next := r.state.Clone()
	next.Requests[index] = updated
	if err := r.commit(ctx, "update", next); err != nil {
		return err
	}
	log.Info().Int("index", index).Msg("Request updated")
	return nil
}

// Delete removes the request at index, drops its comment thread and moves
// the threads of every later request down by one.
func (r *Repository) Delete(ctx context.Context, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndex(index); err != nil {
		return err
	}

	next := r.state.Clone()
	next.Requests = append(next.Requests[:index], next.Requests[index+1:]...)
	next.Comments = shiftBuckets(next.Comments, index)

	if err := r.commit(ctx, "delete", next); err != nil {
		return err
	}
	log.Info().Int("index", index).Msg("Request deleted")
	return nil
}

// AddComment appends a comment to the thread of the request at index.
// Blank text is ignored. A missing thread is created.
func (r *Repository) AddComment(ctx context.Context, index int, author, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = DefaultAuthor
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkIndex(index); err != nil {
		return err
	}

	next := r.state.Clone()
	key := bucketKey(index)
	next.Comments[key] = append(next.Comments[key], models.Comment{
		Author: author,
		Text:   text,
		When:   r.now().UTC().Format(time.RFC3339),
	})

	if err := r.commit(ctx, "add comment", next); err != nil {
		return err
	}
	log.Info().Int("index", index).Str("author", author).Msg("Comment added")
	return nil
}

func (r *Repository) commit(ctx context.Context, op string, next store.Snapshot) error {
	if err := r.store.Save(ctx, next); err != nil {
		log.Error().Err(err).Str("op", op).Msg("Failed to persist request documents")
		return &PersistenceError{Op: op, Err: err}
	}
	r.state = next
	return nil
}

func (r *Repository) checkIndex(index int) error {
	if index < 0 || index >= len(r.state.Requests) {
		return &NotFoundError{Index: index, Len: len(r.state.Requests)}
	}
	return nil
}

func bucketKey(index int) string {
	return strconv.Itoa(index)
}

// shiftBuckets re-keys comment threads after the request at removed was
// deleted. Keys that are not indices are kept as they are.
func shiftBuckets(buckets models.CommentBuckets, removed int) models.CommentBuckets {
	out := make(models.CommentBuckets, len(buckets))
	for k, thread := range buckets {
		i, err := strconv.Atoi(k)
		switch {
		case err != nil || i < removed:
			out[k] = thread
		case i == removed:
			// dropped with its request
		default:
			out[bucketKey(i-1)] = thread
		}
	}
	return out
}
