package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"depot-helpdesk/internal/models"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// JSONStore keeps requests and comments in two JSON files that are read
// wholesale and rewritten wholesale.
type JSONStore struct {
	mu           sync.Mutex
	requestsPath string
	commentsPath string

	// Content hashes as of the last Load/Save, used to detect other writers.
	seen  map[string][sha256.Size]byte
	known bool
}

// NewJSONStore creates a store over the two document paths. Missing files
// load as empty documents.
func NewJSONStore(requestsPath, commentsPath string) *JSONStore {
	return &JSONStore{
		requestsPath: requestsPath,
		commentsPath: commentsPath,
		seen:         make(map[string][sha256.Size]byte, 2),
	}
}

// Load reads both documents.
func (s *JSONStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Requests: []models.Request{}, Comments: models.CommentBuckets{}}

	reqData, err := readDocument(s.requestsPath)
	if err != nil {
		return Snapshot{}, err
	}
	if len(bytes.TrimSpace(reqData)) > 0 {
		if err := json.Unmarshal(reqData, &snap.Requests); err != nil {
			return Snapshot{}, errors.Wrapf(err, "decode %s", s.requestsPath)
		}
	}

	comData, err := readDocument(s.commentsPath)
	if err != nil {
		return Snapshot{}, err
	}
	if len(bytes.TrimSpace(comData)) > 0 {
		if err := json.Unmarshal(comData, &snap.Comments); err != nil {
			return Snapshot{}, errors.Wrapf(err, "decode %s", s.commentsPath)
		}
	}
	if snap.Requests == nil {
		snap.Requests = []models.Request{}
	}
	if snap.Comments == nil {
		snap.Comments = models.CommentBuckets{}
	}

	s.seen[s.requestsPath] = sha256.Sum256(reqData)
	s.seen[s.commentsPath] = sha256.Sum256(comData)
	s.known = true

	log.Debug().
		Str("requests", s.requestsPath).
		Int("count", len(snap.Requests)).
		Msg("Loaded request documents")
	return snap, nil
}

// Save rewrites both documents. Both are written to temp files first and
// only then renamed into place. If either file changed on disk since the
// last Load/Save, nothing is written and a ConcurrentModificationError is
// returned.
func (s *JSONStore) Save(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if s.known {
		for _, path := range []string{s.requestsPath, s.commentsPath} {
			current, err := readDocument(path)
			if err != nil {
				return err
			}
			if sha256.Sum256(current) != s.seen[path] {
				return &ConcurrentModificationError{Path: path}
			}
		}
	}

	requests := snap.Requests
	if requests == nil {
		requests = []models.Request{}
	}
	comments := snap.Comments
	if comments == nil {
		comments = models.CommentBuckets{}
	}

	reqData, err := json.MarshalIndent(requests, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode requests")
	}
	comData, err := json.MarshalIndent(comments, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode comments")
	}

	reqTmp, err := writeTemp(s.requestsPath, reqData)
	if err != nil {
		return err
	}
	comTmp, err := writeTemp(s.commentsPath, comData)
	if err != nil {
		os.Remove(reqTmp)
		return err
	}

	if err := os.Rename(reqTmp, s.requestsPath); err != nil {
		os.Remove(reqTmp)
		os.Remove(comTmp)
		return errors.Wrapf(err, "replace %s", s.requestsPath)
	}
	s.seen[s.requestsPath] = sha256.Sum256(reqData)
	// A failure here leaves the two files from different commits. The hashes
	// still match disk, so the next Save rewrites both from committed state.
	if err := os.Rename(comTmp, s.commentsPath); err != nil {
		os.Remove(comTmp)
		log.Error().Err(err).
			Str("requests", s.requestsPath).
			Str("comments", s.commentsPath).
			Msg("Torn write: requests replaced but comments were not")
		return errors.Wrapf(err, "replace %s after %s was written", s.commentsPath, s.requestsPath)
	}
	s.seen[s.commentsPath] = sha256.Sum256(comData)
	s.known = true
	return nil
}

// readDocument returns the file content, or nil if it does not exist.
func readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return data, nil
}

func writeTemp(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create %s", dir)
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", errors.Wrapf(err, "create temp file for %s", path)
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", errors.Wrapf(err, "write %s", name)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return "", errors.Wrapf(err, "sync %s", name)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", errors.Wrapf(err, "close %s", name)
	}
	return name, nil
}
