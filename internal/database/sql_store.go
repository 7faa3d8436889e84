package database

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"

	"depot-helpdesk/internal/models"
	"depot-helpdesk/internal/store"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// requestRow stores one request document at its position.
type requestRow struct {
	ID       uint   `gorm:"primaryKey"`
	Position int    `gorm:"uniqueIndex;not null"`
	Document string `gorm:"type:text;not null"`
}

func (requestRow) TableName() string { return "requests" }

// commentRow is one comment; Bucket is the request index key.
type commentRow struct {
	ID     uint   `gorm:"primaryKey"`
	Bucket string `gorm:"size:32;index;not null"`
	Seq    int    `gorm:"not null"`
	Author string `gorm:"size:100"`
	Text   string `gorm:"type:text"`
	When   string `gorm:"column:written_at;size:40"`
}

func (commentRow) TableName() string { return "comments" }

// Store is a store.Store over two tables. Save replaces both inside one
// transaction so requests and comments cannot drift apart.
type Store struct {
	db *gorm.DB
}

// NewStore wraps a connected database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Load reads every request and comment.
func (s *Store) Load(ctx context.Context) (store.Snapshot, error) {
	var reqRows []requestRow
	if err := s.db.WithContext(ctx).Order("position asc").Find(&reqRows).Error; err != nil {
		return store.Snapshot{}, errors.Wrap(err, "load requests")
	}
	var comRows []commentRow
	if err := s.db.WithContext(ctx).Order("bucket asc, seq asc").Find(&comRows).Error; err != nil {
		return store.Snapshot{}, errors.Wrap(err, "load comments")
	}

	snap := store.Snapshot{
		Requests: make([]models.Request, 0, len(reqRows)),
		Comments: models.CommentBuckets{},
	}
	for _, row := range reqRows {
		var r models.Request
		if err := json.Unmarshal([]byte(row.Document), &r); err != nil {
			return store.Snapshot{}, errors.Wrapf(err, "decode request at position %d", row.Position)
		}
		snap.Requests = append(snap.Requests, r)
	}
	for _, row := range comRows {
		snap.Comments[row.Bucket] = append(snap.Comments[row.Bucket], models.Comment{
			Author: row.Author,
			Text:   row.Text,
			When:   row.When,
		})
	}
	// Each request has a thread, even an empty one.
	for i := range snap.Requests {
		key := strconv.Itoa(i)
		if _, ok := snap.Comments[key]; !ok {
			snap.Comments[key] = []models.Comment{}
		}
	}
	return snap, nil
}

// Save replaces all rows with the snapshot.
func (s *Store) Save(ctx context.Context, snap store.Snapshot) error {
	reqRows := make([]requestRow, 0, len(snap.Requests))
	for i, r := range snap.Requests {
		doc, err := json.Marshal(r)
		if err != nil {
			return errors.Wrapf(err, "encode request %d", i)
		}
		reqRows = append(reqRows, requestRow{Position: i, Document: string(doc)})
	}

	keys := make([]string, 0, len(snap.Comments))
	for k := range snap.Comments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var comRows []commentRow
	for _, k := range keys {
		for seq, c := range snap.Comments[k] {
			comRows = append(comRows, commentRow{Bucket: k, Seq: seq, Author: c.Author, Text: c.Text, When: c.When})
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&commentRow{}).Error; err != nil {
			return errors.Wrap(err, "clear comments")
		}
		if err := all.Delete(&requestRow{}).Error; err != nil {
			return errors.Wrap(err, "clear requests")
		}
		if len(reqRows) > 0 {
			if err := tx.CreateInBatches(reqRows, 100).Error; err != nil {
				return errors.Wrap(err, "insert requests")
			}
		}
		if len(comRows) > 0 {
			if err := tx.CreateInBatches(comRows, 100).Error; err != nil {
				return errors.Wrap(err, "insert comments")
			}
		}
		return nil
	})
}
