package database

import (
	"context"
	"path/filepath"
	"testing"

	"depot-helpdesk/internal/models"
	"depot-helpdesk/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Connect(DriverSQLite, filepath.Join(t.TempDir(), "helpdesk.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewStore(db)
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect("postgres", "host=localhost")
	assert.Error(t, err)

	_, err = Connect(DriverSQLite, "")
	assert.Error(t, err)
}

func TestSQLStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	empty, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Requests)

	snap := store.Snapshot{
		Requests: []models.Request{
			{Type: models.TypePurchase, OrderRef: "PO-1", Status: models.StatusPending,
				Description: []string{"bolt", "nut"}, Quantity: []models.Quantity{models.Numeric(2), models.RawText("a box")},
				PartnerName: "Acme", Encargado: "Luz"},
			{Type: models.TypeSales, OrderRef: "SO-2", Status: models.StatusConfirmed,
				Description: []string{"gadget"}, Quantity: []models.Quantity{models.Numeric(1)},
				PartnerName: "Beta", Encargado: "Tito"},
		},
		Comments: models.CommentBuckets{
			"0": {{Author: "Luz", Text: "first"}, {Author: "Tito", Text: "second", When: "2025-03-01T10:00:00Z"}},
		},
	}
	require.NoError(t, s.Save(ctx, snap))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Requests, 2)
	assert.Equal(t, "PO-1", got.Requests[0].OrderRef)
	assert.Equal(t, "Beta", got.Requests[1].PartnerName)
	assert.Equal(t, "a box", got.Requests[0].Quantity[1].String())
	assert.Equal(t, snap.Comments["0"], got.Comments["0"])
	assert.Empty(t, got.Comments["1"])

	// a second save replaces everything
	snap.Requests = snap.Requests[1:]
	snap.Comments = models.CommentBuckets{"0": {}}
	require.NoError(t, s.Save(ctx, snap))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Requests, 1)
	assert.Equal(t, "SO-2", got.Requests[0].OrderRef)
	assert.Empty(t, got.Comments["0"])
}
