package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tourcompanion/portal-server/agency"
	"github.com/tourcompanion/portal-server/agency/sqlite"
	errs "github.com/tourcompanion/portal-server/internal/errors"
	"github.com/tourcompanion/portal-server/internal/utils"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "creators.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := sqlite.Open("  ")
	require.Error(t, err)
}

func TestUpsertGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &agency.CreatorRecord{
		UserID:       "user-1",
		AgencyName:   utils.Ptr("Acme Tours"),
		ContactEmail: utils.Ptr("hello@acme.com"),
	}))

	record, err := store.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "Acme Tours", utils.Value(record.AgencyName))
	require.Nil(t, record.AgencyLogo)
	require.Equal(t, "hello@acme.com", utils.Value(record.ContactEmail))
}

func TestGetUnknownUserReturnsNotFound(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetByUserID(context.Background(), "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpsertOverwritesExistingRecord(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &agency.CreatorRecord{
		UserID:     "user-1",
		AgencyName: utils.Ptr("Acme Tours"),
	}))
	require.NoError(t, store.Upsert(ctx, &agency.CreatorRecord{
		UserID:     "user-1",
		AgencyName: utils.Ptr("Acme Travel"),
	}))

	record, err := store.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "Acme Travel", utils.Value(record.AgencyName))
}

func TestUpdateByUserIDPartial(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, &agency.CreatorRecord{
		UserID:       "user-1",
		AgencyName:   utils.Ptr("Acme Tours"),
		ContactEmail: utils.Ptr("hello@acme.com"),
	}))

	require.NoError(t, store.UpdateByUserID(ctx, "user-1", agency.Partial{
		ContactEmail: utils.Ptr("bookings@acme.com"),
	}))

	record, err := store.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "Acme Tours", utils.Value(record.AgencyName))
	require.Equal(t, "bookings@acme.com", utils.Value(record.ContactEmail))
}

func TestUpdateUnknownUserReturnsNotFound(t *testing.T) {
	store := openTestStore(t)

	err := store.UpdateByUserID(context.Background(), "missing", agency.Partial{
		AgencyName: utils.Ptr("Acme Tours"),
	})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateWithNoFieldsIsNoOp(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.UpdateByUserID(context.Background(), "user-1", agency.Partial{}))
}
