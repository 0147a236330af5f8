package agency_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/tourcompanion/portal-server/agency"
	"github.com/tourcompanion/portal-server/agency/repofakes"
	"github.com/tourcompanion/portal-server/backend"
	"github.com/tourcompanion/portal-server/internal/utils"
)

func creatorUser() *backend.User {
	return &backend.User{ID: "user-1", Email: "owner@acme.com", Role: "authenticated"}
}

// slowRepo delays every lookup so the load timeout can win the race.
type slowRepo struct {
	agency.CreatorRepo
	delay time.Duration
}

func (r *slowRepo) GetByUserID(ctx context.Context, userID string) (*agency.CreatorRecord, error) {
	timer := time.NewTimer(r.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return r.CreatorRepo.GetByUserID(ctx, userID)
}

func TestLoadPublicPortalSkipsBackend(t *testing.T) {
	repo := repofakes.NewFakeCreatorRepo()
	store := agency.NewStore(repo, false)

	settings := store.Load(context.Background(), true, creatorUser())

	require.Equal(t, agency.PublicPortalDefaults(), settings)
	require.Zero(t, repo.GetCalls())
}

func TestLoadOfflineServesDemoBranding(t *testing.T) {
	repo := repofakes.NewFakeCreatorRepo()
	store := agency.NewStore(repo, true)

	settings := store.Load(context.Background(), false, creatorUser())

	require.Equal(t, agency.DemoSettings(), settings)
	require.Zero(t, repo.GetCalls())
}

func TestLoadSignedOutServesDefaults(t *testing.T) {
	store := agency.NewStore(repofakes.NewFakeCreatorRepo(), false)

	settings := store.Load(context.Background(), false, nil)

	require.Equal(t, agency.Defaults(), settings)
}

func TestLoadFillsMissingFieldsPerField(t *testing.T) {
	repo := repofakes.NewFakeCreatorRepo()
	require.NoError(t, repo.Upsert(context.Background(), &agency.CreatorRecord{
		UserID:       "user-1",
		AgencyName:   utils.Ptr("Acme Tours"),
		ContactEmail: utils.Ptr("hello@acme.com"),
	}))
	store := agency.NewStore(repo, false)

	settings := store.Load(context.Background(), false, creatorUser())

	require.Equal(t, "Acme Tours", settings.AgencyName)
	require.Equal(t, agency.DefaultLogoPath, settings.AgencyLogoPath)
	require.Equal(t, "hello@acme.com", settings.ContactEmail)
}

func TestLoadEmptyFieldsFallBack(t *testing.T) {
	repo := repofakes.NewFakeCreatorRepo()
	require.NoError(t, repo.Upsert(context.Background(), &agency.CreatorRecord{
		UserID:       "user-1",
		AgencyName:   utils.Ptr(""),
		AgencyLogo:   utils.Ptr(""),
		ContactEmail: utils.Ptr(""),
	}))
	store := agency.NewStore(repo, false)

	settings := store.Load(context.Background(), false, creatorUser())

	require.Equal(t, "Your Agency", settings.AgencyName)
	require.Equal(t, agency.DefaultLogoPath, settings.AgencyLogoPath)
	require.Equal(t, "owner@acme.com", settings.ContactEmail)
}

func TestLoadMissingRecordSeedsUserContact(t *testing.T) {
	store := agency.NewStore(repofakes.NewFakeCreatorRepo(), false)

	settings := store.Load(context.Background(), false, creatorUser())

	want := agency.Defaults()
	want.ContactEmail = "owner@acme.com"
	require.Equal(t, want, settings)
}

func TestLoadLookupFailureServesDefaults(t *testing.T) {
	repo := repofakes.NewFakeCreatorRepo()
	repo.FailNext = errors.New("connection refused")
	store := agency.NewStore(repo, false)

	settings := store.Load(context.Background(), false, creatorUser())

	want := agency.Defaults()
	want.ContactEmail = "owner@acme.com"
	require.Equal(t, want, settings)
}

func TestLoadTimeoutServesDefaults(t *testing.T) {
	repo := &slowRepo{CreatorRepo: repofakes.NewFakeCreatorRepo(), delay: 200 * time.Millisecond}
	store := agency.NewStore(repo, false, agency.WithLoadTimeout(20*time.Millisecond))

	settings := store.Load(context.Background(), false, creatorUser())

	require.Equal(t, agency.Defaults(), settings)
}

func TestLoadResultIsCachedForTheSession(t *testing.T) {
	repo := repofakes.NewFakeCreatorRepo()
	require.NoError(t, repo.Upsert(context.Background(), &agency.CreatorRecord{
		UserID:     "user-1",
		AgencyName: utils.Ptr("Acme Tours"),
	}))
	store := agency.NewStore(repo, false)

	first := store.Load(context.Background(), false, creatorUser())
	second := store.Load(context.Background(), false, creatorUser())

	require.Equal(t, first, second)
	require.Equal(t, 1, repo.GetCalls())
}

func TestUpdateAppliesLocallyAndPersists(t *testing.T) {
	repo := repofakes.NewFakeCreatorRepo()
	require.NoError(t, repo.Upsert(context.Background(), &agency.CreatorRecord{
		UserID:     "user-1",
		AgencyName: utils.Ptr("Acme Tours"),
	}))
	store := agency.NewStore(repo, false)
	store.Load(context.Background(), false, creatorUser())

	applied := store.Update(context.Background(), "user-1", agency.Partial{
		AgencyName:   utils.Ptr("Acme Tours & Travel"),
		ContactEmail: utils.Ptr("bookings@acme.com"),
	})

	require.Equal(t, "Acme Tours & Travel", applied.AgencyName)
	require.Equal(t, "bookings@acme.com", applied.ContactEmail)
	require.Equal(t, applied, store.Settings())

	record, err := repo.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "Acme Tours & Travel", utils.Value(record.AgencyName))
	require.Equal(t, "bookings@acme.com", utils.Value(record.ContactEmail))
}

func TestUpdateIsIdempotent(t *testing.T) {
	repo := repofakes.NewFakeCreatorRepo()
	require.NoError(t, repo.Upsert(context.Background(), &agency.CreatorRecord{UserID: "user-1"}))
	store := agency.NewStore(repo, false)
	store.Load(context.Background(), false, creatorUser())

	partial := agency.Partial{AgencyName: utils.Ptr("Acme Tours")}
	first := store.Update(context.Background(), "user-1", partial)
	second := store.Update(context.Background(), "user-1", partial)

	require.Equal(t, first, second)
}

func TestUpdatePersistFailureKeepsLocalCopy(t *testing.T) {
	repo := repofakes.NewFakeCreatorRepo()
	store := agency.NewStore(repo, false)
	store.Load(context.Background(), false, creatorUser())

	repo.FailNext = errors.New("write refused")
	applied := store.Update(context.Background(), "user-1", agency.Partial{
		AgencyName: utils.Ptr("Acme Tours"),
	})

	require.Equal(t, "Acme Tours", applied.AgencyName)
	require.Equal(t, "Acme Tours", store.Settings().AgencyName)
}

func TestUpdateOfflineSkipsPersistence(t *testing.T) {
	repo := repofakes.NewFakeCreatorRepo()
	store := agency.NewStore(repo, true)
	store.Load(context.Background(), false, creatorUser())

	applied := store.Update(context.Background(), "user-1", agency.Partial{
		AgencyName: utils.Ptr("My Demo Agency"),
	})

	require.Equal(t, "My Demo Agency", applied.AgencyName)
	require.Zero(t, repo.UpdateCalls())
}
