package repofakes

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/tourcompanion/portal-server/agency"
	errs "github.com/tourcompanion/portal-server/internal/errors"
)

var _ agency.CreatorRepo = (*FakeCreatorRepo)(nil)

// FakeCreatorRepo is an in-memory tenant record store for tests.
// Setting FailNext makes every subsequent call fail, for exercising
// the fallback paths.
type FakeCreatorRepo struct {
	mu       sync.RWMutex
	records  map[string]*agency.CreatorRecord
	FailNext error

	getCalls    int
	updateCalls int
}

func NewFakeCreatorRepo() *FakeCreatorRepo {
	return &FakeCreatorRepo{records: make(map[string]*agency.CreatorRecord)}
}

func (r *FakeCreatorRepo) GetByUserID(ctx context.Context, userID string) (*agency.CreatorRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.getCalls++
	if r.FailNext != nil {
		return nil, r.FailNext
	}
	record, ok := r.records[userID]
	if !ok {
		return nil, errors.Wrap(errs.ErrNotFound, userID)
	}
	copied := *record
	return &copied, nil
}

func (r *FakeCreatorRepo) UpdateByUserID(ctx context.Context, userID string, fields agency.Partial) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.updateCalls++
	if r.FailNext != nil {
		return r.FailNext
	}
	record, ok := r.records[userID]
	if !ok {
		return errors.Wrap(errs.ErrNotFound, userID)
	}
	if fields.AgencyName != nil {
		record.AgencyName = fields.AgencyName
	}
	if fields.AgencyLogoPath != nil {
		record.AgencyLogo = fields.AgencyLogoPath
	}
	if fields.ContactEmail != nil {
		record.ContactEmail = fields.ContactEmail
	}
	return nil
}

func (r *FakeCreatorRepo) Upsert(ctx context.Context, record *agency.CreatorRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailNext != nil {
		return r.FailNext
	}
	copied := *record
	r.records[record.UserID] = &copied
	return nil
}

func (r *FakeCreatorRepo) GetCalls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getCalls
}

func (r *FakeCreatorRepo) UpdateCalls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.updateCalls
}
