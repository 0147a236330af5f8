package agency

import "context"

// CreatorRecord is the tenant record as stored: nil columns mean the
// creator never set that field and readers fall back per field.
type CreatorRecord struct {
	UserID       string
	AgencyName   *string
	AgencyLogo   *string
	ContactEmail *string
}

// CreatorRepo is the tenant record store. GetByUserID returns
// errs.ErrNotFound when no record exists for the user.
type CreatorRepo interface {
	GetByUserID(ctx context.Context, userID string) (*CreatorRecord, error)
	UpdateByUserID(ctx context.Context, userID string, fields Partial) error
	Upsert(ctx context.Context, record *CreatorRecord) error
}
