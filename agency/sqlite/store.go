// Package sqlite provides a SQLite-backed tenant record store.
package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/tourcompanion/portal-server/agency"
	errs "github.com/tourcompanion/portal-server/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS creators (
    user_id       TEXT PRIMARY KEY,
    agency_name   TEXT,
    agency_logo   TEXT,
    contact_email TEXT
);
`

// Store persists creator records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ agency.CreatorRepo = (*Store)(nil)

// Open opens a SQLite creator store and ensures the schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite db")
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "ping sqlite db")
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "ensure schema")
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) GetByUserID(ctx context.Context, userID string) (*agency.CreatorRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	var name, logo, contact sql.NullString
	err := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT agency_name, agency_logo, contact_email FROM creators WHERE user_id = ?`,
		userID,
	).Scan(&name, &logo, &contact)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(errs.ErrNotFound, userID)
	}
	if err != nil {
		return nil, errors.Wrap(err, "query creator record")
	}

	return &agency.CreatorRecord{
		UserID:       userID,
		AgencyName:   nullablePtr(name),
		AgencyLogo:   nullablePtr(logo),
		ContactEmail: nullablePtr(contact),
	}, nil
}

func (s *Store) UpdateByUserID(ctx context.Context, userID string, fields agency.Partial) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("user id is required")
	}

	assignments := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if fields.AgencyName != nil {
		assignments = append(assignments, "agency_name = ?")
		args = append(args, *fields.AgencyName)
	}
	if fields.AgencyLogoPath != nil {
		assignments = append(assignments, "agency_logo = ?")
		args = append(args, *fields.AgencyLogoPath)
	}
	if fields.ContactEmail != nil {
		assignments = append(assignments, "contact_email = ?")
		args = append(args, *fields.ContactEmail)
	}
	if len(assignments) == 0 {
		return nil
	}
	args = append(args, userID)

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE creators SET `+strings.Join(assignments, ", ")+` WHERE user_id = ?`,
		args...,
	)
	if err != nil {
		return errors.Wrap(err, "update creator record")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if affected == 0 {
		return errors.Wrap(errs.ErrNotFound, userID)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, record *agency.CreatorRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record == nil || strings.TrimSpace(record.UserID) == "" {
		return errors.New("user id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO creators (user_id, agency_name, agency_logo, contact_email)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   agency_name   = excluded.agency_name,
		   agency_logo   = excluded.agency_logo,
		   contact_email = excluded.contact_email`,
		record.UserID,
		nullableArg(record.AgencyName),
		nullableArg(record.AgencyLogo),
		nullableArg(record.ContactEmail),
	)
	if err != nil {
		return errors.Wrap(err, "upsert creator record")
	}
	return nil
}

func nullablePtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullableArg(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
