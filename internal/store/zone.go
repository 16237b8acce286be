package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/posecontrol/internal/zone"
)

// ZoneRecord is a persisted zone.
type ZoneRecord struct {
	ID        string    `json:"id"`
	Zone      zone.Zone `json:"zone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ZoneRepository stores the zone layout.
type ZoneRepository struct {
	db *sql.DB
}

// Zones returns the zone repository for this store.
func (s *Store) Zones() *ZoneRepository {
	return &ZoneRepository{db: s.db}
}

// Seed inserts the default zone for every role that has no row yet.
func (r *ZoneRepository) Seed() error {
	for _, z := range zone.DefaultZones() {
		_, err := r.db.Exec(
			`INSERT INTO zones (id, role, x_lower, x_upper, y_lower, y_upper, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(role) DO NOTHING`,
			uuid.NewString(), string(z.Role), z.XLower, z.XUpper, z.YLower, z.YUpper, time.Now(), time.Now(),
		)
		if err != nil {
			return fmt.Errorf("seed zone %s: %w", z.Role, err)
		}
	}
	return nil
}

// Get retrieves the zone for role.
func (r *ZoneRepository) Get(role zone.Role) (*ZoneRecord, error) {
	rec, err := scanZone(r.db.QueryRow(
		`SELECT id, role, x_lower, x_upper, y_lower, y_upper, created_at, updated_at
		 FROM zones WHERE role = ?`,
		string(role),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// List retrieves every stored zone ordered by role.
func (r *ZoneRepository) List() ([]*ZoneRecord, error) {
	rows, err := r.db.Query(
		`SELECT id, role, x_lower, x_upper, y_lower, y_upper, created_at, updated_at
		 FROM zones ORDER BY role`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*ZoneRecord
	for rows.Next() {
		rec, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Save validates z and inserts or replaces the row for its role.
func (r *ZoneRepository) Save(z zone.Zone) (*ZoneRecord, error) {
	if err := z.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	_, err := r.db.Exec(
		`INSERT INTO zones (id, role, x_lower, x_upper, y_lower, y_upper, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(role) DO UPDATE SET
			x_lower = excluded.x_lower,
			x_upper = excluded.x_upper,
			y_lower = excluded.y_lower,
			y_upper = excluded.y_upper,
			updated_at = excluded.updated_at`,
		uuid.NewString(), string(z.Role), z.XLower, z.XUpper, z.YLower, z.YUpper, now, now,
	)
	if err != nil {
		return nil, err
	}
	return r.Get(z.Role)
}

// Delete removes the zone for role. Layout falls back to the default for it.
func (r *ZoneRepository) Delete(role zone.Role) error {
	result, err := r.db.Exec(`DELETE FROM zones WHERE role = ?`, string(role))
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Layout builds a layout from the stored zones, using the default zone for
// any role without a row.
func (r *ZoneRepository) Layout() (zone.Layout, error) {
	records, err := r.List()
	if err != nil {
		return zone.Layout{}, err
	}

	layout := zone.DefaultLayout()
	for _, rec := range records {
		layout, err = layout.Replace(rec.Zone)
		if err != nil {
			return zone.Layout{}, fmt.Errorf("stored zone %s: %w", rec.Zone.Role, err)
		}
	}
	return layout, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanZone(row rowScanner) (*ZoneRecord, error) {
	rec := &ZoneRecord{}
	var role string
	err := row.Scan(
		&rec.ID, &role,
		&rec.Zone.XLower, &rec.Zone.XUpper, &rec.Zone.YLower, &rec.Zone.YUpper,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Zone.Role = zone.Role(role)
	return rec, nil
}
