package db

import (
	"context"
	"fmt"

	"github.com/evoprobe/evoprobe/internal/catalog"
)

// ActionRepository reads and writes catalog descriptors.
type ActionRepository struct {
	db *DB
}

// NewActionRepository creates a repository over db.
func NewActionRepository(db *DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// LoadAll returns every persisted descriptor, for seeding the in-memory
// catalog at startup.
func (r *ActionRepository) LoadAll(ctx context.Context) ([]*catalog.Descriptor, error) {
	rows, err := r.db.pool.Query(ctx,
		`SELECT name, known_parameters, direction, response_shape, observed_count, first_seen, last_seen
		 FROM actions`)
	if err != nil {
		return nil, fmt.Errorf("querying actions: %w", err)
	}
	defer rows.Close()

	var out []*catalog.Descriptor
	for rows.Next() {
		var d catalog.Descriptor
		var dir string
		if err := rows.Scan(&d.Name, &d.KnownParameters, &dir, &d.ResponseShape,
			&d.ObservedCount, &d.FirstSeen, &d.LastSeen); err != nil {
			return nil, fmt.Errorf("scanning action row: %w", err)
		}
		d.Direction = catalog.Direction(dir)
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating action rows: %w", err)
	}
	return out, nil
}

// Save upserts one descriptor.
func (r *ActionRepository) Save(ctx context.Context, d *catalog.Descriptor) error {
	params := d.KnownParameters
	if params == nil {
		params = []string{} // column is NOT NULL
	}
	_, err := r.db.pool.Exec(ctx,
		`INSERT INTO actions (name, known_parameters, direction, response_shape, observed_count, first_seen, last_seen)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (name) DO UPDATE SET
		   known_parameters = EXCLUDED.known_parameters,
		   direction = EXCLUDED.direction,
		   response_shape = EXCLUDED.response_shape,
		   observed_count = EXCLUDED.observed_count,
		   last_seen = EXCLUDED.last_seen`,
		d.Name, params, string(d.Direction), d.ResponseShape,
		d.ObservedCount, d.FirstSeen, d.LastSeen,
	)
	if err != nil {
		return fmt.Errorf("saving action %q: %w", d.Name, err)
	}
	return nil
}

// SaveAll upserts the given descriptors, typically the whole in-memory
// catalog at shutdown.
func (r *ActionRepository) SaveAll(ctx context.Context, descriptors []*catalog.Descriptor) error {
	for _, d := range descriptors {
		if err := r.Save(ctx, d); err != nil {
			return err
		}
	}
	return nil
}
