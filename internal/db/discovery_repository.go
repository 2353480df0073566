package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/evoprobe/evoprobe/internal/fuzz"
)

// DiscoveryRepository persists exploration discoveries across runs.
type DiscoveryRepository struct {
	db *DB
}

// NewDiscoveryRepository creates a repository over db.
func NewDiscoveryRepository(db *DB) *DiscoveryRepository {
	return &DiscoveryRepository{db: db}
}

// Save inserts one discovery; a name seen in an earlier run keeps its
// original row (first wins across runs too).
func (r *DiscoveryRepository) Save(ctx context.Context, d *fuzz.Discovery) error {
	params, err := json.Marshal(d.Parameters)
	if err != nil {
		return fmt.Errorf("marshaling parameters for %q: %w", d.ActionName, err)
	}
	sample := d.SampleResponse
	if sample == nil {
		sample = []byte{} // column is NOT NULL
	}
	_, err = r.db.pool.Exec(ctx,
		`INSERT INTO discoveries (action_name, parameters, classification, discovered_at, sample_response)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (action_name) DO NOTHING`,
		d.ActionName, params, string(d.Classification), d.DiscoveredAt, sample,
	)
	if err != nil {
		return fmt.Errorf("saving discovery %q: %w", d.ActionName, err)
	}
	return nil
}

// SaveAll inserts every discovery from a completed run.
func (r *DiscoveryRepository) SaveAll(ctx context.Context, discoveries []*fuzz.Discovery) error {
	for _, d := range discoveries {
		if err := r.Save(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// List returns all persisted discoveries ordered by discovery time.
func (r *DiscoveryRepository) List(ctx context.Context) ([]*fuzz.Discovery, error) {
	rows, err := r.db.pool.Query(ctx,
		`SELECT action_name, parameters, classification, discovered_at, sample_response
		 FROM discoveries ORDER BY discovered_at`)
	if err != nil {
		return nil, fmt.Errorf("querying discoveries: %w", err)
	}
	defer rows.Close()

	var out []*fuzz.Discovery
	for rows.Next() {
		var d fuzz.Discovery
		var params []byte
		var cls string
		if err := rows.Scan(&d.ActionName, &params, &cls, &d.DiscoveredAt, &d.SampleResponse); err != nil {
			return nil, fmt.Errorf("scanning discovery row: %w", err)
		}
		if err := json.Unmarshal(params, &d.Parameters); err != nil {
			return nil, fmt.Errorf("unmarshaling parameters for %q: %w", d.ActionName, err)
		}
		d.Classification = fuzz.Classification(cls)
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating discovery rows: %w", err)
	}
	return out, nil
}
