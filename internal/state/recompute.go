package state

import (
	"context"
	"log/slog"
	"time"

	"github.com/evoprobe/evoprobe/internal/model"
)

// recomputeInterval is how often time-derived projections advance. The game
// server accrues production and moves marches continuously between polls;
// one second keeps the mirror close without burning CPU.
const recomputeInterval = time.Second

// Run drives the periodic recompute pass until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(recomputeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			e.Recompute()
		}
	}
}

// Recompute performs one projection pass: city resource accrual and march
// countdowns. It loads the collections pointer once, so a concurrent
// ClearState simply detaches the graph being recomputed.
func (e *Engine) Recompute() {
	cols := e.cols.Load()
	now := e.clk.Now()

	cols.cities.rangeAll(func(_ int64, ent *entry[*model.City]) bool {
		ent.with(func(c *model.City) {
			elapsed := now.Sub(c.LastUpdated)
			if elapsed > 0 && elapsed < time.Hour {
				c.Projected = c.Resources.Accrue(c.Rates, elapsed.Hours())
			}
		})
		return true
	})

	var removable []int64
	cols.marches.rangeAll(func(id int64, ent *entry[*model.March]) bool {
		ent.with(func(m *model.March) {
			if !m.ArrivalTime.IsZero() {
				m.TimeRemaining = max(0, m.ArrivalTime.Sub(now))
			}
			if m.Status == model.MarchStatusArrived && m.TimeRemaining == 0 && m.ArrivedAt.IsZero() {
				m.ArrivedAt = now
			}
			if m.Removable(now, e.grace) {
				removable = append(removable, id)
			}
		})
		return true
	})
	for _, id := range removable {
		cols.marches.delete(id)
		slog.Debug("removed arrived march", "marchId", id)
	}
}
