package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evoprobe/evoprobe/internal/amf"
	"github.com/evoprobe/evoprobe/internal/catalog"
	"github.com/evoprobe/evoprobe/internal/model"
	"github.com/evoprobe/evoprobe/internal/testutil"
)

func TestRecompute_ProjectsResources(t *testing.T) {
	e, clk, _ := newTestEngine(t)

	e.ProcessPacket("castle.getCastleInfo", amf.Object(map[string]amf.Value{
		"cityId":    amf.Int(7),
		"resources": amf.Object(map[string]amf.Value{"gold": amf.Int(1000), "food": amf.Int(500)}),
		"rates":     amf.Object(map[string]amf.Value{"gold": amf.Double(3600), "food": amf.Double(7200)}),
	}), true)

	// Half an hour of accrual at 3600/h gold and 7200/h food.
	clk.Advance(30 * time.Minute)
	e.Recompute()

	c := e.GetCity(7)
	require.NotNil(t, c)
	assert.Equal(t, int64(1000), c.Resources.Gold, "stockpile itself is untouched")
	assert.Equal(t, int64(1000+1800), c.Projected.Gold)
	assert.Equal(t, int64(500+3600), c.Projected.Food)
}

func TestRecompute_SkipsStaleCities(t *testing.T) {
	e, clk, _ := newTestEngine(t)
	e.ProcessPacket("castle.getCastleInfo", amf.Object(map[string]amf.Value{
		"cityId":    amf.Int(1),
		"resources": amf.Object(map[string]amf.Value{"gold": amf.Int(100)}),
		"rates":     amf.Object(map[string]amf.Value{"gold": amf.Double(1000)}),
	}), true)

	// Beyond one hour the projection is meaningless and must not run.
	clk.Advance(90 * time.Minute)
	e.Recompute()

	c := e.GetCity(1)
	assert.Equal(t, int64(0), c.Projected.Gold)
}

func TestRecompute_MarchCountdown(t *testing.T) {
	e, clk, _ := newTestEngine(t)
	arrival := clk.Now().Add(10 * time.Minute)

	e.ProcessPacket("march.startMarch", amf.Object(map[string]amf.Value{
		"marchId":     amf.Int(5),
		"arrivalTime": amf.Double(float64(arrival.Unix())),
	}), false)

	m := e.GetMarch(5)
	require.NotNil(t, m)
	assert.Equal(t, 10*time.Minute, m.TimeRemaining)

	clk.Advance(4 * time.Minute)
	e.Recompute()
	assert.Equal(t, 6*time.Minute, e.GetMarch(5).TimeRemaining)

	// Past arrival the countdown clamps at zero, never negative.
	clk.Advance(10 * time.Minute)
	e.Recompute()
	assert.Equal(t, time.Duration(0), e.GetMarch(5).TimeRemaining)
}

func TestRecompute_ArrivedMarchRemovedAfterGrace(t *testing.T) {
	clk := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	e := New(catalog.NewMemory(), clk, Options{MarchGrace: 30 * time.Second})

	arrival := clk.Now().Add(time.Minute)
	e.ProcessPacket("march.startMarch", amf.Object(map[string]amf.Value{
		"marchId":     amf.Int(9),
		"arrivalTime": amf.Double(float64(arrival.Unix())),
	}), false)
	e.ProcessPacket("march.arrived", amf.Object(map[string]amf.Value{
		"marchId": amf.Int(9),
	}), true)

	// Arrived but inside the grace window: still visible.
	clk.Advance(10 * time.Second)
	e.Recompute()
	require.NotNil(t, e.GetMarch(9), "march must survive the grace window")
	require.Equal(t, model.MarchStatusArrived, e.GetMarch(9).Status)

	// A second pass after the grace delay removes it.
	clk.Advance(time.Minute)
	e.Recompute()
	assert.Nil(t, e.GetMarch(9))
}

func TestClearState_DuringRecompute(t *testing.T) {
	e, clk, _ := newTestEngine(t)
	for i := 0; i < 200; i++ {
		e.ProcessPacket("castle.getCastleInfo", castleInfo(int64(i+1), map[string]amf.Value{
			"gold": amf.Int(int32(i)),
		}), true)
		e.ProcessPacket("march.startMarch", amf.Object(map[string]amf.Value{
			"marchId":     amf.Int(int32(i + 1)),
			"arrivalTime": amf.Double(float64(clk.Now().Add(time.Hour).Unix())),
		}), false)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			e.Recompute()
		}
	}()

	e.ClearState()

	// Immediately after ClearState returns the graph is observably empty,
	// regardless of the recompute pass still running on the old graph.
	assert.Equal(t, 0, e.CityCount())
	assert.Equal(t, 0, e.MarchCount())
	assert.Empty(t, e.GetHistory())
	wg.Wait()
	assert.Equal(t, 0, e.CityCount())
}
