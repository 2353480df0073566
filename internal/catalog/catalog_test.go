package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_RecordObservation(t *testing.T) {
	m := NewMemory()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	m.RecordObservation("castle.getCastleInfo", DirectionResponse, []string{"cityId"}, t0)
	m.RecordObservation("castle.getCastleInfo", DirectionResponse, []string{"cityId", "resources"}, t0.Add(time.Minute))

	d := m.Get("castle.getCastleInfo")
	require.NotNil(t, d)
	assert.Equal(t, int64(2), d.ObservedCount)
	assert.Equal(t, t0, d.FirstSeen)
	assert.Equal(t, t0.Add(time.Minute), d.LastSeen)
	assert.Equal(t, []string{"cityId", "resources"}, d.KnownParameters)
}

func TestMemory_GetUnknown(t *testing.T) {
	m := NewMemory()
	assert.Nil(t, m.Get("no.suchAction"))
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	m := NewMemory()
	m.RecordObservation("hero.info", DirectionResponse, []string{"heroId"}, time.Now())

	d := m.Get("hero.info")
	d.KnownParameters[0] = "mutated"
	assert.Equal(t, []string{"heroId"}, m.Get("hero.info").KnownParameters)
}

func TestMemory_Names(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.RecordObservation("troop.produce", DirectionRequest, nil, now)
	m.RecordObservation("army.getArmies", DirectionResponse, nil, now)
	assert.Equal(t, []string{"army.getArmies", "troop.produce"}, m.Names())
}

func TestMemory_All(t *testing.T) {
	m := NewMemory()
	now := time.Now()
	m.RecordObservation("march.recall", DirectionRequest, nil, now)
	m.RecordObservation("castle.getResources", DirectionResponse, nil, now)

	all := m.All()
	require.Len(t, all, 2)
	assert.Equal(t, "castle.getResources", all[0].Name)
	assert.Equal(t, "march.recall", all[1].Name)

	// Copies, not live entries.
	all[0].ObservedCount = 99
	assert.Equal(t, int64(1), m.Get("castle.getResources").ObservedCount)
}

func TestDefaults(t *testing.T) {
	defaults := Defaults()
	require.NotEmpty(t, defaults)

	seen := make(map[string]bool)
	for _, d := range defaults {
		assert.False(t, seen[d.Name], "duplicate default %q", d.Name)
		seen[d.Name] = true
	}
	assert.True(t, seen["castle.getCastleInfo"])
	assert.True(t, seen["march.startMarch"])
}

func TestMemory_Seed(t *testing.T) {
	m := NewMemory()
	m.Seed([]*Descriptor{
		{Name: "castle.getCastleInfo", ObservedCount: 41},
	})
	d := m.Get("castle.getCastleInfo")
	require.NotNil(t, d)
	assert.Equal(t, int64(41), d.ObservedCount)
}
