package integration

import (
	"time"

	"github.com/evoprobe/evoprobe/internal/catalog"
	"github.com/evoprobe/evoprobe/internal/db"
	"github.com/evoprobe/evoprobe/internal/fuzz"
)

// TestActionRepository_RoundTrip проверяет сохранение и загрузку каталога действий.
func (s *IntegrationSuite) TestActionRepository_RoundTrip() {
	repo := db.NewActionRepository(s.db)

	seen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	in := []*catalog.Descriptor{
		{
			Name:            "castle.getCastleInfo",
			KnownParameters: []string{"cityId"},
			Direction:       catalog.DirectionRequest,
			ResponseShape:   "object",
			ObservedCount:   7,
			FirstSeen:       seen,
			LastSeen:        seen.Add(time.Hour),
		},
		{
			Name:      "hero.getHeroList",
			Direction: catalog.DirectionResponse,
			FirstSeen: seen,
			LastSeen:  seen,
		},
	}

	s.Require().NoError(repo.SaveAll(s.ctx, in))

	out, err := repo.LoadAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(out, 2)

	byName := make(map[string]*catalog.Descriptor, len(out))
	for _, d := range out {
		byName[d.Name] = d
	}

	castle := byName["castle.getCastleInfo"]
	s.Require().NotNil(castle)
	s.Equal([]string{"cityId"}, castle.KnownParameters)
	s.Equal(catalog.DirectionRequest, castle.Direction)
	s.Equal("object", castle.ResponseShape)
	s.Equal(int64(7), castle.ObservedCount)
	s.True(castle.FirstSeen.Equal(seen))
	s.True(castle.LastSeen.Equal(seen.Add(time.Hour)))

	s.Require().NotNil(byName["hero.getHeroList"])
}

// TestActionRepository_Upsert проверяет, что повторный Save обновляет счётчики,
// но сохраняет first_seen.
func (s *IntegrationSuite) TestActionRepository_Upsert() {
	repo := db.NewActionRepository(s.db)

	seen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := &catalog.Descriptor{
		Name:          "march.startMarch",
		Direction:     catalog.DirectionRequest,
		ObservedCount: 1,
		FirstSeen:     seen,
		LastSeen:      seen,
	}
	s.Require().NoError(repo.Save(s.ctx, d))

	d.ObservedCount = 5
	d.KnownParameters = []string{"marchId", "targetX", "targetY"}
	d.LastSeen = seen.Add(10 * time.Minute)
	s.Require().NoError(repo.Save(s.ctx, d))

	out, err := repo.LoadAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal(int64(5), out[0].ObservedCount)
	s.Equal([]string{"marchId", "targetX", "targetY"}, out[0].KnownParameters)
	s.True(out[0].FirstSeen.Equal(seen))
	s.True(out[0].LastSeen.Equal(seen.Add(10 * time.Minute)))
}

// TestDiscoveryRepository_FirstWins проверяет, что повторное открытие того же
// действия не перезаписывает первую запись.
func (s *IntegrationSuite) TestDiscoveryRepository_FirstWins() {
	repo := db.NewDiscoveryRepository(s.db)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := &fuzz.Discovery{
		ActionName:     "hero.debug",
		Parameters:     map[string]any{"cityId": int64(1)},
		Classification: fuzz.ClassValidDecodable,
		DiscoveredAt:   at,
		SampleResponse: []byte{0x00, 0x03},
	}
	s.Require().NoError(repo.Save(s.ctx, first))

	second := &fuzz.Discovery{
		ActionName:     "hero.debug",
		Parameters:     map[string]any{"cityId": int64(99)},
		Classification: fuzz.ClassValidDecodable,
		DiscoveredAt:   at.Add(time.Hour),
		SampleResponse: []byte{0xFF},
	}
	s.Require().NoError(repo.Save(s.ctx, second))

	out, err := repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal("hero.debug", out[0].ActionName)
	s.Equal(map[string]any{"cityId": float64(1)}, out[0].Parameters)
	s.True(out[0].DiscoveredAt.Equal(at))
	s.Equal([]byte{0x00, 0x03}, out[0].SampleResponse)
}

// TestDiscoveryRepository_SaveAll сохраняет результат целого прогона.
func (s *IntegrationSuite) TestDiscoveryRepository_SaveAll() {
	repo := db.NewDiscoveryRepository(s.db)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	batch := []*fuzz.Discovery{
		{ActionName: "castle.admin", Classification: fuzz.ClassValidDecodable, DiscoveredAt: at},
		{ActionName: "troop.gm", Classification: fuzz.ClassValidDecodable, DiscoveredAt: at.Add(time.Second)},
		{ActionName: "map.action2", Classification: fuzz.ClassValidDecodable, DiscoveredAt: at.Add(2 * time.Second)},
	}
	s.Require().NoError(repo.SaveAll(s.ctx, batch))

	out, err := repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(out, 3)
	s.Equal("castle.admin", out[0].ActionName)
	s.Equal("troop.gm", out[1].ActionName)
	s.Equal("map.action2", out[2].ActionName)
}
