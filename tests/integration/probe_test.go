package integration

import (
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/evoprobe/evoprobe/internal/amf"
	"github.com/evoprobe/evoprobe/internal/catalog"
	"github.com/evoprobe/evoprobe/internal/clock"
	"github.com/evoprobe/evoprobe/internal/db"
	"github.com/evoprobe/evoprobe/internal/fuzz"
	"github.com/evoprobe/evoprobe/internal/state"
	"github.com/evoprobe/evoprobe/internal/transport"
)

// fakeGateway эмулирует игровой gateway: отвечает валидным AMF envelope на
// известные действия, текстовой ошибкой на остальные.
func fakeGateway(s *IntegrationSuite, known map[string]amf.Value) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read error", http.StatusBadRequest)
			return
		}
		env, err := amf.Decode(body)
		if err != nil {
			w.Write([]byte("error: malformed request"))
			return
		}
		payload, ok := known[env.ActionName]
		if !ok {
			w.Write([]byte("invalid action"))
			return
		}
		resp, err := amf.Encode(env.ActionName, payload)
		s.Require().NoError(err)
		w.Write(resp)
	}))
}

// TestProbe_FullPipeline гоняет полный цикл: fuzz через реальный HTTP
// transport -> классификация -> discovery -> сохранение в PostgreSQL,
// затем state engine обрабатывает те же ответы.
func (s *IntegrationSuite) TestProbe_FullPipeline() {
	known := map[string]amf.Value{
		"castle.getCastleInfo": amf.Object(map[string]amf.Value{
			"cityId": amf.Int(42),
			"name":   amf.String("Riverhold"),
			"resources": amf.Object(map[string]amf.Value{
				"gold": amf.Int(1000),
				"food": amf.Int(2500),
			}),
		}),
		"player.getPlayerInfo": amf.Object(map[string]amf.Value{
			"playerId": amf.Int(7),
			"name":     amf.String("probe"),
		}),
		// Недокументированное действие: должно попасть в discoveries.
		"tutorial.skip": amf.Object(map[string]amf.Value{"ok": amf.Bool(true)}),
	}
	gw := fakeGateway(s, known)
	defer gw.Close()

	cat := catalog.NewMemory()
	// castle.getCastleInfo и player.getPlayerInfo уже в каталоге — они не
	// должны считаться открытиями.
	now := time.Now()
	cat.RecordObservation("castle.getCastleInfo", catalog.DirectionResponse, []string{"cityId"}, now)
	cat.RecordObservation("player.getPlayerInfo", catalog.DirectionResponse, nil, now)

	explorer := fuzz.New(transport.NewHTTPGateway(gw.Client()), cat, clock.System{})
	summary, err := explorer.Run(s.ctx, fuzz.Config{
		Strategy:    fuzz.StrategySequenceBreaking,
		GatewayURL:  gw.URL,
		Parallelism: 3,
		Delay:       time.Millisecond,
		Timeout:     2 * time.Second,
	})
	s.Require().NoError(err)

	s.Equal(int64(10), summary.TotalAttempts)
	s.Equal(int64(3), summary.SuccessfulAttempts)
	s.Equal(int64(0), summary.ErrorAttempts)
	s.Equal(int64(3), summary.ByClassification[fuzz.ClassValidDecodable])
	s.Equal(int64(7), summary.ByClassification[fuzz.ClassInvalidAction])

	s.Require().Len(summary.Discoveries, 1)
	s.Equal("tutorial.skip", summary.Discoveries[0].ActionName)
	s.Equal(fuzz.ClassValidDecodable, summary.Discoveries[0].Classification)

	// Сохраняем результат прогона и читаем обратно.
	repo := db.NewDiscoveryRepository(s.db)
	s.Require().NoError(repo.SaveAll(s.ctx, summary.Discoveries))
	persisted, err := repo.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(persisted, 1)
	s.Equal("tutorial.skip", persisted[0].ActionName)
	s.True(amf.Validate(persisted[0].SampleResponse))

	// Ответ gateway скармливаем state engine как обычный трафик.
	engine := state.New(cat, clock.System{}, state.Options{})
	env, err := amf.Decode(persistedSample(s, gw, "castle.getCastleInfo"))
	s.Require().NoError(err)
	engine.ProcessPacket(env.ActionName, env.Payload, true)

	city := engine.GetCity(42)
	s.Require().NotNil(city)
	s.Equal("Riverhold", city.Name)
	s.Equal(int64(1000), city.Resources.Gold)
	s.Equal(int64(2500), city.Resources.Food)
}

// persistedSample дергает gateway напрямую и возвращает сырой ответ.
func persistedSample(s *IntegrationSuite, gw *httptest.Server, action string) []byte {
	req, err := amf.Encode(action, amf.Object(map[string]amf.Value{"cityId": amf.Int(42)}))
	s.Require().NoError(err)
	raw, err := transport.NewHTTPGateway(gw.Client()).Dispatch(s.ctx, req, gw.URL)
	s.Require().NoError(err)
	return raw
}
