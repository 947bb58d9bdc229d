package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/pelota/internal/adapters/archive"
	"github.com/okian/pelota/internal/adapters/http/api"
	"github.com/okian/pelota/internal/adapters/repository"
	"github.com/okian/pelota/internal/domain/model"
	"github.com/okian/pelota/internal/domain/tuning"
	"github.com/okian/pelota/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDeduper struct {
	seen map[string]bool
}

func (m *mockDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDeduper) Unrecord(ctx context.Context, id string) {
	if m.seen != nil {
		delete(m.seen, id)
	}
}

type mockQueue struct {
	enqueueSuccess bool
	enqueued       []model.Sample
}

func (m *mockQueue) Enqueue(ctx context.Context, sample model.Sample) bool {
	if m.enqueueSuccess {
		m.enqueued = append(m.enqueued, sample)
		return true
	}
	return false
}

type mockBoard struct {
	topN    []types.Entry
	rank    types.Entry
	rankErr error
	topNErr error
}

func (m *mockBoard) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if m.topNErr != nil {
		return nil, m.topNErr
	}
	if n > len(m.topN) {
		return m.topN, nil
	}
	return m.topN[:n], nil
}

func (m *mockBoard) Rank(ctx context.Context, playerID string) (types.Entry, error) {
	if m.rankErr != nil {
		return types.Entry{}, m.rankErr
	}
	return m.rank, nil
}

type mockPlayers struct {
	profile    types.PlayerProfile
	profileErr error
	tuning     types.TuningUpdate
	tuningErr  error
	exportPath string
	exportErr  error
}

func (m *mockPlayers) Profile(ctx context.Context, playerID string) (types.PlayerProfile, error) {
	if m.profileErr != nil {
		return types.PlayerProfile{}, m.profileErr
	}
	return m.profile, nil
}

func (m *mockPlayers) Tuning(ctx context.Context, playerID string) (types.TuningUpdate, error) {
	if m.tuningErr != nil {
		return types.TuningUpdate{}, m.tuningErr
	}
	return m.tuning, nil
}

func (m *mockPlayers) Export(ctx context.Context, playerID string) (string, error) {
	if m.exportErr != nil {
		return "", m.exportErr
	}
	return m.exportPath, nil
}

type mockReporter struct {
	report   types.CorrelationReport
	err      error
	lastDays int
}

func (m *mockReporter) Report(ctx context.Context, days int) (types.CorrelationReport, error) {
	m.lastDays = days
	if m.err != nil {
		return types.CorrelationReport{}, m.err
	}
	return m.report, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

// mockDependencies implements the api.Dependencies interface.
type mockDependencies struct {
	dedupe  *mockDeduper
	queue   *mockQueue
	board   *mockBoard
	players *mockPlayers
	reports *mockReporter
}

func newMockDependencies() *mockDependencies {
	return &mockDependencies{
		dedupe:  &mockDeduper{},
		queue:   &mockQueue{enqueueSuccess: true},
		board:   &mockBoard{},
		players: &mockPlayers{},
		reports: &mockReporter{},
	}
}

func (m *mockDependencies) SeenAndRecord(ctx context.Context, id string) bool {
	return m.dedupe.SeenAndRecord(ctx, id)
}

func (m *mockDependencies) Unrecord(ctx context.Context, id string) {
	m.dedupe.Unrecord(ctx, id)
}

func (m *mockDependencies) Enqueue(ctx context.Context, sample model.Sample) bool {
	return m.queue.Enqueue(ctx, sample)
}

func (m *mockDependencies) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	return m.board.TopN(ctx, n)
}

func (m *mockDependencies) Rank(ctx context.Context, playerID string) (types.Entry, error) {
	return m.board.Rank(ctx, playerID)
}

func (m *mockDependencies) Profile(ctx context.Context, playerID string) (types.PlayerProfile, error) {
	return m.players.Profile(ctx, playerID)
}

func (m *mockDependencies) Tuning(ctx context.Context, playerID string) (types.TuningUpdate, error) {
	return m.players.Tuning(ctx, playerID)
}

func (m *mockDependencies) Export(ctx context.Context, playerID string) (string, error) {
	return m.players.Export(ctx, playerID)
}

func (m *mockDependencies) Report(ctx context.Context, days int) (types.CorrelationReport, error) {
	return m.reports.Report(ctx, days)
}

func (m *mockDependencies) Subscribe(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("stream"))
}

const validSession = `{
	"sample_id": "sample-123",
	"player_id": "alice",
	"score": 95.5,
	"duration_seconds": 72,
	"moves": ["up", "up", "right"],
	"death_cause": "wall_collision",
	"ts": "2025-04-01T12:00:00Z"
}`

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := newMockDependencies()
		deps.board.topN = []types.Entry{{Rank: 1, PlayerID: "alice", BestScore: 100, Tier: "expert", Games: 12}}
		statsProvider := &mockStatsProvider{stats: map[string]interface{}{"started": true}}
		server := api.NewServer(deps, statsProvider, 100)
		mux := http.NewServeMux()

		Convey("When registering routes", func() {
			server.Register(mux)

			Convey("Then the health endpoint should answer", func() {
				req := httptest.NewRequest("GET", "/healthz", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})

			Convey("And the metrics endpoint should expose Prometheus text", func() {
				req := httptest.NewRequest("GET", "/metrics", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And the stats endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/stats", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And the sessions endpoint should reject an empty body", func() {
				req := httptest.NewRequest("POST", "/sessions", strings.NewReader(`{}`))
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})

			Convey("And the rankings endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/rankings?limit=10", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And the single rank endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/rankings/alice", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And the player profile endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/players/alice", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And the report endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/reports/correlation", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And the stream endpoint should reach the subscriber", func() {
				req := httptest.NewRequest("GET", "/ws", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Body.String(), ShouldEqual, "stream")
			})

			Convey("And the dashboard should serve HTML with refresh control", func() {
				req := httptest.NewRequest("GET", "/dashboard", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, "id=\"refresh-interval\"")
				So(body, ShouldContainSubstring, "id=\"refresh-control\"")
			})

			Convey("And unknown paths should fall through to 404", func() {
				req := httptest.NewRequest("GET", "/unknown", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestSessionsHandler_HandlePostSession(t *testing.T) {
	Convey("Given a sessions handler", t, func() {
		deps := newMockDependencies()
		handler := api.NewSessionsHandler(deps)

		Convey("When handling a valid POST request", func() {
			req := httptest.NewRequest("POST", "/sessions", strings.NewReader(validSession))
			w := httptest.NewRecorder()
			handler.HandlePostSession(w, req)

			Convey("Then it should return accepted status", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)

				var response struct {
					Status    string `json:"status"`
					Duplicate bool   `json:"duplicate"`
				}
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response.Status, ShouldEqual, "accepted")
				So(response.Duplicate, ShouldBeFalse)
			})

			Convey("And the enqueued sample should carry the parsed fields", func() {
				So(len(deps.queue.enqueued), ShouldEqual, 1)
				sample := deps.queue.enqueued[0]
				So(sample.SampleID, ShouldEqual, "sample-123")
				So(sample.PlayerID, ShouldEqual, "alice")
				So(sample.Score, ShouldEqual, 95.5)
				So(sample.DurationSeconds, ShouldEqual, 72.0)
				So(sample.Moves, ShouldResemble, []string{"up", "up", "right"})
				So(sample.DeathCause, ShouldEqual, "wall_collision")
				So(sample.TS.UTC().Hour(), ShouldEqual, 12)
			})
		})

		Convey("When handling a duplicate sample", func() {
			req1 := httptest.NewRequest("POST", "/sessions", strings.NewReader(validSession))
			handler.HandlePostSession(httptest.NewRecorder(), req1)

			req2 := httptest.NewRequest("POST", "/sessions", strings.NewReader(validSession))
			w := httptest.NewRecorder()
			handler.HandlePostSession(w, req2)

			Convey("Then it should return duplicate status", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var response struct {
					Status    string `json:"status"`
					Duplicate bool   `json:"duplicate"`
				}
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response.Status, ShouldEqual, "duplicate")
				So(response.Duplicate, ShouldBeTrue)
			})
		})

		Convey("When handling an invalid JSON request", func() {
			req := httptest.NewRequest("POST", "/sessions", strings.NewReader(`{invalid json`))
			w := httptest.NewRecorder()
			handler.HandlePostSession(w, req)

			Convey("Then it should return bad request status", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When required fields are missing", func() {
			cases := map[string]string{
				"missing sample_id":         `{"player_id":"alice","score":10,"ts":"2025-04-01T12:00:00Z"}`,
				"missing player_id":         `{"sample_id":"s1","score":10,"ts":"2025-04-01T12:00:00Z"}`,
				"missing ts":                `{"sample_id":"s1","player_id":"alice","score":10}`,
				"invalid ts":                `{"sample_id":"s1","player_id":"alice","score":10,"ts":"yesterday"}`,
				"negative duration_seconds": `{"sample_id":"s1","player_id":"alice","score":10,"duration_seconds":-4,"ts":"2025-04-01T12:00:00Z"}`,
			}

			for name, body := range cases {
				Convey(fmt.Sprintf("And the request has a %s", name), func() {
					req := httptest.NewRequest("POST", "/sessions", strings.NewReader(body))
					w := httptest.NewRecorder()
					handler.HandlePostSession(w, req)

					So(w.Code, ShouldEqual, http.StatusBadRequest)
					var response struct {
						Code    string `json:"code"`
						Message string `json:"message"`
					}
					So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
					So(response.Code, ShouldEqual, "bad_request")
					So(response.Message, ShouldContainSubstring, name)
				})
			}
		})

		Convey("When handling a non-POST request", func() {
			req := httptest.NewRequest("GET", "/sessions", nil)
			w := httptest.NewRecorder()
			handler.HandlePostSession(w, req)

			Convey("Then it should return not found status", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When enqueue fails due to backpressure", func() {
			deps.queue.enqueueSuccess = false
			req := httptest.NewRequest("POST", "/sessions", strings.NewReader(validSession))
			w := httptest.NewRecorder()
			handler.HandlePostSession(w, req)

			Convey("Then it should return too many requests status", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)

				var response struct {
					Code string `json:"code"`
				}
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response.Code, ShouldEqual, "backpressure")
			})

			Convey("And the sample ID should be unrecorded for retry", func() {
				So(deps.dedupe.seen["sample-123"], ShouldBeFalse)
			})
		})
	})
}

func TestRankingsHandler_HandleGetRankings(t *testing.T) {
	Convey("Given a rankings handler", t, func() {
		board := &mockBoard{
			topN: []types.Entry{
				{Rank: 1, PlayerID: "alice", BestScore: 100.0, Tier: "expert", Games: 20},
				{Rank: 2, PlayerID: "bob", BestScore: 95.0, Tier: "advanced", Games: 11},
				{Rank: 3, PlayerID: "carol", BestScore: 90.0, Tier: "intermediate", Games: 7},
			},
		}
		handler := api.NewRankingsHandler(board, 100)

		Convey("When requesting top N entries", func() {
			req := httptest.NewRequest("GET", "/rankings?limit=2", nil)
			w := httptest.NewRecorder()
			handler.HandleGetRankings(w, req)

			Convey("Then it should return the top N entries", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var response []types.Entry
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(len(response), ShouldEqual, 2)
				So(response[0].PlayerID, ShouldEqual, "alice")
				So(response[0].Tier, ShouldEqual, "expert")
				So(response[1].PlayerID, ShouldEqual, "bob")
			})
		})

		Convey("When no limit is specified", func() {
			req := httptest.NewRequest("GET", "/rankings", nil)
			w := httptest.NewRecorder()
			handler.HandleGetRankings(w, req)

			Convey("Then it should return 400 Bad Request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the limit exceeds the maximum", func() {
			req := httptest.NewRequest("GET", "/rankings?limit=1000", nil)
			w := httptest.NewRecorder()
			handler.HandleGetRankings(w, req)

			Convey("Then it should return 400 with a limit code", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "limit_exceeded")
			})
		})

		Convey("When the board returns an error", func() {
			board.topNErr = fmt.Errorf("database error")
			req := httptest.NewRequest("GET", "/rankings?limit=10", nil)
			w := httptest.NewRecorder()
			handler.HandleGetRankings(w, req)

			Convey("Then it should return internal server error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestRankHandler_HandleGetRank(t *testing.T) {
	Convey("Given a rank handler", t, func() {
		board := &mockBoard{
			rank: types.Entry{Rank: 5, PlayerID: "alice", BestScore: 85.0, Tier: "intermediate", Games: 6},
		}
		handler := api.NewRankHandler(board)

		Convey("When requesting the rank for a known player", func() {
			req := httptest.NewRequest("GET", "/rankings/alice", nil)
			w := httptest.NewRecorder()
			handler.HandleGetRank(w, req)

			Convey("Then it should return the rank entry", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")

				var response types.Entry
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response.PlayerID, ShouldEqual, "alice")
				So(response.Rank, ShouldEqual, 5)
				So(response.BestScore, ShouldEqual, 85.0)
			})
		})

		Convey("When the player is unknown", func() {
			board.rankErr = repository.ErrNotFound
			req := httptest.NewRequest("GET", "/rankings/nobody", nil)
			w := httptest.NewRecorder()
			handler.HandleGetRank(w, req)

			Convey("Then it should return not found status", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the board returns another error", func() {
			board.rankErr = fmt.Errorf("database error")
			req := httptest.NewRequest("GET", "/rankings/alice", nil)
			w := httptest.NewRecorder()
			handler.HandleGetRank(w, req)

			Convey("Then it should return internal server error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When the path has extra segments", func() {
			req := httptest.NewRequest("GET", "/rankings/alice/extra", nil)
			w := httptest.NewRecorder()
			handler.HandleGetRank(w, req)

			Convey("Then it should return bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestPlayerHandler_HandlePlayer(t *testing.T) {
	Convey("Given a player handler", t, func() {
		players := &mockPlayers{
			profile: types.PlayerProfile{
				PlayerID:  "alice",
				Tier:      "advanced",
				Games:     14,
				BestScore: 180,
				AvgScore:  120,
				Tuning:    tuning.Bundle{Speed: 16, AssistFrequency: 0.3},
			},
			tuning: types.TuningUpdate{
				PlayerID: "alice",
				Tier:     "advanced",
				Tuning:   tuning.Bundle{Speed: 16, AssistFrequency: 0.3},
			},
			exportPath: "archives/alice.jsonl.zst",
		}
		handler := api.NewPlayerHandler(players)

		Convey("When requesting a player profile", func() {
			req := httptest.NewRequest("GET", "/players/alice", nil)
			w := httptest.NewRecorder()
			handler.HandlePlayer(w, req)

			Convey("Then it should return the profile", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var response types.PlayerProfile
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response.PlayerID, ShouldEqual, "alice")
				So(response.Tier, ShouldEqual, "advanced")
				So(response.Tuning.Speed, ShouldEqual, 16.0)
			})
		})

		Convey("When requesting tuning parameters", func() {
			req := httptest.NewRequest("GET", "/players/alice/tuning", nil)
			w := httptest.NewRecorder()
			handler.HandlePlayer(w, req)

			Convey("Then it should return the tuning update", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var response types.TuningUpdate
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response.Tier, ShouldEqual, "advanced")
				So(response.Tuning.AssistFrequency, ShouldEqual, 0.3)
			})
		})

		Convey("When exporting a player's history", func() {
			req := httptest.NewRequest("POST", "/players/alice/export", nil)
			w := httptest.NewRecorder()
			handler.HandlePlayer(w, req)

			Convey("Then it should return the archive path", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "archives/alice.jsonl.zst")
			})
		})

		Convey("When the player is unknown", func() {
			players.profileErr = repository.ErrNotFound
			req := httptest.NewRequest("GET", "/players/nobody", nil)
			w := httptest.NewRecorder()
			handler.HandlePlayer(w, req)

			Convey("Then it should return not found status", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the export rejects the player ID", func() {
			players.exportErr = archive.ErrInvalidPlayerID
			req := httptest.NewRequest("POST", "/players/alice/export", nil)
			w := httptest.NewRecorder()
			handler.HandlePlayer(w, req)

			Convey("Then it should return bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When exporting with the wrong method", func() {
			req := httptest.NewRequest("GET", "/players/alice/export", nil)
			w := httptest.NewRecorder()
			handler.HandlePlayer(w, req)

			Convey("Then it should return not found status", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When requesting an unknown subresource", func() {
			req := httptest.NewRequest("GET", "/players/alice/stats", nil)
			w := httptest.NewRecorder()
			handler.HandlePlayer(w, req)

			Convey("Then it should return not found status", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestReportsHandler_HandleGetReport(t *testing.T) {
	Convey("Given a reports handler", t, func() {
		reporter := &mockReporter{
			report: types.CorrelationReport{
				Days:        30,
				PriceOrigin: "synthetic",
				SolarOrigin: "synthetic",
				Rows: []types.CorrelationRow{
					{Metric: "plasma_speed", Coefficient: 0.42, Band: "moderate", Direction: "positive", Samples: 30, Defined: true},
				},
				Insights: []string{"strongest price link: plasma_speed (r=0.42, moderate, positive)"},
				Caveat:   "significance is approximate",
			},
		}
		handler := api.NewReportsHandler(reporter)

		Convey("When requesting the default window", func() {
			req := httptest.NewRequest("GET", "/reports/correlation", nil)
			w := httptest.NewRecorder()
			handler.HandleGetReport(w, req)

			Convey("Then it should return the report", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var response types.CorrelationReport
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(len(response.Rows), ShouldEqual, 1)
				So(response.Rows[0].Band, ShouldEqual, "moderate")
				So(response.Caveat, ShouldNotBeEmpty)
			})

			Convey("And the handler should pass zero days through", func() {
				So(reporter.lastDays, ShouldEqual, 0)
			})
		})

		Convey("When requesting an explicit window", func() {
			req := httptest.NewRequest("GET", "/reports/correlation?days=14", nil)
			w := httptest.NewRecorder()
			handler.HandleGetReport(w, req)

			Convey("Then the window should reach the builder", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(reporter.lastDays, ShouldEqual, 14)
			})
		})

		Convey("When the days parameter is invalid", func() {
			for _, query := range []string{"?days=abc", "?days=0", "?days=-3"} {
				req := httptest.NewRequest("GET", "/reports/correlation"+query, nil)
				w := httptest.NewRecorder()
				handler.HandleGetReport(w, req)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the report cannot be built", func() {
			reporter.err = fmt.Errorf("price feed: connection refused")
			req := httptest.NewRequest("GET", "/reports/correlation", nil)
			w := httptest.NewRecorder()
			handler.HandleGetReport(w, req)

			Convey("Then it should return bad gateway", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(w.Body.String(), ShouldContainSubstring, "upstream_unavailable")
			})
		})

		Convey("When handling a non-GET request", func() {
			req := httptest.NewRequest("POST", "/reports/correlation", nil)
			w := httptest.NewRecorder()
			handler.HandleGetReport(w, req)

			Convey("Then it should return not found status", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	Convey("Given a health handler", t, func() {
		handler := api.NewHealthHandler()

		Convey("When handling a health check request", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			handler.HandleHealth(w, req)

			Convey("Then it should return OK with a JSON body", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"ok"`)
			})
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		mockStats := &mockStatsProvider{
			stats: map[string]interface{}{
				"samples_stored": 1000,
				"players_ranked": 150,
			},
		}
		handler := api.NewStatsHandler(mockStats)

		Convey("When handling a stats request", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			handler.HandleStats(w, req)

			Convey("Then it should return stats", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var response map[string]interface{}
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response["samples_stored"], ShouldEqual, 1000)
				So(response["players_ranked"], ShouldEqual, 150)
			})
		})
	})
}

func TestCORSMiddleware(t *testing.T) {
	Convey("Given a handler behind the CORS middleware", t, func() {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		handler := api.CORSMiddleware([]string{"*"})(inner)

		Convey("When a cross-origin request arrives", func() {
			req := httptest.NewRequest("GET", "/rankings?limit=5", nil)
			req.Header.Set("Origin", "http://game.example.com")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			Convey("Then the allow-origin header should be set", func() {
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
			})
		})

		Convey("When a preflight request arrives", func() {
			req := httptest.NewRequest("OPTIONS", "/sessions", nil)
			req.Header.Set("Origin", "http://game.example.com")
			req.Header.Set("Access-Control-Request-Method", "POST")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			Convey("Then the preflight should be answered", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
			})
		})
	})
}
