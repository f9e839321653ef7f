package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DrOst98/fc-koeln-dashboard/internal/adapters/http/api"
	service "github.com/DrOst98/fc-koeln-dashboard/internal/app"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/cascade"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/features"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/similarity"
	"github.com/DrOst98/fc-koeln-dashboard/internal/domain/tiers"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeDeps satisfies the handler dependencies with swappable funcs.
type fakeDeps struct {
	predict     func(ctx context.Context, raw features.RawInput, topN int) (service.Outcome, error)
	findSimilar func(ctx context.Context, q similarity.Query, topN int) ([]similarity.Match, error)
	meta        func(ctx context.Context) service.Meta
	stats       func() service.Stats
}

func (f *fakeDeps) Predict(ctx context.Context, raw features.RawInput, topN int) (service.Outcome, error) {
	return f.predict(ctx, raw, topN)
}

func (f *fakeDeps) FindSimilar(ctx context.Context, q similarity.Query, topN int) ([]similarity.Match, error) {
	return f.findSimilar(ctx, q, topN)
}

func (f *fakeDeps) Meta(ctx context.Context) service.Meta { return f.meta(ctx) }

func (f *fakeDeps) Stats() service.Stats { return f.stats() }

func happyDeps() *fakeDeps {
	return &fakeDeps{
		predict: func(_ context.Context, _ features.RawInput, _ int) (service.Outcome, error) {
			return service.Outcome{
				RawScore:        63.1,
				CalibratedScore: 65.4,
				Tier:            tiers.Tier{Label: "Expected to Be a Key Player", Color: "#008000"},
				Similar: []similarity.Match{{
					Record: similarity.Record{
						PlayerName:   "Anton Example",
						MainPosition: "centralmidfield",
						Season:       2023,
						PlayingPct:   58,
					},
					Distance: 0.42,
				}},
			}, nil
		},
		findSimilar: func(_ context.Context, _ similarity.Query, _ int) ([]similarity.Match, error) {
			return []similarity.Match{}, nil
		},
		meta: func(_ context.Context) service.Meta {
			return service.Meta{
				PositionGroups: []string{"defender", "midfielder"},
				Feet:           []string{"left", "right", "both"},
			}
		},
		stats: func() service.Stats {
			return service.Stats{Predictions: 7, ReferenceRecords: 1200, ModelVersion: "m-1"}
		},
	}
}

func newMux(deps api.Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

const validPredictBody = `{
  "height": 180, "transfer_age": 25,
  "position_group": "midfielder", "main_position": "centralmidfield",
  "foot": "left", "market_value": 15.0, "played_before_pct": 50,
  "scorer_group": "3-6", "clean_sheets_group": "0-2",
  "from_team_market_value": 60, "to_team_market_value": 60,
  "from_area": "Germany", "from_level": 1,
  "to_area": "Germany", "to_level": 1
}`

func TestHandlePredict(t *testing.T) {
	Convey("Given the API over a working service", t, func() {
		mux := newMux(happyDeps())

		Convey("When posting a valid prediction request", func() {
			rec := do(mux, http.MethodPost, "/predict", validPredictBody)
			So(rec.Code, ShouldEqual, http.StatusOK)

			var resp map[string]any
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)

			Convey("Then the response carries scores, tier and colors", func() {
				So(resp["raw_score"], ShouldEqual, 63.1)
				So(resp["calibrated_score"], ShouldEqual, 65.4)
				So(resp["tier"], ShouldEqual, "Expected to Be a Key Player")
				So(resp["color"], ShouldEqual, "#008000")
				So(resp["color_rgba"], ShouldEqual, "rgba(0, 128, 0, 0.6)")
			})

			Convey("Then similar transfers are shaped for display", func() {
				similar := resp["similar"].([]any)
				So(len(similar), ShouldEqual, 1)
				row := similar[0].(map[string]any)
				So(row["player_name"], ShouldEqual, "Anton Example")
				So(row["season"], ShouldEqual, 2023.0)
				So(row["distance"], ShouldEqual, 0.42)
			})

			Convey("Then a correlation id is attached", func() {
				So(rec.Header().Get("X-Request-ID"), ShouldNotBeBlank)
			})
		})

		Convey("When the client supplies a correlation id", func() {
			req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(validPredictBody))
			req.Header.Set("X-Request-ID", "trace-me")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it is echoed back", func() {
				So(rec.Header().Get("X-Request-ID"), ShouldEqual, "trace-me")
			})
		})

		Convey("When the method is not POST", func() {
			rec := do(mux, http.MethodGet, "/predict", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the body is not JSON", func() {
			rec := do(mux, http.MethodPost, "/predict", "{nope")
			So(rec.Code, ShouldEqual, http.StatusBadRequest)

			var resp map[string]any
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			So(resp["code"], ShouldEqual, "bad_request")
		})

		Convey("When a bound is violated", func() {
			cases := map[string]string{
				"height too low":   strings.Replace(validPredictBody, `"height": 180`, `"height": 120`, 1),
				"age too high":     strings.Replace(validPredictBody, `"transfer_age": 25`, `"transfer_age": 55`, 1),
				"level too high":   strings.Replace(validPredictBody, `"to_level": 1`, `"to_level": 9`, 1),
				"negative value":   strings.Replace(validPredictBody, `"market_value": 15.0`, `"market_value": -1`, 1),
				"pct above 100":    strings.Replace(validPredictBody, `"played_before_pct": 50`, `"played_before_pct": 130`, 1),
				"excess team size": strings.Replace(validPredictBody, `"to_team_market_value": 60`, `"to_team_market_value": 2000`, 1),
			}
			for name, body := range cases {
				Convey("Then the "+name+" request is rejected with 400", func() {
					rec := do(mux, http.MethodPost, "/predict", body)
					So(rec.Code, ShouldEqual, http.StatusBadRequest)
				})
			}
		})
	})

	Convey("Given a service that fails with domain errors", t, func() {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{fmt.Errorf("wrap: %w", features.ErrUnknownCategory), http.StatusBadRequest, "unknown_category"},
			{fmt.Errorf("wrap: %w", similarity.ErrDegenerateQuery), http.StatusUnprocessableEntity, "degenerate_query"},
			{fmt.Errorf("wrap: %w", cascade.ErrInference), http.StatusInternalServerError, "model_inference"},
			{fmt.Errorf("wrap: %w", tiers.ErrInvalidScore), http.StatusInternalServerError, "invalid_score"},
			{fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
		}
		for _, c := range cases {
			failErr := c.err
			deps := happyDeps()
			deps.predict = func(context.Context, features.RawInput, int) (service.Outcome, error) {
				return service.Outcome{}, failErr
			}
			mux := newMux(deps)

			Convey("When prediction fails with "+c.code, func() {
				rec := do(mux, http.MethodPost, "/predict", validPredictBody)

				Convey("Then the error maps to its HTTP shape", func() {
					So(rec.Code, ShouldEqual, c.status)
					var resp map[string]any
					So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
					So(resp["code"], ShouldEqual, c.code)
				})
			})
		}
	})
}

func TestHandleSimilar(t *testing.T) {
	Convey("Given the API", t, func() {
		var seen similarity.Query
		deps := happyDeps()
		deps.findSimilar = func(_ context.Context, q similarity.Query, _ int) ([]similarity.Match, error) {
			seen = q
			return []similarity.Match{}, nil
		}
		mux := newMux(deps)

		body := `{
		  "main_position": "centralmidfield", "position_group": "midfielder",
		  "transfer_age": 25, "market_value": 15,
		  "from_team_market_value": 60, "to_team_market_value": 30,
		  "played_before_pct": 50, "scorer_group": "3-6",
		  "clean_sheets_group": "0-2",
		  "from_area": "Germany", "to_area": "Germany",
		  "from_level": 1, "to_level": 1
		}`

		Convey("When posting a valid search", func() {
			rec := do(mux, http.MethodPost, "/similar", body)
			So(rec.Code, ShouldEqual, http.StatusOK)

			Convey("Then team values convert from millions to euros", func() {
				So(seen.FromTeamValue, ShouldEqual, 60_000_000.0)
				So(seen.ToTeamValue, ShouldEqual, 30_000_000.0)
				So(seen.TeamValueRel, ShouldEqual, 0.5)
			})

			Convey("Then an empty match list is a valid 200 response", func() {
				var resp map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
				matches := resp["matches"].([]any)
				So(len(matches), ShouldEqual, 0)
			})
		})

		Convey("When the main position is missing", func() {
			rec := do(mux, http.MethodPost, "/similar",
				strings.Replace(body, `"main_position": "centralmidfield"`, `"main_position": ""`, 1))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the method is not POST", func() {
			rec := do(mux, http.MethodGet, "/similar", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestHandleMetaAndStats(t *testing.T) {
	Convey("Given the API", t, func() {
		mux := newMux(happyDeps())

		Convey("When fetching the input space", func() {
			rec := do(mux, http.MethodGet, "/meta", "")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var resp map[string]any
			So(json.Unmarshal(rec.Body.Bytes(), &resp), ShouldBeNil)
			groups := resp["position_groups"].([]any)
			So(groups, ShouldResemble, []any{"defender", "midfielder"})
		})

		Convey("When fetching stats", func() {
			rec := do(mux, http.MethodGet, "/stats", "")
			So(rec.Code, ShouldEqual, http.StatusOK)

			var stats service.Stats
			So(json.Unmarshal(rec.Body.Bytes(), &stats), ShouldBeNil)
			So(stats.Predictions, ShouldEqual, 7)
			So(stats.ReferenceRecords, ShouldEqual, 1200)
			So(stats.ModelVersion, ShouldEqual, "m-1")
		})

		Convey("When posting to a GET endpoint", func() {
			rec := do(mux, http.MethodPost, "/meta", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When probing liveness", func() {
			rec := do(mux, http.MethodGet, "/healthz", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
		})
	})
}
