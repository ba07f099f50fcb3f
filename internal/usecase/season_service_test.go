package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leagueledger/league-ledger/external/espn"
	"github.com/leagueledger/league-ledger/internal/domain/owner"
	"github.com/leagueledger/league-ledger/internal/platform/cache"
	"github.com/leagueledger/league-ledger/internal/platform/logging"
)

type stubFetcher struct {
	mu          sync.Mutex
	calls       int
	rawByYear   map[int]espn.RawSeason
	errByYear   map[int]error
	settings    map[string]any
	settingsErr error
}

func (f *stubFetcher) FetchRawSeason(_ context.Context, year int) (espn.RawSeason, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if err, ok := f.errByYear[year]; ok {
		return espn.RawSeason{}, err
	}
	if raw, ok := f.rawByYear[year]; ok {
		return raw, nil
	}
	return espn.RawSeason{Year: year}, nil
}

func (f *stubFetcher) FetchLeagueSettings(context.Context, int) (map[string]any, error) {
	return f.settings, f.settingsErr
}

func (f *stubFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testOwnerTable() *owner.Table {
	return owner.NewTable(map[int]string{
		1: "Owner A",
		2: "Owner B",
	}, nil)
}

// rawTestSeason mirrors the provider payload shape after JSON decoding:
// every number arrives as float64.
func rawTestSeason(year int) espn.RawSeason {
	return espn.RawSeason{
		Year: year,
		Teams: []map[string]any{
			{
				"id":   float64(1),
				"name": "Alpha Squad",
				"record": map[string]any{
					"overall": map[string]any{
						"wins":          float64(10),
						"losses":        float64(4),
						"ties":          float64(0),
						"pointsFor":     1500.5,
						"pointsAgainst": 1300.25,
					},
				},
				"playoffSeed":         float64(1),
				"rankCalculatedFinal": float64(1),
			},
			{
				"id":                  float64(2),
				"location":            "Bravo",
				"nickname":            "Bunch",
				"playoffSeed":         float64(2),
				"rankCalculatedFinal": float64(2),
			},
			{
				"id": float64(3),
			},
		},
		Schedule: []map[string]any{
			{
				"matchupPeriodId": float64(1),
				"away":            map[string]any{"teamId": float64(1), "totalPoints": 150.0},
				"home":            map[string]any{"teamId": float64(2), "totalPoints": 100.0},
			},
			{
				"matchupPeriodId": float64(16),
				"playoffTierType": "WINNERS_BRACKET",
				"away":            map[string]any{"teamId": float64(1), "totalPoints": 130.0},
				"home":            map[string]any{"teamId": float64(2), "totalPoints": 120.0},
			},
			{
				"matchupPeriodId": float64(16),
				"playoffTierType": "LOSERS_CONSOLATION_LADDER",
				"away":            map[string]any{"teamId": float64(3), "totalPoints": 90.0},
				"home":            map[string]any{},
			},
			{
				// Pre-draft placeholder rows carry no period and are skipped.
				"matchupPeriodId": float64(0),
			},
		},
	}
}

func newTestSeasonService(fetcher *stubFetcher, store *cache.Store) *SeasonService {
	return NewSeasonService(fetcher, testOwnerTable(), store, logging.NewNop(), 2022, 2024, 2)
}

func TestSeasonService_Season_Normalization(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{rawByYear: map[int]espn.RawSeason{2022: rawTestSeason(2022)}}
	service := newTestSeasonService(fetcher, nil)

	record := service.Season(context.Background(), 2022)
	if record.Failed() {
		t.Fatalf("unexpected failure: %q", record.Err)
	}
	if len(record.Teams) != 3 {
		t.Fatalf("expected 3 teams, got %d", len(record.Teams))
	}

	alpha := record.Teams[0]
	if alpha.Name != "Alpha Squad" || alpha.Owner != "Owner A" {
		t.Fatalf("unexpected team: %+v", alpha)
	}
	if alpha.Wins != 10 || alpha.Losses != 4 || alpha.PointsFor != 1500.5 {
		t.Fatalf("unexpected record line: %+v", alpha)
	}

	bravo := record.Teams[1]
	if bravo.Name != "Bravo Bunch" {
		t.Fatalf("location+nickname fallback failed: %q", bravo.Name)
	}
	if bravo.Wins != 0 || bravo.PointsFor != 0 {
		t.Fatalf("missing record must default to zero: %+v", bravo)
	}

	third := record.Teams[2]
	if third.Name != "Team 3" {
		t.Fatalf("synthesized name fallback failed: %q", third.Name)
	}
	if third.Owner != owner.Unknown {
		t.Fatalf("unmapped team must degrade to sentinel, got %q", third.Owner)
	}

	if record.Champion == nil || record.Champion.Owner != "Owner A" {
		t.Fatalf("unexpected champion: %+v", record.Champion)
	}
	if record.RunnerUp == nil || record.RunnerUp.Owner != "Owner B" {
		t.Fatalf("unexpected runner-up: %+v", record.RunnerUp)
	}

	if len(record.Matchups) != 3 {
		t.Fatalf("expected 3 matchups (placeholder skipped), got %d", len(record.Matchups))
	}
	if record.Matchups[0].Playoff {
		t.Fatal("week 1 should not be a playoff matchup")
	}
	if !record.Matchups[1].Playoff {
		t.Fatal("winners bracket matchup should be flagged playoff")
	}
	if record.Matchups[2].Playoff {
		t.Fatal("consolation bracket must not count as playoff")
	}
	if record.Matchups[2].Home.Present() {
		t.Fatalf("empty home slot should be absent: %+v", record.Matchups[2].Home)
	}
	if record.Matchups[0].Away.Owner != "Owner A" || record.Matchups[0].Away.Score != 150 {
		t.Fatalf("unexpected away side: %+v", record.Matchups[0].Away)
	}
}

func TestSeasonService_Season_FetchFailureBecomesErrRecord(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{errByYear: map[int]error{2022: errors.New("all hosts failed")}}
	service := newTestSeasonService(fetcher, nil)

	record := service.Season(context.Background(), 2022)
	if !record.Failed() {
		t.Fatal("expected failed record")
	}
	if len(record.Teams) != 0 || len(record.Matchups) != 0 {
		t.Fatalf("failed record must carry empty collections: %+v", record)
	}
	if record.Year != 2022 {
		t.Fatalf("unexpected year %d", record.Year)
	}
}

func TestSeasonService_Season_OutOfRange(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{}
	service := newTestSeasonService(fetcher, nil)

	record := service.Season(context.Background(), 2010)
	if !record.Failed() {
		t.Fatal("expected out-of-range year to fail")
	}
	if fetcher.fetchCount() != 0 {
		t.Fatal("out-of-range year must not hit the provider")
	}
}

func TestSeasonService_History_OrderedAndMemoized(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		rawByYear: map[int]espn.RawSeason{
			2022: rawTestSeason(2022),
			2024: rawTestSeason(2024),
		},
		errByYear: map[int]error{2023: errors.New("season unavailable")},
	}
	store := cache.NewStore(time.Minute)
	service := newTestSeasonService(fetcher, store)
	ctx := context.Background()

	records := service.History(ctx)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, year := range []int{2022, 2023, 2024} {
		if records[i].Year != year {
			t.Fatalf("records out of order: %v", []int{records[0].Year, records[1].Year, records[2].Year})
		}
	}
	if !records[1].Failed() {
		t.Fatal("2023 should be an error-annotated record")
	}
	if records[0].Failed() || records[2].Failed() {
		t.Fatal("healthy seasons must not fail")
	}

	first := fetcher.fetchCount()
	_ = service.History(ctx)
	if fetcher.fetchCount() != first {
		t.Fatal("second History call should be served from cache")
	}

	service.Invalidate(ctx)
	_ = service.History(ctx)
	if fetcher.fetchCount() == first {
		t.Fatal("Invalidate should force a refetch")
	}
}

func TestSeasonService_CurrentStandings_Sorted(t *testing.T) {
	t.Parallel()

	raw := rawTestSeason(2024)
	fetcher := &stubFetcher{rawByYear: map[int]espn.RawSeason{2024: raw}}
	service := newTestSeasonService(fetcher, nil)

	standings := service.CurrentStandings(context.Background())
	if standings.Error != "" {
		t.Fatalf("unexpected error: %q", standings.Error)
	}
	if standings.TotalTeams != 3 {
		t.Fatalf("expected 3 rows, got %d", standings.TotalTeams)
	}
	if standings.Standings[0].Owner != "Owner A" || standings.Standings[1].Owner != "Owner B" {
		t.Fatalf("unexpected seed ordering: %+v", standings.Standings)
	}
	// The unseeded team sorts to the bottom.
	if standings.Standings[2].ID != 3 {
		t.Fatalf("unseeded team should sort last: %+v", standings.Standings[2])
	}
	if standings.Standings[0].WinPercentage != 0.71 {
		t.Fatalf("unexpected win percentage %v", standings.Standings[0].WinPercentage)
	}
}

func TestSeasonService_CurrentStandings_FetchFailure(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{errByYear: map[int]error{2024: errors.New("provider down")}}
	service := newTestSeasonService(fetcher, nil)

	standings := service.CurrentStandings(context.Background())
	if standings.Error == "" {
		t.Fatal("expected error on standings")
	}
	if len(standings.Standings) != 0 {
		t.Fatalf("expected empty table, got %d rows", len(standings.Standings))
	}
}

func TestSeasonService_LeagueInfo(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		settings: map[string]any{
			"name": "Backyard League",
			"size": float64(12),
			"scoringSettings": map[string]any{
				"scoringType": "PPR",
			},
			"scheduleSettings": map[string]any{
				"playoffTeamCount":   float64(6),
				"matchupPeriodCount": float64(13),
			},
		},
	}
	service := newTestSeasonService(fetcher, nil)

	info := service.LeagueInfo(context.Background())
	if info.Name != "Backyard League" || info.Size != 12 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.ScoringType != "PPR" || info.PlayoffTeams != 6 || info.RegularSeasonMatchups != 13 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestSeasonService_LeagueInfo_DefaultsOnFailure(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{settingsErr: errors.New("provider down")}
	service := newTestSeasonService(fetcher, nil)

	info := service.LeagueInfo(context.Background())
	if info.Name != "Fantasy League" || info.Size != 10 {
		t.Fatalf("expected defaults, got %+v", info)
	}
	if info.ScoringType != "STANDARD" || info.PlayoffTeams != 4 || info.RegularSeasonMatchups != 14 {
		t.Fatalf("expected defaults, got %+v", info)
	}
	if info.Season != 2024 {
		t.Fatalf("unexpected season %d", info.Season)
	}
}
