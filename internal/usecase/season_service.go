package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/leagueledger/league-ledger/external/espn"
	"github.com/leagueledger/league-ledger/internal/domain/owner"
	"github.com/leagueledger/league-ledger/internal/domain/season"
	"github.com/leagueledger/league-ledger/internal/platform/cache"
	"github.com/leagueledger/league-ledger/internal/platform/logging"
	"github.com/panjf2000/ants/v2"
)

const winnersBracket = "WINNERS_BRACKET"

type seasonFetcher interface {
	FetchRawSeason(ctx context.Context, year int) (espn.RawSeason, error)
	FetchLeagueSettings(ctx context.Context, year int) (map[string]any, error)
}

var _ seasonFetcher = (*espn.Client)(nil)

// StandingRow is one team's line in the current-season table.
type StandingRow struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Owner         string  `json:"owner"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	PointsFor     float64 `json:"points_for"`
	PointsAgainst float64 `json:"points_against"`
	PlayoffSeed   int     `json:"playoff_seed"`
	WinPercentage float64 `json:"win_percentage"`
}

type Standings struct {
	Season     int           `json:"season"`
	Standings  []StandingRow `json:"standings"`
	TotalTeams int           `json:"total_teams"`
	Error      string        `json:"error,omitempty"`
}

// LeagueInfo is the settings snapshot for the current season. Fields
// fall back to common league defaults when the settings view cannot be
// fetched, so the dashboard always has something to show.
type LeagueInfo struct {
	Name                  string `json:"name"`
	Season                int    `json:"season"`
	Size                  int    `json:"size"`
	ScoringType           string `json:"scoring_type"`
	PlayoffTeams          int    `json:"playoff_teams"`
	RegularSeasonMatchups int    `json:"regular_season_matchups"`
}

// SeasonService turns the provider's raw team and schedule views into
// canonical season records. Fetch failures never escape as errors: a
// season that cannot be loaded is returned as a record with a populated
// Err and empty collections, so multi-season folds stay total.
type SeasonService struct {
	fetcher       seasonFetcher
	owners        *owner.Table
	store         *cache.Store
	logger        *logging.Logger
	startSeason   int
	currentSeason int
	concurrency   int
}

func NewSeasonService(
	fetcher seasonFetcher,
	owners *owner.Table,
	store *cache.Store,
	logger *logging.Logger,
	startSeason int,
	currentSeason int,
	concurrency int,
) *SeasonService {
	if logger == nil {
		logger = logging.Default()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &SeasonService{
		fetcher:       fetcher,
		owners:        owners,
		store:         store,
		logger:        logger,
		startSeason:   startSeason,
		currentSeason: currentSeason,
		concurrency:   concurrency,
	}
}

func (s *SeasonService) StartSeason() int   { return s.startSeason }
func (s *SeasonService) CurrentSeason() int { return s.currentSeason }

// Season fetches and normalizes one year.
func (s *SeasonService) Season(ctx context.Context, year int) season.Record {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.Season")
	defer span.End()

	if year < s.startSeason || year > s.currentSeason {
		return season.Record{
			Year: year,
			Err:  fmt.Sprintf("season %d is outside the configured range %d-%d", year, s.startSeason, s.currentSeason),
		}
	}

	if s.store == nil {
		return s.loadSeason(ctx, year)
	}

	value, err := s.store.GetOrLoad(ctx, fmt.Sprintf("season:%d", year), func(ctx context.Context) (any, error) {
		return s.loadSeason(ctx, year), nil
	})
	if err != nil {
		return season.Record{Year: year, Err: err.Error()}
	}
	record, ok := value.(season.Record)
	if !ok {
		return season.Record{Year: year, Err: fmt.Sprintf("unexpected cached value type %T", value)}
	}
	return record
}

func (s *SeasonService) loadSeason(ctx context.Context, year int) season.Record {
	raw, err := s.fetcher.FetchRawSeason(ctx, year)
	if err != nil {
		s.logger.WarnContext(ctx, "season fetch failed", "season", year, "error", err.Error())
		return season.Record{Year: year, Err: err.Error()}
	}
	return s.normalize(ctx, raw)
}

func (s *SeasonService) normalize(ctx context.Context, raw espn.RawSeason) season.Record {
	record := season.Record{Year: raw.Year}

	for _, entry := range raw.Teams {
		record.Teams = append(record.Teams, s.normalizeTeam(ctx, entry))
	}

	for _, entry := range raw.Schedule {
		week := asInt(entry["matchupPeriodId"])
		if week <= 0 {
			continue
		}
		record.Matchups = append(record.Matchups, season.Matchup{
			Week:    week,
			Playoff: asString(entry["playoffTierType"]) == winnersBracket,
			Home:    s.normalizeSide(record, asMap(entry["home"])),
			Away:    s.normalizeSide(record, asMap(entry["away"])),
		})
	}

	// The podium is read straight off the provider's final ranks and
	// never inferred from standings or score totals.
	for i := range record.Teams {
		switch record.Teams[i].FinalRank {
		case 1:
			record.Champion = &record.Teams[i]
		case 2:
			record.RunnerUp = &record.Teams[i]
		}
	}

	return record
}

func (s *SeasonService) normalizeTeam(ctx context.Context, raw map[string]any) season.Team {
	id := asInt(raw["id"])
	overall := asMap(asMap(raw["record"])["overall"])

	ownerName := s.owners.ResolveTeamID(id)
	if ownerName == owner.Unknown {
		s.logger.DebugContext(ctx, "team id has no owner mapping", "team_id", id)
	}

	return season.Team{
		ID:            id,
		Name:          teamName(raw, id),
		Owner:         ownerName,
		Wins:          asInt(overall["wins"]),
		Losses:        asInt(overall["losses"]),
		Ties:          asInt(overall["ties"]),
		PointsFor:     asFloat(overall["pointsFor"]),
		PointsAgainst: asFloat(overall["pointsAgainst"]),
		PlayoffSeed:   asInt(raw["playoffSeed"]),
		FinalRank:     asInt(raw["rankCalculatedFinal"]),
	}
}

func (s *SeasonService) normalizeSide(record season.Record, raw map[string]any) season.Side {
	teamID := asInt(raw["teamId"])
	if teamID <= 0 {
		return season.Side{}
	}

	side := season.Side{
		TeamID: teamID,
		Score:  asFloat(raw["totalPoints"]),
	}
	if team, ok := record.TeamByID(teamID); ok {
		side.TeamName = team.Name
		side.Owner = team.Owner
	} else {
		side.TeamName = fmt.Sprintf("Team %d", teamID)
		side.Owner = s.owners.ResolveTeamID(teamID)
	}
	return side
}

// History returns one record per configured season, oldest first. The
// per-year fetches run on a bounded worker pool and the assembled slice
// is memoized for the session.
func (s *SeasonService) History(ctx context.Context) []season.Record {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.History")
	defer span.End()

	if s.store == nil {
		return s.loadHistory(ctx)
	}

	value, err := s.store.GetOrLoad(ctx, "history", func(ctx context.Context) (any, error) {
		return s.loadHistory(ctx), nil
	})
	if err != nil {
		return s.loadHistory(ctx)
	}
	records, ok := value.([]season.Record)
	if !ok {
		return s.loadHistory(ctx)
	}
	return records
}

func (s *SeasonService) loadHistory(ctx context.Context) []season.Record {
	years := s.currentSeason - s.startSeason + 1
	records := make([]season.Record, years)

	pool, err := ants.NewPool(s.concurrency)
	if err != nil {
		for i := range records {
			records[i] = s.Season(ctx, s.startSeason+i)
		}
		return records
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := 0; i < years; i++ {
		idx := i
		year := s.startSeason + i
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			records[idx] = s.Season(ctx, year)
		})
		if submitErr != nil {
			wg.Done()
			records[idx] = s.Season(ctx, year)
		}
	}
	wg.Wait()

	return records
}

// Invalidate drops every memoized season. Invalidation is a full clear.
func (s *SeasonService) Invalidate(ctx context.Context) {
	_, span := startUsecaseSpan(ctx, "usecase.SeasonService.Invalidate")
	defer span.End()

	if s.store != nil {
		s.store.Clear(ctx)
	}
}

// CurrentStandings returns the current season's table sorted by playoff
// seed, then wins, then points for. A fetch failure yields an empty
// table with the error attached.
func (s *SeasonService) CurrentStandings(ctx context.Context) Standings {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.CurrentStandings")
	defer span.End()

	record := s.Season(ctx, s.currentSeason)
	if record.Failed() {
		return Standings{Season: s.currentSeason, Standings: []StandingRow{}, Error: record.Err}
	}

	rows := make([]StandingRow, 0, len(record.Teams))
	for _, team := range record.Teams {
		row := StandingRow{
			ID:            team.ID,
			Name:          team.Name,
			Owner:         team.Owner,
			Wins:          team.Wins,
			Losses:        team.Losses,
			Ties:          team.Ties,
			PointsFor:     team.PointsFor,
			PointsAgainst: team.PointsAgainst,
			PlayoffSeed:   team.PlayoffSeed,
		}
		if decided := team.Wins + team.Losses; decided > 0 {
			row.WinPercentage = round2(float64(team.Wins) / float64(decided))
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		seedI, seedJ := rows[i].PlayoffSeed, rows[j].PlayoffSeed
		if seedI <= 0 {
			seedI = 999
		}
		if seedJ <= 0 {
			seedJ = 999
		}
		if seedI != seedJ {
			return seedI < seedJ
		}
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		return rows[i].PointsFor > rows[j].PointsFor
	})

	return Standings{Season: s.currentSeason, Standings: rows, TotalTeams: len(rows)}
}

// LeagueInfo reads the settings view for the current season, degrading
// to defaults when the provider is unreachable.
func (s *SeasonService) LeagueInfo(ctx context.Context) LeagueInfo {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.LeagueInfo")
	defer span.End()

	info := LeagueInfo{
		Name:                  "Fantasy League",
		Season:                s.currentSeason,
		Size:                  10,
		ScoringType:           "STANDARD",
		PlayoffTeams:          4,
		RegularSeasonMatchups: 14,
	}

	settings, err := s.fetcher.FetchLeagueSettings(ctx, s.currentSeason)
	if err != nil {
		s.logger.WarnContext(ctx, "league settings fetch failed", "season", s.currentSeason, "error", err.Error())
		return info
	}

	if name := strings.TrimSpace(asString(settings["name"])); name != "" {
		info.Name = name
	}
	if size := asInt(settings["size"]); size > 0 {
		info.Size = size
	}
	scoring := asMap(settings["scoringSettings"])
	if scoringType := strings.TrimSpace(asString(scoring["scoringType"])); scoringType != "" {
		info.ScoringType = scoringType
	}
	schedule := asMap(settings["scheduleSettings"])
	if playoffTeams := asInt(schedule["playoffTeamCount"]); playoffTeams > 0 {
		info.PlayoffTeams = playoffTeams
	}
	if matchups := asInt(schedule["matchupPeriodCount"]); matchups > 0 {
		info.RegularSeasonMatchups = matchups
	}

	return info
}

func teamName(raw map[string]any, id int) string {
	if name := strings.TrimSpace(asString(raw["name"])); name != "" {
		return name
	}
	location := strings.TrimSpace(asString(raw["location"]))
	nickname := strings.TrimSpace(asString(raw["nickname"]))
	if combined := strings.TrimSpace(location + " " + nickname); combined != "" {
		return combined
	}
	return fmt.Sprintf("Team %d", id)
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
