package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/leagueledger/league-ledger/internal/domain/season"
)

// playoffRankCutoff marks the final rank at or above which a season
// counts as a playoff appearance when no playoff seed was recorded.
const playoffRankCutoff = 6

type historyProvider interface {
	History(ctx context.Context) []season.Record
	CurrentStandings(ctx context.Context) Standings
}

// PodiumEntry is a champion or runner-up line for one season.
type PodiumEntry struct {
	Season    int     `json:"season"`
	TeamName  string  `json:"team_name"`
	Owner     string  `json:"owner"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	Ties      int     `json:"ties"`
	PointsFor float64 `json:"points_for"`
}

type OwnerFinals struct {
	Owner               string `json:"owner"`
	Championships       int    `json:"championships"`
	RunnerUps           int    `json:"runner_ups"`
	ChampionshipSeasons []int  `json:"championship_seasons"`
	RunnerUpSeasons     []int  `json:"runner_up_seasons"`
	TotalFinals         int    `json:"total_finals"`
}

type ChampionsReport struct {
	BySeason          []PodiumEntry `json:"by_season"`
	RunnerUpsBySeason []PodiumEntry `json:"runner_ups_by_season"`
	ByOwner           []OwnerFinals `json:"by_owner"`
	TotalSeasons      int           `json:"total_seasons"`
}

// ScoredEntry is one team's score in one matchup, flattened with its
// context for leaderboards.
type ScoredEntry struct {
	Score    float64 `json:"score"`
	TeamName string  `json:"team_name"`
	Owner    string  `json:"owner"`
	Season   int     `json:"season"`
	Week     int     `json:"week"`
	Playoff  bool    `json:"playoff"`
}

type WeeklyAverage struct {
	Week    int     `json:"week"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type SeasonLeader struct {
	Season      int     `json:"season"`
	TeamName    string  `json:"team_name"`
	Owner       string  `json:"owner"`
	TotalPoints float64 `json:"total_points"`
}

type OverallScoring struct {
	TotalGames   int     `json:"total_games"`
	AverageScore float64 `json:"average_score"`
	MedianScore  float64 `json:"median_score"`
	StdDev       float64 `json:"std_dev"`
	ScoreRange   float64 `json:"score_range"`
}

type ScoringReport struct {
	Error          string          `json:"error,omitempty"`
	HighestScores  []ScoredEntry   `json:"highest_scores"`
	LowestScores   []ScoredEntry   `json:"lowest_scores"`
	SeasonLeaders  []SeasonLeader  `json:"season_leaders"`
	WeeklyAverages []WeeklyAverage `json:"weekly_averages"`
	Overall        OverallScoring  `json:"overall_stats"`
}

type TeamLine struct {
	Name          string  `json:"name"`
	Owner         string  `json:"owner"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	PointsFor     float64 `json:"points_for"`
	PointsAgainst float64 `json:"points_against"`
}

type SeasonSummary struct {
	Season             int          `json:"season"`
	TotalTeams         int          `json:"total_teams"`
	RegularGames       int          `json:"total_games"`
	PlayoffGames       int          `json:"playoff_games"`
	AverageScore       float64      `json:"average_score"`
	HighestScore       float64      `json:"highest_score"`
	LowestScore        float64      `json:"lowest_score"`
	BestRecord         *TeamLine    `json:"best_record"`
	WorstRecord        *TeamLine    `json:"worst_record"`
	HighestScoringTeam *TeamLine    `json:"highest_scoring_team"`
	LowestScoringTeam  *TeamLine    `json:"lowest_scoring_team"`
	Champion           *PodiumEntry `json:"champion"`
	RunnerUp           *PodiumEntry `json:"runner_up"`
}

type SeasonsReport struct {
	Seasons      []SeasonSummary `json:"seasons"`
	TotalSeasons int             `json:"total_seasons"`
}

// OwnerRecord is one owner's lifetime line across every season they
// appear in.
type OwnerRecord struct {
	Owner                     string  `json:"owner"`
	SeasonsPlayed             int     `json:"seasons_played"`
	GamesPlayed               int     `json:"games_played"`
	Wins                      int     `json:"wins"`
	Losses                    int     `json:"losses"`
	Ties                      int     `json:"ties"`
	PointsFor                 float64 `json:"points_for"`
	PointsAgainst             float64 `json:"points_against"`
	PlayoffAppearances        int     `json:"playoff_appearances"`
	Championships             int     `json:"championships"`
	RunnerUps                 int     `json:"runner_ups"`
	Seasons                   []int   `json:"seasons"`
	ChampionshipYears         []int   `json:"championship_years"`
	RunnerUpYears             []int   `json:"runner_up_years"`
	WinPercentage             float64 `json:"win_percentage"`
	AvgPointsPerSeason        float64 `json:"avg_points_per_season"`
	AvgPointsAgainstPerSeason float64 `json:"avg_points_against_per_season"`
	PlayoffPercentage         float64 `json:"playoff_percentage"`
}

type AllTimeLeaders struct {
	MostWins             []OwnerRecord `json:"most_wins"`
	HighestWinPercentage []OwnerRecord `json:"highest_win_percentage"`
	MostPoints           []OwnerRecord `json:"most_points"`
	MostChampionships    []OwnerRecord `json:"most_championships"`
}

type LeagueTotals struct {
	TotalGames          int     `json:"total_games"`
	TotalPoints         float64 `json:"total_points"`
	AverageScoreAllTime float64 `json:"average_score_all_time"`
	TotalSeasons        int     `json:"total_seasons"`
}

type AllTimeReport struct {
	Records      []OwnerRecord  `json:"all_time_records"`
	Leaders      AllTimeLeaders `json:"leaders"`
	LeagueTotals LeagueTotals   `json:"league_totals"`
}

// SeriesRecord is the lifetime head-to-head line between two teams.
// Team1 is always the lexically smaller name so the unordered pair has
// one canonical shape.
type SeriesRecord struct {
	Team1        string  `json:"team1"`
	Team2        string  `json:"team2"`
	Team1Wins    int     `json:"team1_wins"`
	Team2Wins    int     `json:"team2_wins"`
	TotalGames   int     `json:"total_games"`
	Team1Points  float64 `json:"team1_points"`
	Team2Points  float64 `json:"team2_points"`
	Team1Avg     float64 `json:"team1_avg"`
	Team2Avg     float64 `json:"team2_avg"`
	SeriesLeader string  `json:"series_leader"`
}

type HeadToHeadReport struct {
	HeadToHead    []SeriesRecord `json:"head_to_head"`
	TotalMatchups int            `json:"total_matchups"`
}

type DashboardReport struct {
	TotalSeasons       int     `json:"total_seasons"`
	TotalGames         int     `json:"total_games"`
	HighestScoreEver   float64 `json:"highest_score_ever"`
	LowestScoreEver    float64 `json:"lowest_score_ever"`
	AverageScore       float64 `json:"average_score"`
	MostChampionships  int     `json:"most_championships"`
	CurrentSeasonTeams int     `json:"current_season_teams"`
	LastUpdated        string  `json:"last_updated"`
}

// HistoryService computes cross-season reports. Every operation is a
// pure function over the canonical records: same input, same output,
// freely re-callable. Failed seasons carry empty collections and fall
// out of every aggregate naturally.
type HistoryService struct {
	seasons historyProvider
}

func NewHistoryService(seasons historyProvider) *HistoryService {
	return &HistoryService{seasons: seasons}
}

func (s *HistoryService) ChampionsHistory(ctx context.Context) ChampionsReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.ChampionsHistory")
	defer span.End()

	records := s.seasons.History(ctx)
	report := ChampionsReport{
		BySeason:          []PodiumEntry{},
		RunnerUpsBySeason: []PodiumEntry{},
		ByOwner:           []OwnerFinals{},
	}
	finals := map[string]*OwnerFinals{}

	for _, record := range records {
		if record.Champion != nil {
			report.BySeason = append(report.BySeason, podiumEntry(record.Year, *record.Champion))
			entry := ownerFinals(finals, record.Champion.Owner)
			entry.Championships++
			entry.ChampionshipSeasons = append(entry.ChampionshipSeasons, record.Year)
		}
		if record.RunnerUp != nil {
			report.RunnerUpsBySeason = append(report.RunnerUpsBySeason, podiumEntry(record.Year, *record.RunnerUp))
			entry := ownerFinals(finals, record.RunnerUp.Owner)
			entry.RunnerUps++
			entry.RunnerUpSeasons = append(entry.RunnerUpSeasons, record.Year)
		}
	}

	for _, entry := range finals {
		entry.TotalFinals = entry.Championships + entry.RunnerUps
		report.ByOwner = append(report.ByOwner, *entry)
	}
	sort.SliceStable(report.ByOwner, func(i, j int) bool {
		a, b := report.ByOwner[i], report.ByOwner[j]
		if a.Championships != b.Championships {
			return a.Championships > b.Championships
		}
		if a.RunnerUps != b.RunnerUps {
			return a.RunnerUps > b.RunnerUps
		}
		return a.Owner < b.Owner
	})

	report.TotalSeasons = len(report.BySeason)
	return report
}

func (s *HistoryService) ScoringStats(ctx context.Context) ScoringReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.ScoringStats")
	defer span.End()

	records := s.seasons.History(ctx)

	var entries []ScoredEntry
	weekScores := map[int][]float64{}
	seasonTotals := map[int]map[int]float64{}

	for _, record := range records {
		for _, matchup := range record.Matchups {
			for _, side := range []season.Side{matchup.Away, matchup.Home} {
				if !side.Present() || side.Score <= 0 {
					continue
				}
				entries = append(entries, ScoredEntry{
					Score:    round2(side.Score),
					TeamName: side.TeamName,
					Owner:    side.Owner,
					Season:   record.Year,
					Week:     matchup.Week,
					Playoff:  matchup.Playoff,
				})
				weekScores[matchup.Week] = append(weekScores[matchup.Week], side.Score)
				if seasonTotals[record.Year] == nil {
					seasonTotals[record.Year] = map[int]float64{}
				}
				seasonTotals[record.Year][side.TeamID] += round2(side.Score)
			}
		}
	}

	if len(entries) == 0 {
		return ScoringReport{Error: "no scoring data available"}
	}

	descending := make([]ScoredEntry, len(entries))
	copy(descending, entries)
	sort.SliceStable(descending, func(i, j int) bool { return descending[i].Score > descending[j].Score })

	ascending := make([]ScoredEntry, len(entries))
	copy(ascending, entries)
	sort.SliceStable(ascending, func(i, j int) bool { return ascending[i].Score < ascending[j].Score })

	report := ScoringReport{
		HighestScores: topScores(descending, 10),
		LowestScores:  topScores(ascending, 10),
	}

	for week, scores := range weekScores {
		report.WeeklyAverages = append(report.WeeklyAverages, WeeklyAverage{
			Week:    week,
			Average: round2(mean(scores)),
			Count:   len(scores),
		})
	}
	sort.Slice(report.WeeklyAverages, func(i, j int) bool {
		return report.WeeklyAverages[i].Week < report.WeeklyAverages[j].Week
	})

	for _, record := range records {
		totals := seasonTotals[record.Year]
		if len(totals) == 0 {
			continue
		}
		leaderID, leaderPoints := 0, 0.0
		for teamID, points := range totals {
			if points > leaderPoints || (points == leaderPoints && (leaderID == 0 || teamID < leaderID)) {
				leaderID, leaderPoints = teamID, points
			}
		}
		leader := SeasonLeader{Season: record.Year, TotalPoints: round2(leaderPoints)}
		if team, ok := record.TeamByID(leaderID); ok {
			leader.TeamName = team.Name
			leader.Owner = team.Owner
		}
		report.SeasonLeaders = append(report.SeasonLeaders, leader)
	}
	sort.Slice(report.SeasonLeaders, func(i, j int) bool {
		return report.SeasonLeaders[i].Season > report.SeasonLeaders[j].Season
	})

	scores := make([]float64, len(entries))
	for i, entry := range entries {
		scores[i] = entry.Score
	}
	report.Overall = OverallScoring{
		TotalGames:   len(scores),
		AverageScore: round2(mean(scores)),
		MedianScore:  round2(median(scores)),
		StdDev:       round2(stddev(scores)),
		ScoreRange:   round2(descending[0].Score - ascending[0].Score),
	}

	return report
}

func (s *HistoryService) SeasonStats(ctx context.Context) SeasonsReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.SeasonStats")
	defer span.End()

	records := s.seasons.History(ctx)
	report := SeasonsReport{Seasons: []SeasonSummary{}}

	for _, record := range records {
		if len(record.Teams) == 0 || len(record.Matchups) == 0 {
			continue
		}

		summary := SeasonSummary{
			Season:     record.Year,
			TotalTeams: len(record.Teams),
		}

		var scores []float64
		for _, matchup := range record.Matchups {
			if matchup.Playoff {
				summary.PlayoffGames++
			} else {
				summary.RegularGames++
			}
			for _, side := range []season.Side{matchup.Away, matchup.Home} {
				if side.Present() && side.Score > 0 {
					scores = append(scores, side.Score)
				}
			}
		}
		if len(scores) > 0 {
			sorted := make([]float64, len(scores))
			copy(sorted, scores)
			sort.Float64s(sorted)
			summary.AverageScore = round2(mean(scores))
			summary.HighestScore = round2(sorted[len(sorted)-1])
			summary.LowestScore = round2(sorted[0])
		}

		summary.BestRecord = pickTeamLine(record.Teams, func(a, b season.Team) bool { return a.Wins > b.Wins })
		summary.WorstRecord = pickTeamLine(record.Teams, func(a, b season.Team) bool { return a.Wins < b.Wins })
		summary.HighestScoringTeam = pickTeamLine(record.Teams, func(a, b season.Team) bool { return a.PointsFor > b.PointsFor })
		summary.LowestScoringTeam = pickTeamLine(record.Teams, func(a, b season.Team) bool { return a.PointsFor < b.PointsFor })

		if record.Champion != nil {
			entry := podiumEntry(record.Year, *record.Champion)
			summary.Champion = &entry
		}
		if record.RunnerUp != nil {
			entry := podiumEntry(record.Year, *record.RunnerUp)
			summary.RunnerUp = &entry
		}

		report.Seasons = append(report.Seasons, summary)
	}

	sort.Slice(report.Seasons, func(i, j int) bool { return report.Seasons[i].Season > report.Seasons[j].Season })
	report.TotalSeasons = len(report.Seasons)
	return report
}

func (s *HistoryService) AllTimeStats(ctx context.Context) AllTimeReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.AllTimeStats")
	defer span.End()

	records := s.seasons.History(ctx)

	owners := map[string]*OwnerRecord{}
	var allScores []float64
	seasonsWithData := 0

	for _, record := range records {
		if len(record.Teams) > 0 {
			seasonsWithData++
		}
		for _, team := range record.Teams {
			stats := owners[team.Owner]
			if stats == nil {
				stats = &OwnerRecord{Owner: team.Owner}
				owners[team.Owner] = stats
			}
			stats.SeasonsPlayed++
			stats.Wins += team.Wins
			stats.Losses += team.Losses
			stats.Ties += team.Ties
			stats.PointsFor += round2(team.PointsFor)
			stats.PointsAgainst += round2(team.PointsAgainst)
			stats.GamesPlayed += team.Games()
			stats.Seasons = append(stats.Seasons, record.Year)

			// A recorded seed means the team made the bracket; absent a
			// seed, a final rank inside the cutoff counts instead.
			if team.PlayoffSeed > 0 || (team.FinalRank > 0 && team.FinalRank <= playoffRankCutoff) {
				stats.PlayoffAppearances++
			}

			if record.Champion != nil && record.Champion.Owner == team.Owner {
				stats.Championships++
				stats.ChampionshipYears = append(stats.ChampionshipYears, record.Year)
			}
			if record.RunnerUp != nil && record.RunnerUp.Owner == team.Owner {
				stats.RunnerUps++
				stats.RunnerUpYears = append(stats.RunnerUpYears, record.Year)
			}
		}
		for _, matchup := range record.Matchups {
			for _, side := range []season.Side{matchup.Away, matchup.Home} {
				if side.Present() && side.Score > 0 {
					allScores = append(allScores, side.Score)
				}
			}
		}
	}

	report := AllTimeReport{Records: []OwnerRecord{}}
	for _, stats := range owners {
		if stats.GamesPlayed == 0 {
			continue
		}
		stats.WinPercentage = round3(float64(stats.Wins) / float64(stats.GamesPlayed))
		stats.AvgPointsPerSeason = round2(stats.PointsFor / float64(stats.SeasonsPlayed))
		stats.AvgPointsAgainstPerSeason = round2(stats.PointsAgainst / float64(stats.SeasonsPlayed))
		stats.PlayoffPercentage = round3(float64(stats.PlayoffAppearances) / float64(stats.SeasonsPlayed))
		report.Records = append(report.Records, *stats)
	}
	sort.Slice(report.Records, func(i, j int) bool {
		if report.Records[i].Wins != report.Records[j].Wins {
			return report.Records[i].Wins > report.Records[j].Wins
		}
		return report.Records[i].Owner < report.Records[j].Owner
	})

	report.Leaders = AllTimeLeaders{
		MostWins: topOwners(report.Records, func(a, b OwnerRecord) bool {
			return a.Wins > b.Wins
		}),
		HighestWinPercentage: topOwners(report.Records, func(a, b OwnerRecord) bool {
			return a.WinPercentage > b.WinPercentage
		}),
		MostPoints: topOwners(report.Records, func(a, b OwnerRecord) bool {
			return a.PointsFor > b.PointsFor
		}),
		MostChampionships: topOwners(report.Records, func(a, b OwnerRecord) bool {
			if a.Championships != b.Championships {
				return a.Championships > b.Championships
			}
			return latestYear(a.ChampionshipYears) > latestYear(b.ChampionshipYears)
		}),
	}

	for _, record := range report.Records {
		report.LeagueTotals.TotalGames += record.GamesPlayed
		report.LeagueTotals.TotalPoints += record.PointsFor
	}
	report.LeagueTotals.TotalPoints = round2(report.LeagueTotals.TotalPoints)
	report.LeagueTotals.AverageScoreAllTime = round2(mean(allScores))
	report.LeagueTotals.TotalSeasons = seasonsWithData

	return report
}

func (s *HistoryService) HeadToHeadStats(ctx context.Context) HeadToHeadReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.HeadToHeadStats")
	defer span.End()

	records := s.seasons.History(ctx)
	series := map[[2]string]*SeriesRecord{}

	for _, record := range records {
		for _, matchup := range record.Matchups {
			if !matchup.Scoreable() {
				continue
			}

			first, second := matchup.Away, matchup.Home
			if second.TeamName < first.TeamName {
				first, second = second, first
			}
			key := [2]string{first.TeamName, second.TeamName}
			entry := series[key]
			if entry == nil {
				entry = &SeriesRecord{Team1: first.TeamName, Team2: second.TeamName}
				series[key] = entry
			}

			entry.TotalGames++
			entry.Team1Points += round2(first.Score)
			entry.Team2Points += round2(second.Score)

			// A tied score counts for the home side so wins always sum
			// to games played.
			winner := matchup.Winner()
			if winner == nil {
				winner = &matchup.Home
			}
			if winner.TeamName == entry.Team1 {
				entry.Team1Wins++
			} else {
				entry.Team2Wins++
			}
		}
	}

	report := HeadToHeadReport{HeadToHead: []SeriesRecord{}}
	for _, entry := range series {
		entry.Team1Points = round2(entry.Team1Points)
		entry.Team2Points = round2(entry.Team2Points)
		entry.Team1Avg = round2(entry.Team1Points / float64(entry.TotalGames))
		entry.Team2Avg = round2(entry.Team2Points / float64(entry.TotalGames))
		switch {
		case entry.Team1Wins > entry.Team2Wins:
			entry.SeriesLeader = entry.Team1
		case entry.Team2Wins > entry.Team1Wins:
			entry.SeriesLeader = entry.Team2
		default:
			entry.SeriesLeader = "Tied"
		}
		report.HeadToHead = append(report.HeadToHead, *entry)
	}

	sort.Slice(report.HeadToHead, func(i, j int) bool {
		a, b := report.HeadToHead[i], report.HeadToHead[j]
		if a.TotalGames != b.TotalGames {
			return a.TotalGames > b.TotalGames
		}
		if a.Team1 != b.Team1 {
			return a.Team1 < b.Team1
		}
		return a.Team2 < b.Team2
	})

	report.TotalMatchups = len(report.HeadToHead)
	return report
}

func (s *HistoryService) DashboardSummary(ctx context.Context) DashboardReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.DashboardSummary")
	defer span.End()

	records := s.seasons.History(ctx)
	standings := s.seasons.CurrentStandings(ctx)
	champions := s.ChampionsHistory(ctx)

	report := DashboardReport{
		TotalSeasons:       len(records),
		CurrentSeasonTeams: standings.TotalTeams,
		LastUpdated:        time.Now().UTC().Format("2006-01-02 15:04:05"),
	}

	var scores []float64
	for _, record := range records {
		report.TotalGames += len(record.Matchups)
		for _, matchup := range record.Matchups {
			for _, side := range []season.Side{matchup.Away, matchup.Home} {
				if side.Present() && side.Score > 0 {
					scores = append(scores, side.Score)
				}
			}
		}
	}
	if len(scores) > 0 {
		sorted := make([]float64, len(scores))
		copy(sorted, scores)
		sort.Float64s(sorted)
		report.HighestScoreEver = round2(sorted[len(sorted)-1])
		report.LowestScoreEver = round2(sorted[0])
		report.AverageScore = round2(mean(scores))
	}

	for _, entry := range champions.ByOwner {
		if entry.Championships > report.MostChampionships {
			report.MostChampionships = entry.Championships
		}
	}

	return report
}

func podiumEntry(year int, team season.Team) PodiumEntry {
	return PodiumEntry{
		Season:    year,
		TeamName:  team.Name,
		Owner:     team.Owner,
		Wins:      team.Wins,
		Losses:    team.Losses,
		Ties:      team.Ties,
		PointsFor: round2(team.PointsFor),
	}
}

func ownerFinals(finals map[string]*OwnerFinals, name string) *OwnerFinals {
	entry := finals[name]
	if entry == nil {
		entry = &OwnerFinals{
			Owner:               name,
			ChampionshipSeasons: []int{},
			RunnerUpSeasons:     []int{},
		}
		finals[name] = entry
	}
	return entry
}

func topScores(entries []ScoredEntry, limit int) []ScoredEntry {
	if len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]ScoredEntry, len(entries))
	copy(out, entries)
	return out
}

func pickTeamLine(teams []season.Team, better func(a, b season.Team) bool) *TeamLine {
	if len(teams) == 0 {
		return nil
	}
	best := teams[0]
	for _, team := range teams[1:] {
		if better(team, best) || (!better(best, team) && team.Name < best.Name) {
			best = team
		}
	}
	return &TeamLine{
		Name:          best.Name,
		Owner:         best.Owner,
		Wins:          best.Wins,
		Losses:        best.Losses,
		Ties:          best.Ties,
		PointsFor:     round2(best.PointsFor),
		PointsAgainst: round2(best.PointsAgainst),
	}
}

func topOwners(records []OwnerRecord, better func(a, b OwnerRecord) bool) []OwnerRecord {
	sorted := make([]OwnerRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if better(sorted[i], sorted[j]) {
			return true
		}
		if better(sorted[j], sorted[i]) {
			return false
		}
		return sorted[i].Owner < sorted[j].Owner
	})
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	return sorted
}

func latestYear(years []int) int {
	latest := 0
	for _, year := range years {
		if year > latest {
			latest = year
		}
	}
	return latest
}
