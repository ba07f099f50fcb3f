package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/leagueledger/league-ledger/internal/domain/payout"
	"github.com/leagueledger/league-ledger/internal/domain/season"
)

// unseededRank sorts teams with neither a final rank nor a playoff
// seed behind everyone else.
const unseededRank = 99

type WeeklyHigh struct {
	Week  int     `json:"week"`
	Owner string  `json:"owner"`
	Score float64 `json:"score"`
}

type ScoringLeader struct {
	Owner  string  `json:"owner"`
	Points float64 `json:"points"`
}

// SeasonPayoutSummary is one season's itemized ledger grouped by owner.
type SeasonPayoutSummary struct {
	Season              int                  `json:"season"`
	Payouts             []payout.OwnerPayout `json:"payouts"`
	SeasonTotal         float64              `json:"season_total"`
	WeeklyHighs         []WeeklyHigh         `json:"weekly_highs"`
	RegularSeasonLeader *ScoringLeader       `json:"regular_season_leader"`
	Error               string               `json:"error,omitempty"`
}

type AllPayoutsReport struct {
	Seasons               []SeasonPayoutSummary `json:"seasons"`
	TotalSeasons          int                   `json:"total_seasons"`
	ExcludedCurrentSeason int                   `json:"excluded_current_season"`
}

// OwnerCumulative is one owner's lifetime earnings plus the category
// counts behind them.
type OwnerCumulative struct {
	Owner                string          `json:"owner"`
	TotalEarnings        float64         `json:"total_earnings"`
	Championships        int             `json:"championships"`
	RunnerUps            int             `json:"runner_ups"`
	ThirdPlaces          int             `json:"third_places"`
	FourthPlaces         int             `json:"fourth_places"`
	WeeklyHighs          int             `json:"weekly_highs"`
	MostPointsRegular    int             `json:"most_points_regular"`
	SeasonsParticipated  int             `json:"seasons_participated"`
	EarningsBySeason     map[int]float64 `json:"earnings_by_season"`
	AvgEarningsPerSeason float64         `json:"avg_earnings_per_season"`
}

type CumulativeReport struct {
	Owners             []OwnerCumulative `json:"cumulative_payouts"`
	TotalLeaguePayouts float64           `json:"total_league_payouts"`
	PayoutStructure    payout.Rules      `json:"payout_structure"`
	TotalOwners        int               `json:"total_owners"`
}

type PayoutSummaryReport struct {
	TotalSeasons          int          `json:"total_seasons"`
	TotalPayouts          float64      `json:"total_payouts"`
	TotalWeeklyPayouts    float64      `json:"total_weekly_payouts"`
	TotalWeeks            int          `json:"total_weeks"`
	AvgPayoutPerSeason    float64      `json:"avg_payout_per_season"`
	PayoutStructure       payout.Rules `json:"payout_structure"`
	ExcludedCurrentSeason int          `json:"excluded_current_season"`
}

type seasonHistoryProvider interface {
	History(ctx context.Context) []season.Record
	CurrentSeason() int
}

// PayoutService applies the rule table to canonical seasons. Award
// categories are granted in a fixed order and each one is independently
// additive, so one owner can stack several in the same season. Ties on
// any category break by ascending owner name.
type PayoutService struct {
	seasons seasonHistoryProvider
	rules   payout.Rules
}

func NewPayoutService(seasons seasonHistoryProvider, rules payout.Rules) *PayoutService {
	return &PayoutService{seasons: seasons, rules: rules}
}

func (s *PayoutService) Rules() payout.Rules {
	return s.rules
}

// SeasonPayouts computes the itemized ledger for one season. A missing
// or failed season yields a structured error result, never a failure.
func (s *PayoutService) SeasonPayouts(ctx context.Context, year int) SeasonPayoutSummary {
	ctx, span := startUsecaseSpan(ctx, "usecase.PayoutService.SeasonPayouts")
	defer span.End()

	for _, record := range s.seasons.History(ctx) {
		if record.Year != year {
			continue
		}
		if record.Failed() || len(record.Teams) == 0 {
			break
		}
		return s.computeSeason(record)
	}

	return SeasonPayoutSummary{
		Season: year,
		Error:  fmt.Sprintf("no data found for season %d", year),
	}
}

func (s *PayoutService) computeSeason(record season.Record) SeasonPayoutSummary {
	ledger := newLedger(record.Year)

	if record.Champion != nil {
		ledger.award(record.Champion.Owner, payout.CategoryChampion, s.rules.Champion, 0,
			fmt.Sprintf("%d League Champion", record.Year))
	}
	if record.RunnerUp != nil {
		ledger.award(record.RunnerUp.Owner, payout.CategoryRunnerUp, s.rules.RunnerUp, 0,
			fmt.Sprintf("%d Runner-Up", record.Year))
	}

	standings := finalStandings(record.Teams)
	if len(standings) >= 3 {
		ledger.award(standings[2].Owner, payout.CategoryThirdPlace, s.rules.ThirdPlace, 0,
			fmt.Sprintf("%d 3rd Place", record.Year))
	}
	if len(standings) >= 4 {
		ledger.award(standings[3].Owner, payout.CategoryFourthPlace, s.rules.FourthPlace, 0,
			fmt.Sprintf("%d 4th Place", record.Year))
	}

	summary := SeasonPayoutSummary{
		Season:      record.Year,
		WeeklyHighs: []WeeklyHigh{},
	}

	if leader, points, ok := regularSeasonLeader(record); ok {
		ledger.award(leader, payout.CategoryMostPointsRegular, s.rules.MostPointsRegular, 0,
			fmt.Sprintf("%d Most Points in Regular Season (%.2f pts)", record.Year, points))
		summary.RegularSeasonLeader = &ScoringLeader{Owner: leader, Points: round2(points)}
	}

	summary.WeeklyHighs = weeklyHighs(record)
	highCounts := map[string]int{}
	for _, high := range summary.WeeklyHighs {
		highCounts[high.Owner]++
	}
	for _, owner := range sortedKeys(highCounts) {
		count := highCounts[owner]
		ledger.award(owner, payout.CategoryWeeklyHigh, float64(count)*s.rules.WeeklyHigh, count,
			fmt.Sprintf("%d Weekly High Scores × $%.0f", count, s.rules.WeeklyHigh))
	}

	summary.Payouts, summary.SeasonTotal = ledger.close()
	return summary
}

// AllSeasonPayouts computes the ledger for every completed season,
// most recent first. The in-progress current season is excluded.
func (s *PayoutService) AllSeasonPayouts(ctx context.Context) AllPayoutsReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.PayoutService.AllSeasonPayouts")
	defer span.End()

	currentSeason := s.seasons.CurrentSeason()
	report := AllPayoutsReport{
		Seasons:               []SeasonPayoutSummary{},
		ExcludedCurrentSeason: currentSeason,
	}

	for _, record := range s.seasons.History(ctx) {
		if record.Year >= currentSeason {
			continue
		}
		if record.Failed() || len(record.Teams) == 0 {
			continue
		}
		report.Seasons = append(report.Seasons, s.computeSeason(record))
	}

	sort.Slice(report.Seasons, func(i, j int) bool {
		return report.Seasons[i].Season > report.Seasons[j].Season
	})
	report.TotalSeasons = len(report.Seasons)
	return report
}

// CumulativePayouts folds every completed season's ledger into lifetime
// totals per owner. The fold is associative and order-independent:
// recomputing from the same summaries always gives the same result.
func (s *PayoutService) CumulativePayouts(ctx context.Context) CumulativeReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.PayoutService.CumulativePayouts")
	defer span.End()

	allSeasons := s.AllSeasonPayouts(ctx)
	owners := map[string]*OwnerCumulative{}
	totalLeague := 0.0

	for _, seasonSummary := range allSeasons.Seasons {
		totalLeague += seasonSummary.SeasonTotal

		for _, ownerPayout := range seasonSummary.Payouts {
			if ownerPayout.TotalPayout <= 0 {
				continue
			}
			entry := owners[ownerPayout.Owner]
			if entry == nil {
				entry = &OwnerCumulative{
					Owner:            ownerPayout.Owner,
					EarningsBySeason: map[int]float64{},
				}
				owners[ownerPayout.Owner] = entry
			}
			entry.TotalEarnings += ownerPayout.TotalPayout
			entry.SeasonsParticipated++
			entry.EarningsBySeason[seasonSummary.Season] = ownerPayout.TotalPayout

			for _, detail := range ownerPayout.Details {
				switch detail.Category {
				case payout.CategoryChampion:
					entry.Championships++
				case payout.CategoryRunnerUp:
					entry.RunnerUps++
				case payout.CategoryThirdPlace:
					entry.ThirdPlaces++
				case payout.CategoryFourthPlace:
					entry.FourthPlaces++
				case payout.CategoryWeeklyHigh:
					entry.WeeklyHighs += detail.Count
				case payout.CategoryMostPointsRegular:
					entry.MostPointsRegular++
				}
			}
		}
	}

	report := CumulativeReport{
		Owners:             []OwnerCumulative{},
		TotalLeaguePayouts: round2(totalLeague),
		PayoutStructure:    s.rules,
	}
	for _, entry := range owners {
		entry.TotalEarnings = round2(entry.TotalEarnings)
		entry.AvgEarningsPerSeason = round2(entry.TotalEarnings / float64(maxInt(1, entry.SeasonsParticipated)))
		report.Owners = append(report.Owners, *entry)
	}
	sort.Slice(report.Owners, func(i, j int) bool {
		if report.Owners[i].TotalEarnings != report.Owners[j].TotalEarnings {
			return report.Owners[i].TotalEarnings > report.Owners[j].TotalEarnings
		}
		return report.Owners[i].Owner < report.Owners[j].Owner
	})
	report.TotalOwners = len(report.Owners)
	return report
}

// Summary reports league-wide payout volume for completed seasons.
func (s *PayoutService) Summary(ctx context.Context) PayoutSummaryReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.PayoutService.Summary")
	defer span.End()

	allSeasons := s.AllSeasonPayouts(ctx)
	cumulative := s.CumulativePayouts(ctx)

	totalWeeks := 0
	for _, seasonSummary := range allSeasons.Seasons {
		totalWeeks += len(seasonSummary.WeeklyHighs)
	}

	return PayoutSummaryReport{
		TotalSeasons:          allSeasons.TotalSeasons,
		TotalPayouts:          cumulative.TotalLeaguePayouts,
		TotalWeeklyPayouts:    round2(float64(totalWeeks) * s.rules.WeeklyHigh),
		TotalWeeks:            totalWeeks,
		AvgPayoutPerSeason:    round2(cumulative.TotalLeaguePayouts / float64(maxInt(1, allSeasons.TotalSeasons))),
		PayoutStructure:       s.rules,
		ExcludedCurrentSeason: allSeasons.ExcludedCurrentSeason,
	}
}

// ledger accumulates awards for one season keyed by owner.
type ledger struct {
	season  int
	totals  map[string]float64
	details map[string][]payout.Detail
}

func newLedger(year int) *ledger {
	return &ledger{
		season:  year,
		totals:  map[string]float64{},
		details: map[string][]payout.Detail{},
	}
}

func (l *ledger) award(owner string, category payout.Category, amount float64, count int, description string) {
	if owner == "" || amount <= 0 {
		return
	}
	l.totals[owner] += amount
	l.details[owner] = append(l.details[owner], payout.Detail{
		Category:    category,
		Type:        category.Label(),
		Amount:      amount,
		Count:       count,
		Description: description,
	})
}

// close materializes the ledger sorted by total payout descending, ties
// by owner name.
func (l *ledger) close() ([]payout.OwnerPayout, float64) {
	out := make([]payout.OwnerPayout, 0, len(l.totals))
	seasonTotal := 0.0
	for owner, total := range l.totals {
		seasonTotal += total
		out = append(out, payout.OwnerPayout{
			Owner:       owner,
			TotalPayout: round2(total),
			Details:     l.details[owner],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPayout != out[j].TotalPayout {
			return out[i].TotalPayout > out[j].TotalPayout
		}
		return out[i].Owner < out[j].Owner
	})
	return out, round2(seasonTotal)
}

// finalStandings orders teams by final rank, falling back to playoff
// seed, then to the bottom of the table. Name breaks remaining ties.
func finalStandings(teams []season.Team) []season.Team {
	sorted := make([]season.Team, len(teams))
	copy(sorted, teams)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := standingRank(sorted[i]), standingRank(sorted[j])
		if ri != rj {
			return ri < rj
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

func standingRank(t season.Team) int {
	if t.FinalRank > 0 {
		return t.FinalRank
	}
	if t.PlayoffSeed > 0 {
		return t.PlayoffSeed
	}
	return unseededRank
}

// regularSeasonLeader sums each owner's points across non-playoff
// matchups and returns the strict maximum, ties going to the first
// owner name in ascending order.
func regularSeasonLeader(record season.Record) (string, float64, bool) {
	totals := map[string]float64{}
	for _, matchup := range record.Matchups {
		if matchup.Playoff {
			continue
		}
		for _, side := range []season.Side{matchup.Away, matchup.Home} {
			if side.Present() && side.Score > 0 {
				totals[side.Owner] += round2(side.Score)
			}
		}
	}
	if len(totals) == 0 {
		return "", 0, false
	}

	leader, best := "", 0.0
	for _, owner := range sortedKeys(totals) {
		if totals[owner] > best {
			leader, best = owner, totals[owner]
		}
	}
	return leader, best, true
}

// weeklyHighs returns the single highest-scoring owner per week, for
// every week with at least one positive score. Playoff weeks count.
func weeklyHighs(record season.Record) []WeeklyHigh {
	highs := map[int]WeeklyHigh{}
	for _, matchup := range record.Matchups {
		if matchup.Week <= 0 {
			continue
		}
		for _, side := range []season.Side{matchup.Away, matchup.Home} {
			if !side.Present() || side.Score <= 0 {
				continue
			}
			current, ok := highs[matchup.Week]
			if !ok || side.Score > current.Score ||
				(side.Score == current.Score && side.Owner < current.Owner) {
				highs[matchup.Week] = WeeklyHigh{Week: matchup.Week, Owner: side.Owner, Score: side.Score}
			}
		}
	}

	out := make([]WeeklyHigh, 0, len(highs))
	for _, high := range highs {
		out = append(out, high)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
