package usecase

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/leagueledger/league-ledger/internal/domain/payout"
	"github.com/leagueledger/league-ledger/internal/domain/season"
)

func fourTeamSeason(year int) season.Record {
	teams := []season.Team{
		{ID: 1, Name: "Alpha Squad", Owner: "Owner A", Wins: 11, Losses: 3, FinalRank: 1, PlayoffSeed: 1},
		{ID: 2, Name: "Bravo Bunch", Owner: "Owner B", Wins: 9, Losses: 5, FinalRank: 2, PlayoffSeed: 2},
		{ID: 3, Name: "Charlie Crew", Owner: "Owner C", Wins: 8, Losses: 6, FinalRank: 3, PlayoffSeed: 3},
		{ID: 4, Name: "Delta Dogs", Owner: "Owner D", Wins: 5, Losses: 9, FinalRank: 4, PlayoffSeed: 4},
	}
	record := season.Record{Year: year, Teams: teams}
	record.Champion = &record.Teams[0]
	record.RunnerUp = &record.Teams[1]
	return record
}

func payoutTestService(records []season.Record, currentSeason int) *PayoutService {
	source := &stubSeasonSource{records: records, currentSeason: currentSeason}
	return NewPayoutService(source, payout.DefaultRules())
}

func ownerTotal(summary SeasonPayoutSummary, owner string) float64 {
	for _, entry := range summary.Payouts {
		if entry.Owner == owner {
			return entry.TotalPayout
		}
	}
	return 0
}

func TestPayoutService_SeasonPayouts_PodiumOnly(t *testing.T) {
	t.Parallel()

	service := payoutTestService([]season.Record{fourTeamSeason(2022)}, 2024)

	summary := service.SeasonPayouts(context.Background(), 2022)
	if summary.Error != "" {
		t.Fatalf("unexpected error: %q", summary.Error)
	}
	if len(summary.Payouts) != 4 {
		t.Fatalf("expected 4 owners paid, got %d", len(summary.Payouts))
	}
	if summary.SeasonTotal != 570 {
		t.Fatalf("expected podium total 570, got %v", summary.SeasonTotal)
	}

	expected := map[string]float64{
		"Owner A": 300,
		"Owner B": 150,
		"Owner C": 70,
		"Owner D": 50,
	}
	for owner, amount := range expected {
		if got := ownerTotal(summary, owner); got != amount {
			t.Fatalf("owner %s: expected %v, got %v", owner, amount, got)
		}
	}
	if summary.Payouts[0].Owner != "Owner A" {
		t.Fatalf("payouts should sort by total desc: %+v", summary.Payouts[0])
	}
}

func TestPayoutService_SeasonPayouts_WeeklyHighAndMostPoints(t *testing.T) {
	t.Parallel()

	record := fourTeamSeason(2022)
	alpha, bravo := record.Teams[0], record.Teams[1]
	record.Matchups = []season.Matchup{
		{Week: 1, Away: sideFor(alpha, 150), Home: sideFor(bravo, 100)},
		{Week: 2, Away: sideFor(bravo, 95), Home: sideFor(alpha, 140)},
		// Playoff week still pays a weekly high but not regular points.
		{Week: 15, Playoff: true, Away: sideFor(alpha, 700), Home: sideFor(bravo, 90)},
		// A zero-score week pays nothing.
		{Week: 3, Away: sideFor(alpha, 0), Home: sideFor(bravo, 0)},
	}

	service := payoutTestService([]season.Record{record}, 2024)
	summary := service.SeasonPayouts(context.Background(), 2022)

	if summary.RegularSeasonLeader == nil || summary.RegularSeasonLeader.Owner != "Owner A" {
		t.Fatalf("unexpected regular season leader: %+v", summary.RegularSeasonLeader)
	}
	if summary.RegularSeasonLeader.Points != 290 {
		t.Fatalf("playoff points must not count toward the regular season total: %v", summary.RegularSeasonLeader.Points)
	}

	if len(summary.WeeklyHighs) != 3 {
		t.Fatalf("expected weekly highs for weeks 1, 2 and 15, got %+v", summary.WeeklyHighs)
	}
	for _, high := range summary.WeeklyHighs {
		if high.Owner != "Owner A" {
			t.Fatalf("unexpected weekly winner: %+v", high)
		}
	}

	var weekly *payout.Detail
	for _, entry := range summary.Payouts {
		if entry.Owner != "Owner A" {
			continue
		}
		for i := range entry.Details {
			if entry.Details[i].Category == payout.CategoryWeeklyHigh {
				weekly = &entry.Details[i]
			}
		}
	}
	if weekly == nil {
		t.Fatal("missing weekly high ledger line")
	}
	if weekly.Count != 3 || weekly.Amount != 30 {
		t.Fatalf("three weekly highs should fold into one line: %+v", weekly)
	}
	if !strings.HasPrefix(weekly.Description, "3 Weekly High Scores") {
		t.Fatalf("unexpected description %q", weekly.Description)
	}

	// Conservation: the season total is exactly the sum of owner totals.
	sum := 0.0
	for _, entry := range summary.Payouts {
		sum += entry.TotalPayout
	}
	if sum != summary.SeasonTotal {
		t.Fatalf("season total %v != owner sum %v", summary.SeasonTotal, sum)
	}
	// 570 podium + 40 most points + 3x10 weekly highs.
	if summary.SeasonTotal != 640 {
		t.Fatalf("unexpected season total %v", summary.SeasonTotal)
	}
}

func TestPayoutService_SeasonPayouts_MissingSeason(t *testing.T) {
	t.Parallel()

	service := payoutTestService([]season.Record{fourTeamSeason(2022)}, 2024)

	summary := service.SeasonPayouts(context.Background(), 1999)
	if summary.Error == "" {
		t.Fatal("expected structured error for missing season")
	}
	if summary.Season != 1999 {
		t.Fatalf("unexpected season %d", summary.Season)
	}
	if len(summary.Payouts) != 0 {
		t.Fatalf("missing season must pay nothing: %+v", summary.Payouts)
	}
}

func TestPayoutService_SeasonPayouts_FailedSeason(t *testing.T) {
	t.Parallel()

	service := payoutTestService([]season.Record{{Year: 2022, Err: "all hosts failed"}}, 2024)

	summary := service.SeasonPayouts(context.Background(), 2022)
	if summary.Error == "" {
		t.Fatal("expected structured error for failed season")
	}
}

func TestPayoutService_ThirdFourthByPlayoffSeedFallback(t *testing.T) {
	t.Parallel()

	record := fourTeamSeason(2022)
	// No final ranks below the podium: seed decides 3rd and 4th.
	record.Teams[2].FinalRank = 0
	record.Teams[3].FinalRank = 0

	service := payoutTestService([]season.Record{record}, 2024)
	summary := service.SeasonPayouts(context.Background(), 2022)

	if got := ownerTotal(summary, "Owner C"); got != 70 {
		t.Fatalf("seed 3 should take 3rd place money, got %v", got)
	}
	if got := ownerTotal(summary, "Owner D"); got != 50 {
		t.Fatalf("seed 4 should take 4th place money, got %v", got)
	}
}

func TestPayoutService_MostPointsTieBreaksByOwnerName(t *testing.T) {
	t.Parallel()

	record := fourTeamSeason(2022)
	alpha, bravo := record.Teams[0], record.Teams[1]
	record.Matchups = []season.Matchup{
		{Week: 1, Away: sideFor(alpha, 120), Home: sideFor(bravo, 120)},
	}

	service := payoutTestService([]season.Record{record}, 2024)
	summary := service.SeasonPayouts(context.Background(), 2022)

	if summary.RegularSeasonLeader == nil || summary.RegularSeasonLeader.Owner != "Owner A" {
		t.Fatalf("tie should break by ascending owner name: %+v", summary.RegularSeasonLeader)
	}
}

func TestPayoutService_AllSeasonPayouts_ExcludesCurrentSeason(t *testing.T) {
	t.Parallel()

	records := []season.Record{fourTeamSeason(2022), fourTeamSeason(2023), fourTeamSeason(2024)}
	service := payoutTestService(records, 2024)

	report := service.AllSeasonPayouts(context.Background())
	if report.TotalSeasons != 2 {
		t.Fatalf("current season must be excluded, got %d seasons", report.TotalSeasons)
	}
	if report.Seasons[0].Season != 2023 || report.Seasons[1].Season != 2022 {
		t.Fatalf("seasons should sort most recent first: %+v", report.Seasons)
	}
	if report.ExcludedCurrentSeason != 2024 {
		t.Fatalf("unexpected excluded season %d", report.ExcludedCurrentSeason)
	}
}

func TestPayoutService_CumulativePayouts(t *testing.T) {
	t.Parallel()

	records := []season.Record{fourTeamSeason(2022), fourTeamSeason(2023)}
	service := payoutTestService(records, 2024)
	ctx := context.Background()

	report := service.CumulativePayouts(ctx)
	if report.TotalOwners != 4 {
		t.Fatalf("expected 4 owners, got %d", report.TotalOwners)
	}
	if report.TotalLeaguePayouts != 1140 {
		t.Fatalf("expected 2x570 league payouts, got %v", report.TotalLeaguePayouts)
	}

	leader := report.Owners[0]
	if leader.Owner != "Owner A" || leader.TotalEarnings != 600 {
		t.Fatalf("unexpected leader: %+v", leader)
	}
	if leader.Championships != 2 || leader.SeasonsParticipated != 2 {
		t.Fatalf("unexpected counts: %+v", leader)
	}
	if leader.EarningsBySeason[2022] != 300 || leader.EarningsBySeason[2023] != 300 {
		t.Fatalf("unexpected per-season earnings: %+v", leader.EarningsBySeason)
	}
	if leader.AvgEarningsPerSeason != 300 {
		t.Fatalf("unexpected average %v", leader.AvgEarningsPerSeason)
	}

	// Conservation across the fold.
	sum := 0.0
	for _, entry := range report.Owners {
		sum += entry.TotalEarnings
	}
	if sum != report.TotalLeaguePayouts {
		t.Fatalf("cumulative total %v != owner sum %v", report.TotalLeaguePayouts, sum)
	}

	// The fold is idempotent.
	if !reflect.DeepEqual(report, service.CumulativePayouts(ctx)) {
		t.Fatal("CumulativePayouts is not idempotent")
	}
}

func TestPayoutService_Summary(t *testing.T) {
	t.Parallel()

	record := fourTeamSeason(2022)
	alpha, bravo := record.Teams[0], record.Teams[1]
	record.Matchups = []season.Matchup{
		{Week: 1, Away: sideFor(alpha, 150), Home: sideFor(bravo, 100)},
		{Week: 2, Away: sideFor(bravo, 130), Home: sideFor(alpha, 90)},
	}

	service := payoutTestService([]season.Record{record}, 2024)
	summary := service.Summary(context.Background())

	if summary.TotalSeasons != 1 {
		t.Fatalf("unexpected season count %d", summary.TotalSeasons)
	}
	if summary.TotalWeeks != 2 || summary.TotalWeeklyPayouts != 20 {
		t.Fatalf("unexpected weekly volume: %+v", summary)
	}
	// 570 podium + 40 most points + 2x10 weekly highs.
	if summary.TotalPayouts != 630 || summary.AvgPayoutPerSeason != 630 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	if summary.PayoutStructure != payout.DefaultRules() {
		t.Fatalf("unexpected rule table: %+v", summary.PayoutStructure)
	}
}
