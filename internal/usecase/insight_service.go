package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/leagueledger/league-ledger/internal/domain/season"
	"github.com/leagueledger/league-ledger/internal/platform/logging"
)

const (
	InsightStatusOK          = "ok"
	InsightStatusUnavailable = "unavailable"

	recentMatchupWindow = 8
)

type insightGenerator interface {
	Available() bool
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

type insightSeasonProvider interface {
	Season(ctx context.Context, year int) season.Record
	CurrentStandings(ctx context.Context) Standings
	CurrentSeason() int
}

// InsightReport is the narrative collaborator's answer. Status is
// always populated; a provider failure degrades to the unavailable
// status instead of an error so the surrounding report never breaks.
type InsightReport struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Insights string `json:"insights,omitempty"`
	Model    string `json:"model,omitempty"`
	Question string `json:"question,omitempty"`
}

// InsightService feeds a plain-text season summary to the narrative
// provider and relays the generated commentary.
type InsightService struct {
	generator insightGenerator
	seasons   insightSeasonProvider
	logger    *logging.Logger
}

func NewInsightService(generator insightGenerator, seasons insightSeasonProvider, logger *logging.Logger) *InsightService {
	if logger == nil {
		logger = logging.Default()
	}
	return &InsightService{generator: generator, seasons: seasons, logger: logger}
}

// SeasonInsights generates commentary on the current season.
func (s *InsightService) SeasonInsights(ctx context.Context) InsightReport {
	ctx, span := startUsecaseSpan(ctx, "usecase.InsightService.SeasonInsights")
	defer span.End()

	return s.generate(ctx, "")
}

// Ask answers a free-text question about the current season.
func (s *InsightService) Ask(ctx context.Context, question string) (InsightReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.InsightService.Ask")
	defer span.End()

	question = strings.TrimSpace(question)
	if question == "" {
		return InsightReport{}, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}

	report := s.generate(ctx, question)
	report.Question = question
	return report, nil
}

func (s *InsightService) generate(ctx context.Context, question string) InsightReport {
	if s.generator == nil || !s.generator.Available() {
		return InsightReport{
			Status:  InsightStatusUnavailable,
			Message: "no insight provider configured",
		}
	}

	prompt := s.buildSummary(ctx)
	if question != "" {
		prompt += "\n\nQuestion: " + question
	} else {
		prompt += "\n\nWrite three short insights about the state of the league."
	}

	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.WarnContext(ctx, "insight generation failed", "error", err.Error())
		return InsightReport{
			Status:  InsightStatusUnavailable,
			Message: "insight provider is unavailable",
		}
	}

	return InsightReport{
		Status:   InsightStatusOK,
		Insights: text,
		Model:    s.generator.Model(),
	}
}

// buildSummary renders the current season as plain text: the standings
// table followed by the most recent scored matchups.
func (s *InsightService) buildSummary(ctx context.Context) string {
	var b strings.Builder

	currentSeason := s.seasons.CurrentSeason()
	fmt.Fprintf(&b, "Fantasy Football League - %d Season\n", currentSeason)

	standings := s.seasons.CurrentStandings(ctx)
	if len(standings.Standings) > 0 {
		fmt.Fprintf(&b, "\nCurrent Season Teams (%d total):\n", standings.TotalTeams)
		for _, row := range standings.Standings {
			fmt.Fprintf(&b, "- %s: %d-%d record, %.1f points%s\n",
				row.Owner, row.Wins, row.Losses, row.PointsFor, performanceNote(row))
		}
	}

	record := s.seasons.Season(ctx, currentSeason)
	recent := recentScoredMatchups(record, recentMatchupWindow)
	if len(recent) > 0 {
		fmt.Fprintf(&b, "\nRecent Matchups (Last %d games):\n", len(recent))
		for _, matchup := range recent {
			fmt.Fprintf(&b, "Week %d: %s (%.1f) vs %s (%.1f)\n",
				matchup.Week, matchup.Away.Owner, matchup.Away.Score, matchup.Home.Owner, matchup.Home.Score)
		}
	}

	return b.String()
}

func performanceNote(row StandingRow) string {
	decided := row.Wins + row.Losses
	if decided == 0 || row.PointsFor <= 0 {
		return ""
	}
	avg := row.PointsFor / float64(decided)
	switch {
	case avg > 120:
		return " (high scorer)"
	case avg < 80:
		return " (struggling offense)"
	default:
		return ""
	}
}

func recentScoredMatchups(record season.Record, limit int) []season.Matchup {
	var scored []season.Matchup
	for _, matchup := range record.Matchups {
		if matchup.Scoreable() {
			scored = append(scored, matchup)
		}
	}
	if len(scored) > limit {
		scored = scored[len(scored)-limit:]
	}
	return scored
}

var _ insightSeasonProvider = (*SeasonService)(nil)
