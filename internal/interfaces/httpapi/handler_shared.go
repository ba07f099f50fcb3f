package httpapi

import (
	"context"

	"github.com/leagueledger/league-ledger/internal/domain/season"
)

type seasonTeamDTO struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Owner         string  `json:"owner"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	PointsFor     float64 `json:"points_for"`
	PointsAgainst float64 `json:"points_against"`
	PlayoffSeed   int     `json:"playoff_seed"`
	FinalRank     int     `json:"final_rank"`
}

type matchupSideDTO struct {
	TeamID   int     `json:"team_id"`
	TeamName string  `json:"team_name"`
	Owner    string  `json:"owner"`
	Score    float64 `json:"score"`
}

type matchupDTO struct {
	Week    int             `json:"week"`
	Playoff bool            `json:"playoff"`
	Home    *matchupSideDTO `json:"home,omitempty"`
	Away    *matchupSideDTO `json:"away,omitempty"`
}

type seasonDTO struct {
	Year     int             `json:"year"`
	Teams    []seasonTeamDTO `json:"teams"`
	Matchups []matchupDTO    `json:"matchups"`
	Champion *seasonTeamDTO  `json:"champion,omitempty"`
	RunnerUp *seasonTeamDTO  `json:"runner_up,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func seasonToDTO(ctx context.Context, record season.Record) seasonDTO {
	ctx, span := startSpan(ctx, "httpapi.seasonToDTO")
	defer span.End()

	teams := make([]seasonTeamDTO, 0, len(record.Teams))
	for _, t := range record.Teams {
		teams = append(teams, seasonTeamToDTO(t))
	}

	matchups := make([]matchupDTO, 0, len(record.Matchups))
	for _, m := range record.Matchups {
		matchups = append(matchups, matchupToDTO(ctx, m))
	}

	dto := seasonDTO{
		Year:     record.Year,
		Teams:    teams,
		Matchups: matchups,
		Error:    record.Err,
	}
	if record.Champion != nil {
		champion := seasonTeamToDTO(*record.Champion)
		dto.Champion = &champion
	}
	if record.RunnerUp != nil {
		runnerUp := seasonTeamToDTO(*record.RunnerUp)
		dto.RunnerUp = &runnerUp
	}

	return dto
}

func seasonTeamToDTO(t season.Team) seasonTeamDTO {
	return seasonTeamDTO{
		ID:            t.ID,
		Name:          t.Name,
		Owner:         t.Owner,
		Wins:          t.Wins,
		Losses:        t.Losses,
		Ties:          t.Ties,
		PointsFor:     t.PointsFor,
		PointsAgainst: t.PointsAgainst,
		PlayoffSeed:   t.PlayoffSeed,
		FinalRank:     t.FinalRank,
	}
}

func matchupToDTO(ctx context.Context, m season.Matchup) matchupDTO {
	ctx, span := startSpan(ctx, "httpapi.matchupToDTO")
	defer span.End()

	dto := matchupDTO{Week: m.Week, Playoff: m.Playoff}
	if m.Home.Present() {
		dto.Home = matchupSideToDTO(m.Home)
	}
	if m.Away.Present() {
		dto.Away = matchupSideToDTO(m.Away)
	}

	return dto
}

func matchupSideToDTO(s season.Side) *matchupSideDTO {
	return &matchupSideDTO{
		TeamID:   s.TeamID,
		TeamName: s.TeamName,
		Owner:    s.Owner,
		Score:    s.Score,
	}
}
