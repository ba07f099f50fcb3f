package season

import "testing"

func TestTeamWinPct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		team Team
		want float64
	}{
		{name: "empty record", team: Team{}, want: 0},
		{name: "all wins", team: Team{Wins: 14}, want: 1},
		{name: "even split", team: Team{Wins: 7, Losses: 7}, want: 0.5},
		{name: "tie counts half", team: Team{Wins: 7, Losses: 6, Ties: 1}, want: 7.5 / 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.team.WinPct(); got != tt.want {
				t.Fatalf("WinPct()=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestMatchupScoreable(t *testing.T) {
	t.Parallel()

	playable := Matchup{
		Home: Side{TeamID: 1, Score: 101.5},
		Away: Side{TeamID: 2, Score: 99.0},
	}
	if !playable.Scoreable() {
		t.Fatalf("expected matchup with two scored sides to be scoreable")
	}

	bye := Matchup{Home: Side{TeamID: 1, Score: 101.5}}
	if bye.Scoreable() {
		t.Fatalf("expected bye matchup to be excluded")
	}

	unplayed := Matchup{
		Home: Side{TeamID: 1},
		Away: Side{TeamID: 2},
	}
	if unplayed.Scoreable() {
		t.Fatalf("expected zero-score matchup to be excluded")
	}
}

func TestMatchupWinner(t *testing.T) {
	t.Parallel()

	m := Matchup{
		Home: Side{TeamID: 1, Score: 101.5},
		Away: Side{TeamID: 2, Score: 99.0},
	}
	winner := m.Winner()
	if winner == nil || winner.TeamID != 1 {
		t.Fatalf("expected home side to win, got %+v", winner)
	}

	tied := Matchup{
		Home: Side{TeamID: 1, Score: 100},
		Away: Side{TeamID: 2, Score: 100},
	}
	if tied.Winner() != nil {
		t.Fatalf("expected no winner on a tied score")
	}
}

func TestRecordFailedAndLookup(t *testing.T) {
	t.Parallel()

	record := Record{
		Year:  2023,
		Teams: []Team{{ID: 4, Name: "Delta Dogs"}},
	}
	if record.Failed() {
		t.Fatalf("expected record without error to report success")
	}
	team, ok := record.TeamByID(4)
	if !ok || team.Name != "Delta Dogs" {
		t.Fatalf("unexpected lookup result: %+v ok=%v", team, ok)
	}
	if _, ok := record.TeamByID(99); ok {
		t.Fatalf("expected missing team lookup to fail")
	}

	failed := Record{Year: 2020, Err: "fetch failed"}
	if !failed.Failed() {
		t.Fatalf("expected record with error to report failure")
	}
}
