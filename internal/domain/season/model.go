package season

// Team is one franchise's final line for a single season.
type Team struct {
	ID            int
	Name          string
	Owner         string
	Wins          int
	Losses        int
	Ties          int
	PointsFor     float64
	PointsAgainst float64
	PlayoffSeed   int
	FinalRank     int
}

// Games counts every decided game including ties.
func (t Team) Games() int {
	return t.Wins + t.Losses + t.Ties
}

// WinPct treats a tie as half a win. Returns 0 for an empty record.
func (t Team) WinPct() float64 {
	games := t.Games()
	if games == 0 {
		return 0
	}
	return (float64(t.Wins) + 0.5*float64(t.Ties)) / float64(games)
}

// Side is one participant of a matchup. A zero TeamID means the slot
// was empty (bye or malformed schedule entry).
type Side struct {
	TeamID   int
	TeamName string
	Owner    string
	Score    float64
}

func (s Side) Present() bool {
	return s.TeamID > 0
}

// Matchup is a single scheduled game in one week.
type Matchup struct {
	Week    int
	Playoff bool
	Home    Side
	Away    Side
}

// Scoreable reports whether the matchup carries two real participants
// with strictly positive scores. Unplayed and bye games score zero and
// are excluded from every scoring statistic.
func (m Matchup) Scoreable() bool {
	return m.Home.Present() && m.Away.Present() && m.Home.Score > 0 && m.Away.Score > 0
}

// Winner returns the side that scored more points, or nil on a tie or
// when the matchup is not scoreable.
func (m Matchup) Winner() *Side {
	if !m.Scoreable() {
		return nil
	}
	switch {
	case m.Home.Score > m.Away.Score:
		return &m.Home
	case m.Away.Score > m.Home.Score:
		return &m.Away
	default:
		return nil
	}
}

// Record is the canonical shape of one season. A season that could not
// be fetched still yields a Record: Err carries the reason and the
// collections stay empty, so multi-season folds never have to branch
// on missing years.
type Record struct {
	Year     int
	Teams    []Team
	Matchups []Matchup
	Champion *Team
	RunnerUp *Team
	Err      string
}

func (r Record) Failed() bool {
	return r.Err != ""
}

// TeamByID looks up a team roster entry by its provider ID.
func (r Record) TeamByID(id int) (Team, bool) {
	for _, t := range r.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}
