package game

import "github.com/gayagur/blackjack-hackathon/engine"

// Stats accumulates per-session play statistics.
// Streaks are signed: positive runs count consecutive wins, negative runs
// consecutive losses. Pushes leave the streak untouched.
type Stats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Pushes int `json:"pushes"`

	Blackjacks  int `json:"blackjacks"`
	Busts       int `json:"busts"`
	DealerBusts int `json:"dealerBusts"`

	Hits   int `json:"hits"`
	Stands int `json:"stands"`

	Doubles     int `json:"doubles"`
	DoublesWon  int `json:"doublesWon"`
	DoublesLost int `json:"doublesLost"`

	CurrentStreak int `json:"currentStreak"`
	BestStreak    int `json:"bestStreak"`
	WorstStreak   int `json:"worstStreak"`

	MaxChips int `json:"maxChips"`
	MinChips int `json:"minChips"`

	minSet bool
}

// RecordOutcome folds one resolved hand into the counters.
func (st *Stats) RecordOutcome(out engine.Outcome, natural, doubled bool) {
	switch out {
	case engine.OutcomeWin:
		st.Wins++
		if natural {
			st.Blackjacks++
		}
		if doubled {
			st.DoublesWon++
		}
		if st.CurrentStreak < 0 {
			st.CurrentStreak = 0
		}
		st.CurrentStreak++
		if st.CurrentStreak > st.BestStreak {
			st.BestStreak = st.CurrentStreak
		}
	case engine.OutcomeLoss:
		st.Losses++
		if doubled {
			st.DoublesLost++
		}
		if st.CurrentStreak > 0 {
			st.CurrentStreak = 0
		}
		st.CurrentStreak--
		if st.CurrentStreak < st.WorstStreak {
			st.WorstStreak = st.CurrentStreak
		}
	case engine.OutcomePush:
		st.Pushes++
	}
}

// RecordChips tracks the balance extremes across a casino session.
func (st *Stats) RecordChips(chips int) {
	if chips > st.MaxChips {
		st.MaxChips = chips
	}
	if !st.minSet || chips < st.MinChips {
		st.MinChips = chips
		st.minSet = true
	}
}

// Rounds returns the number of resolved hands.
func (st *Stats) Rounds() int {
	return st.Wins + st.Losses + st.Pushes
}

// WinRate returns the fraction of resolved hands won, or 0 before any resolve.
func (st *Stats) WinRate() float64 {
	n := st.Rounds()
	if n == 0 {
		return 0
	}
	return float64(st.Wins) / float64(n)
}
