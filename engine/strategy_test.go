package engine

import "testing"

func hard(t *testing.T, total int) Hand {
	t.Helper()
	if total < 4 || total > 20 {
		t.Fatalf("cannot build a two-card aceless hand totaling %d", total)
	}
	a := total / 2
	b := total - a
	if a > 10 {
		a, b = 10, total-10
	}
	return Hand{NewCard(SuitHearts, uint8(a)), NewCard(SuitClubs, uint8(b))}
}

func soft(t *testing.T, total int) Hand {
	t.Helper()
	// Ace (11) plus a kicker.
	kicker := total - 11
	if kicker < 2 || kicker > 10 {
		t.Fatalf("cannot build soft %d from ace + one card", total)
	}
	return Hand{NewCard(SuitSpades, RankAce), NewCard(SuitHearts, uint8(kicker))}
}

// TestStrategyTable pins the documented default table against hand/up-card
// pairs covering every branch.
func TestStrategyTable(t *testing.T) {
	s := DefaultStrategy()
	up := func(rank uint8) Card { return NewCard(SuitDiamonds, rank) }

	cases := []struct {
		name string
		hand Hand
		up   Card
		want Decision
	}{
		{"21 always stands", handWithTotal(t, 21), up(RankAce), DecisionStand},
		{"hard 17 stands vs anything", hard(t, 17), up(RankTen), DecisionStand},
		{"hard 16 stands vs dealer 6", hard(t, 16), up(RankSix), DecisionStand},
		{"hard 16 hits vs dealer 7", hard(t, 16), up(RankSeven), DecisionHit},
		{"hard 13 stands vs dealer 2", hard(t, 13), up(RankTwo), DecisionStand},
		{"hard 13 hits vs dealer ace", hard(t, 13), up(RankAce), DecisionHit},
		{"hard 12 hits vs dealer 3", hard(t, 12), up(RankThree), DecisionHit},
		{"hard 12 stands vs dealer 4", hard(t, 12), up(RankFour), DecisionStand},
		{"hard 12 stands vs dealer 6", hard(t, 12), up(RankSix), DecisionStand},
		{"hard 12 hits vs dealer 7", hard(t, 12), up(RankSeven), DecisionHit},
		{"hard 11 hits", hard(t, 11), up(RankSix), DecisionHit},
		{"8 or less always hits", hard(t, 8), up(RankSix), DecisionHit},
		{"soft 19 stands", soft(t, 19), up(RankTen), DecisionStand},
		{"soft 18 stands vs dealer 8", soft(t, 18), up(RankEight), DecisionStand},
		{"soft 18 hits vs dealer 9", soft(t, 18), up(RankNine), DecisionHit},
		{"soft 18 hits vs dealer ace", soft(t, 18), up(RankAce), DecisionHit},
		{"soft 17 hits", soft(t, 17), up(RankTwo), DecisionHit},
	}
	for _, tc := range cases {
		if got := s.Decide(tc.hand, tc.up); got != tc.want {
			t.Errorf("%s: expected %v, got %v (hand %v vs %v)",
				tc.name, tc.want, got, tc.hand, tc.up)
		}
	}
}

// TestStrategyNeverDoubles documents that double-down is a chip decision
// made above the table, not by it.
func TestStrategyNeverDoubles(t *testing.T) {
	s := DefaultStrategy()
	for total := 4; total <= 20; total++ {
		for rank := RankAce; rank <= RankKing; rank++ {
			d := s.Decide(hard(t, total), NewCard(SuitClubs, rank))
			if d == DecisionDouble {
				t.Fatalf("table returned double for hard %d vs %d", total, rank)
			}
		}
	}
}
