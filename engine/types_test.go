package engine

import "testing"

func TestCardPacking(t *testing.T) {
	c := NewCard(SuitSpades, RankQueen)
	if c.Suit() != SuitSpades {
		t.Errorf("expected suit %d, got %d", SuitSpades, c.Suit())
	}
	if c.Rank() != RankQueen {
		t.Errorf("expected rank %d, got %d", RankQueen, c.Rank())
	}
}

func TestCardValues(t *testing.T) {
	cases := []struct {
		rank uint8
		want int
	}{
		{RankAce, 11},
		{RankTwo, 2},
		{RankNine, 9},
		{RankTen, 10},
		{RankJack, 10},
		{RankQueen, 10},
		{RankKing, 10},
	}
	for _, tc := range cases {
		c := NewCard(SuitHearts, tc.rank)
		if got := c.Value(); got != tc.want {
			t.Errorf("rank %d: expected value %d, got %d", tc.rank, tc.want, got)
		}
	}
}

// TestHandTotalAceDemotion walks the soft-ace demotion one ace at a time:
// {A,9}=20 soft, {A,A,9}=21 (one soft, one hard), {A,A,A,9}=12 (all hard).
func TestHandTotalAceDemotion(t *testing.T) {
	ace := NewCard(SuitSpades, RankAce)
	nine := NewCard(SuitHearts, RankNine)

	h := Hand{ace, nine}
	if got := h.Total(); got != 20 {
		t.Errorf("{A,9}: expected 20, got %d", got)
	}
	if !h.IsSoft() {
		t.Error("{A,9} should be soft")
	}

	h = Hand{ace, ace, nine}
	if got := h.Total(); got != 21 {
		t.Errorf("{A,A,9}: expected 21, got %d", got)
	}
	if !h.IsSoft() {
		t.Error("{A,A,9} should still hold one soft ace")
	}

	h = Hand{ace, ace, ace, nine}
	if got := h.Total(); got != 12 {
		t.Errorf("{A,A,A,9}: expected 12, got %d", got)
	}
	if h.IsSoft() {
		t.Error("{A,A,A,9} should be hard: every ace is forced to 1")
	}
}

func TestHandBust(t *testing.T) {
	h := Hand{
		NewCard(SuitHearts, RankKing),
		NewCard(SuitClubs, RankQueen),
		NewCard(SuitSpades, RankTwo),
	}
	if !h.IsBust() {
		t.Errorf("K+Q+2 = %d should bust", h.Total())
	}

	// An ace saves the same shape.
	h = Hand{
		NewCard(SuitHearts, RankKing),
		NewCard(SuitClubs, RankQueen),
		NewCard(SuitSpades, RankAce),
	}
	if h.IsBust() {
		t.Errorf("K+Q+A = %d should not bust", h.Total())
	}
}

func TestHandNatural(t *testing.T) {
	natural := Hand{NewCard(SuitSpades, RankAce), NewCard(SuitHearts, RankTen)}
	if !natural.IsNatural() {
		t.Error("A+10 opening should be a natural")
	}

	// 21 in three cards is not a natural.
	threeCard := Hand{
		NewCard(SuitSpades, RankSeven),
		NewCard(SuitHearts, RankSeven),
		NewCard(SuitClubs, RankSeven),
	}
	if threeCard.Total() != 21 {
		t.Fatalf("7+7+7 should total 21, got %d", threeCard.Total())
	}
	if threeCard.IsNatural() {
		t.Error("three-card 21 must not count as natural")
	}
}

func TestHandString(t *testing.T) {
	h := Hand{NewCard(SuitSpades, RankAce), NewCard(SuitDiamonds, RankKing)}
	if got := h.String(); got != "A♠ K♦ (21)" {
		t.Errorf("unexpected rendering %q", got)
	}
	if got := (Hand{}).String(); got != "(empty)" {
		t.Errorf("unexpected empty rendering %q", got)
	}
}
