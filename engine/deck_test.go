package engine

import "testing"

func TestDeckDrawInRange(t *testing.T) {
	d := NewDeck(42)
	for i := 0; i < 10000; i++ {
		c := d.Draw()
		if c.Rank() < 1 || c.Rank() > 13 {
			t.Fatalf("draw %d: rank %d out of range", i, c.Rank())
		}
		if c.Suit() > 3 {
			t.Fatalf("draw %d: suit %d out of range", i, c.Suit())
		}
	}
}

func TestDeckDeterministicForSeed(t *testing.T) {
	a, b := NewDeck(7), NewDeck(7)
	for i := 0; i < 100; i++ {
		if ca, cb := a.Draw(), b.Draw(); ca != cb {
			t.Fatalf("draw %d diverged: %v vs %v", i, ca, cb)
		}
	}
}

// TestDeckNeverExhausts draws far past 52 cards: the shoe is conceptually
// infinite and has no exhaustion error path.
func TestDeckNeverExhausts(t *testing.T) {
	d := NewDeck(1)
	seen := make(map[Card]int)
	for i := 0; i < 52*100; i++ {
		seen[d.Draw()]++
	}
	if len(seen) != 52 {
		t.Errorf("expected all 52 distinct cards over 5200 draws, saw %d", len(seen))
	}
}
