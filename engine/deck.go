package engine

// Deck is a conceptually infinite shoe: every draw samples rank and suit
// independently and uniformly. There is no exhaustion and no shuffle state.
type Deck struct {
	rng uint64
}

// NewDeck returns a deck seeded for the embedded xorshift64 RNG.
func NewDeck(seed uint64) *Deck {
	if seed == 0 {
		seed = 1 // xorshift can't start at 0
	}
	return &Deck{rng: seed}
}

func (d *Deck) nextRand() uint64 {
	x := d.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	d.rng = x
	return x
}

// randN returns a random number in [0, n).
func (d *Deck) randN(n uint64) uint64 {
	return d.nextRand() % n
}

// Draw returns one uniformly random card.
func (d *Deck) Draw() Card {
	rank := uint8(d.randN(13)) + 1
	suit := uint8(d.randN(4))
	return NewCard(suit, rank)
}
