// Package engine implements the Blackjack table rules.
//
// This package is dependency-free and side-effect-free: cards and hands are
// plain value types, the deck is a seedable RNG, and outcome resolution is a
// pure function. Everything network- or session-shaped lives above it.
package engine

import (
	"strconv"
	"strings"
)

// Suit constants, packed into the upper 4 bits of Card. The numbering is
// the wire protocol's: 0 Hearts, 1 Diamonds, 2 Clubs, 3 Spades.
const (
	SuitHearts   uint8 = 0
	SuitDiamonds uint8 = 1
	SuitClubs    uint8 = 2
	SuitSpades   uint8 = 3
)

// Rank constants follow the wire protocol's 1-based ranks.
const (
	RankAce   uint8 = 1
	RankTwo   uint8 = 2
	RankThree uint8 = 3
	RankFour  uint8 = 4
	RankFive  uint8 = 5
	RankSix   uint8 = 6
	RankSeven uint8 = 7
	RankEight uint8 = 8
	RankNine  uint8 = 9
	RankTen   uint8 = 10
	RankJack  uint8 = 11
	RankQueen uint8 = 12
	RankKing  uint8 = 13
)

// Card is a packed uint8: upper 4 bits = suit, lower 4 bits = rank (1–13).
type Card uint8

// NewCard constructs a Card from suit and rank.
func NewCard(suit, rank uint8) Card {
	return Card((suit << 4) | (rank & 0x0F))
}

// Suit returns the suit bits (upper 4).
func (c Card) Suit() uint8 { return uint8(c) >> 4 }

// Rank returns the rank bits (lower 4).
func (c Card) Rank() uint8 { return uint8(c) & 0x0F }

// IsAce reports whether the card is an ace.
func (c Card) IsAce() bool { return c.Rank() == RankAce }

// Value returns the Blackjack point value of the card: aces count 11 here
// (hand totals demote them to 1 as needed), face cards count 10, everything
// else counts face value.
func (c Card) Value() int {
	r := c.Rank()
	switch {
	case r == RankAce:
		return 11
	case r >= RankJack:
		return 10
	default:
		return int(r)
	}
}

var (
	suitGlyphs = [4]string{"♥", "♦", "♣", "♠"}
	rankGlyphs = [14]string{"?", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
)

// String renders the card like "K♠" or "10♥".
func (c Card) String() string {
	r, s := c.Rank(), c.Suit()
	if r < 1 || r > 13 || s > 3 {
		return "??"
	}
	return rankGlyphs[r] + suitGlyphs[s]
}

// Hand is an ordered sequence of cards; insertion order is deal order.
type Hand []Card

// Total computes the hand's Blackjack value from scratch. Aces count 11,
// then demote to 1 one at a time while the total exceeds 21. The total is
// never cached: hand composition changes on every deal.
func (h Hand) Total() int {
	total, _ := h.totalAndSoftAces()
	return total
}

// IsSoft reports whether the hand contains an ace still counted as 11.
func (h Hand) IsSoft() bool {
	total, aces := h.totalAndSoftAces()
	return aces > 0 && total <= 21
}

func (h Hand) totalAndSoftAces() (total, softAces int) {
	for _, c := range h {
		total += c.Value()
		if c.IsAce() {
			softAces++
		}
	}
	for total > 21 && softAces > 0 {
		total -= 10
		softAces--
	}
	return total, softAces
}

// IsBust reports whether the hand total exceeds 21.
func (h Hand) IsBust() bool { return h.Total() > 21 }

// IsNatural reports whether the hand is a natural blackjack: exactly two
// cards totaling 21.
func (h Hand) IsNatural() bool { return len(h) == 2 && h.Total() == 21 }

// String renders the hand like "A♠ K♦ (21)".
func (h Hand) String() string {
	if len(h) == 0 {
		return "(empty)"
	}
	var sb strings.Builder
	for i, c := range h {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(c.String())
	}
	sb.WriteString(" (")
	sb.WriteString(strconv.Itoa(h.Total()))
	sb.WriteByte(')')
	return sb.String()
}
