package game

import (
	"github.com/gayagur/blackjack-hackathon/engine"
)

// EventType represents the type of a table event pushed to observers.
type EventType string

// Constants defining the various EventTypes emitted while a round plays out.
const (
	EventRoundStart    EventType = "round_start"    // Public: a new round is beginning.
	EventBetPrompt     EventType = "bet_prompt"     // Private: the player must place a bet.
	EventBetPlaced     EventType = "bet_placed"     // Public: a bet was accepted.
	EventCardDealt     EventType = "card_dealt"     // Public: a card hit the table.
	EventTurnPrompt    EventType = "turn_prompt"    // Private: the player must hit or stand.
	EventPlayerBust    EventType = "player_bust"    // Public: a hand went over 21.
	EventDealerReveal  EventType = "dealer_reveal"  // Public: the hole card was turned over.
	EventRoundResolved EventType = "round_resolved" // Public: outcome and payout for a hand.
	EventGameFinished  EventType = "game_finished"  // Public: the session is over, includes stats.
)

// Event is the standard structure for announcing table state changes.
// Optional fields are zero when they don't apply to the event type.
type Event struct {
	Type  EventType `json:"type"`
	Round int       `json:"round,omitempty"`
	Seat  string    `json:"seat,omitempty"` // Player name at multi-seat tables.

	Card     engine.Card `json:"card,omitempty"`
	ToDealer bool        `json:"toDealer,omitempty"`
	Hidden   bool        `json:"hidden,omitempty"` // Dealt face down (the hole card).

	Bet    int `json:"bet,omitempty"`
	Chips  int `json:"chips,omitempty"`
	Payout int `json:"payout,omitempty"`

	Outcome engine.Outcome `json:"outcome,omitempty"`

	PlayerHand engine.Hand `json:"playerHand,omitempty"`
	DealerHand engine.Hand `json:"dealerHand,omitempty"`

	Stats *Stats `json:"stats,omitempty"` // Populated on game_finished only.
}

// EmitFn delivers an Event to whoever is watching a session.
type EmitFn func(ev Event)
