package game

import (
	"context"

	"github.com/google/uuid"

	"github.com/gayagur/blackjack-hackathon/engine"
)

// Mode selects how a session is played.
type Mode uint8

const (
	// ModeClassic is the plain fixed-rounds game with no chips.
	ModeClassic Mode = iota
	// ModeCasino adds a bankroll, betting and double-down.
	ModeCasino
	// ModeBot plays classic rounds with an automated strategy deciding.
	ModeBot
	// ModeMultiplayer seats the session at a shared room table.
	ModeMultiplayer
)

func (m Mode) String() string {
	switch m {
	case ModeClassic:
		return "classic"
	case ModeCasino:
		return "casino"
	case ModeBot:
		return "bot"
	case ModeMultiplayer:
		return "multiplayer"
	}
	return "unknown"
}

// DecisionSource supplies a player's choices to the dealer. Implementations
// block until the player answers or ctx is done; the dealer applies its own
// timeout through the context and treats an expired deadline as a stand
// (or a minimum bet during the betting phase).
type DecisionSource interface {
	// NextBet asks for a wager in [min, max].
	NextBet(ctx context.Context, min, max int) (int, error)
	// NextDecision asks whether to hit, stand or (when canDouble) double down.
	NextDecision(ctx context.Context, hand engine.Hand, dealerUp engine.Card, canDouble bool) (engine.Decision, error)
}

// Session is one player's seat at a game, across all its rounds.
type Session struct {
	ID   uuid.UUID
	Name string
	Mode Mode

	RoundsTotal     int
	RoundsCompleted int

	Chips      int // Casino bankroll; 0 and unused in classic play.
	CurrentBet int
	Doubled    bool

	Hand  engine.Hand
	Stats Stats

	Source DecisionSource
	Emit   EmitFn
}

// NewSession creates a session with a fresh ID. emit may be nil for callers
// that don't observe events.
func NewSession(name string, mode Mode, rounds int, src DecisionSource, emit EmitFn) *Session {
	id, _ := uuid.NewRandom()
	if emit == nil {
		emit = func(Event) {}
	}
	return &Session{
		ID:          id,
		Name:        name,
		Mode:        mode,
		RoundsTotal: rounds,
		Source:      src,
		Emit:        emit,
	}
}

// BotSource decides with a fixed strategy table. It never doubles down and
// always wagers the table minimum.
type BotSource struct {
	Strategy engine.Strategy
}

// NewBotSource returns a source playing basic strategy.
func NewBotSource() *BotSource {
	return &BotSource{Strategy: engine.DefaultStrategy()}
}

func (b *BotSource) NextBet(_ context.Context, min, _ int) (int, error) {
	return min, nil
}

func (b *BotSource) NextDecision(_ context.Context, hand engine.Hand, dealerUp engine.Card, _ bool) (engine.Decision, error) {
	return b.Strategy.Decide(hand, dealerUp), nil
}
