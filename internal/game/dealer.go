package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gayagur/blackjack-hackathon/engine"
	"github.com/gayagur/blackjack-hackathon/internal/cache"
)

// Config carries the table rules a dealer enforces.
// A zero timeout disables that timer.
type Config struct {
	StartingChips   int
	MinBet          int
	MaxBet          int
	BlackjackPayout float64       // Multiplier on the bet for a winning natural.
	TurnTimeout     time.Duration // How long a player may ponder hit/stand.
	BetTimeout      time.Duration // How long a player may ponder a wager.
}

// DefaultConfig returns the house rules.
func DefaultConfig() Config {
	return Config{
		StartingChips:   1000,
		MinBet:          10,
		MaxBet:          500,
		BlackjackPayout: 1.5,
		TurnTimeout:     45 * time.Second,
		BetTimeout:      30 * time.Second,
	}
}

// Dealer runs one session through its rounds: deal, player turn, dealer
// turn, resolve, settle. It is single-threaded; all player input arrives
// through the session's DecisionSource.
type Dealer struct {
	cfg  Config
	sess *Session
	log  *logrus.Entry

	dealerHand engine.Hand
	draw       func() engine.Card

	broke bool
}

// NewDealer seats sess at a fresh table. Casino sessions receive the
// configured starting bankroll.
func NewDealer(sess *Session, cfg Config, log *logrus.Logger) *Dealer {
	deck := engine.NewDeck(uint64(time.Now().UnixNano()))
	d := &Dealer{
		cfg:  cfg,
		sess: sess,
		draw: deck.Draw,
		log: log.WithFields(logrus.Fields{
			"session": sess.ID,
			"player":  sess.Name,
			"mode":    sess.Mode.String(),
		}),
	}
	if sess.Mode == ModeCasino {
		sess.Chips = cfg.StartingChips
		sess.Stats.RecordChips(sess.Chips)
	}
	return d
}

// Broke reports whether the session ended because the bankroll fell below
// the table minimum.
func (d *Dealer) Broke() bool { return d.broke }

// DealerHand exposes the house hand, for observers after a round.
func (d *Dealer) DealerHand() engine.Hand { return d.dealerHand }

// Run plays the session to completion. It returns early with the context
// error if ctx is canceled, or with the source's error if the player's
// decision channel breaks (e.g. the connection drops).
func (d *Dealer) Run(ctx context.Context) error {
	s := d.sess
	d.log.WithField("rounds", s.RoundsTotal).Info("session starting")

	for s.RoundsCompleted < s.RoundsTotal {
		if s.Mode == ModeCasino && s.Chips < d.cfg.MinBet {
			d.broke = true
			d.log.WithField("chips", s.Chips).Info("player is broke, ending session early")
			break
		}
		if err := d.playRound(ctx); err != nil {
			// Aborted sessions still close the books on what was played.
			s.Emit(Event{Type: EventGameFinished, Round: s.RoundsCompleted, Chips: s.Chips, Stats: &s.Stats})
			return err
		}
		s.RoundsCompleted++
	}

	s.Emit(Event{Type: EventGameFinished, Round: s.RoundsCompleted, Chips: s.Chips, Stats: &s.Stats})
	d.log.WithFields(logrus.Fields{
		"rounds": s.RoundsCompleted,
		"wins":   s.Stats.Wins,
		"losses": s.Stats.Losses,
		"pushes": s.Stats.Pushes,
	}).Info("session finished")
	return nil
}

func (d *Dealer) playRound(ctx context.Context) error {
	s := d.sess
	round := s.RoundsCompleted + 1
	s.Hand = s.Hand[:0]
	d.dealerHand = d.dealerHand[:0]
	s.CurrentBet = 0
	s.Doubled = false

	s.Emit(Event{Type: EventRoundStart, Round: round, Chips: s.Chips})

	if s.Mode == ModeCasino {
		if err := d.collectBet(ctx, round); err != nil {
			return err
		}
	}

	d.dealPlayer(round)
	d.dealPlayer(round)
	d.dealDealer(round, false)
	d.dealDealer(round, true)

	busted := false
	if !s.Hand.IsNatural() {
		var err error
		busted, err = d.playerTurn(ctx, round)
		if err != nil {
			return err
		}
	}

	d.dealerTurn(round, busted)
	return d.resolve(round)
}

// collectBet prompts until the player wagers within table limits. A timed-out
// player is put in for the minimum.
func (d *Dealer) collectBet(ctx context.Context, round int) error {
	s := d.sess
	maxBet := d.cfg.MaxBet
	if s.Chips < maxBet {
		maxBet = s.Chips
	}

	for {
		s.Emit(Event{Type: EventBetPrompt, Round: round, Chips: s.Chips})
		callCtx, cancel := d.withTimeout(ctx, d.cfg.BetTimeout)
		bet, err := s.Source.NextBet(callCtx, d.cfg.MinBet, maxBet)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("collect bet: %w", err)
			}
			d.log.WithField("round", round).Warn("bet timed out, wagering the minimum")
			bet = d.cfg.MinBet
		}
		if bet < d.cfg.MinBet || bet > maxBet {
			d.log.WithFields(logrus.Fields{"round": round, "bet": bet}).Debug("bet out of range, reprompting")
			continue
		}
		s.Chips -= bet
		s.CurrentBet = bet
		s.Emit(Event{Type: EventBetPlaced, Round: round, Bet: bet, Chips: s.Chips})
		return nil
	}
}

// playerTurn drives hit/stand/double until the player stands, busts or sits
// on 21. Reports whether the hand busted.
func (d *Dealer) playerTurn(ctx context.Context, round int) (bool, error) {
	s := d.sess
	up := d.dealerHand[0]

	for s.Hand.Total() < 21 {
		canDouble := s.Mode == ModeCasino && len(s.Hand) == 2 && !s.Doubled && s.Chips >= s.CurrentBet
		s.Emit(Event{Type: EventTurnPrompt, Round: round, PlayerHand: s.Hand, Card: up})

		callCtx, cancel := d.withTimeout(ctx, d.cfg.TurnTimeout)
		dec, err := s.Source.NextDecision(callCtx, s.Hand, up, canDouble)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				return false, fmt.Errorf("next decision: %w", err)
			}
			d.log.WithField("round", round).Warn("turn timed out, standing")
			dec = engine.DecisionStand
		}

		switch dec {
		case engine.DecisionStand:
			s.Stats.Stands++
			return false, nil
		case engine.DecisionDouble:
			if !canDouble {
				d.log.WithField("round", round).Debug("double down not available, reprompting")
				continue
			}
			s.Stats.Doubles++
			s.Chips -= s.CurrentBet
			s.CurrentBet *= 2
			s.Doubled = true
			d.dealPlayer(round)
			if s.Hand.IsBust() {
				s.Stats.Busts++
				s.Emit(Event{Type: EventPlayerBust, Round: round, PlayerHand: s.Hand})
				return true, nil
			}
			return false, nil
		default:
			s.Stats.Hits++
			d.dealPlayer(round)
			if s.Hand.IsBust() {
				s.Stats.Busts++
				s.Emit(Event{Type: EventPlayerBust, Round: round, PlayerHand: s.Hand})
				return true, nil
			}
		}
	}

	// 21 stands automatically.
	s.Stats.Stands++
	return false, nil
}

// dealerTurn flips the hole card and draws to 17. The house stands on all
// 17s, soft included. Against a bust or a player natural only the reveal
// happens; the result is already determined by the cards down.
func (d *Dealer) dealerTurn(round int, busted bool) {
	s := d.sess
	s.Emit(Event{Type: EventDealerReveal, Round: round, Card: d.dealerHand[1], DealerHand: d.dealerHand})
	if busted || s.Hand.IsNatural() {
		return
	}
	for d.dealerHand.Total() < 17 {
		d.dealDealer(round, false)
	}
}

func (d *Dealer) resolve(round int) error {
	s := d.sess
	out := engine.Resolve(s.Hand, d.dealerHand)
	natural := s.Hand.IsNatural()

	payout := 0
	if s.Mode == ModeCasino {
		payout = engine.Settle(out, s.CurrentBet, natural, d.cfg.BlackjackPayout)
		s.Chips += payout
		s.Stats.RecordChips(s.Chips)
	}
	if d.dealerHand.IsBust() {
		s.Stats.DealerBusts++
	}
	s.Stats.RecordOutcome(out, natural, s.Doubled)

	s.Emit(Event{
		Type:       EventRoundResolved,
		Round:      round,
		Outcome:    out,
		Payout:     payout,
		Chips:      s.Chips,
		PlayerHand: s.Hand,
		DealerHand: d.dealerHand,
	})
	d.log.WithFields(logrus.Fields{
		"round":   round,
		"outcome": out.String(),
		"player":  s.Hand.String(),
		"dealer":  d.dealerHand.String(),
	}).Info("round resolved")
	d.logRound(round, out, payout)
	return nil
}

// logRound sends the resolved round to the historian queue.
// Fire-and-forget; a missing or failing Redis never stalls play.
func (d *Dealer) logRound(round int, out engine.Outcome, payout int) {
	s := d.sess
	rec := cache.RoundRecord{
		SessionID:  s.ID,
		PlayerName: s.Name,
		Mode:       s.Mode.String(),
		Round:      round,
		Outcome:    out.String(),
		PlayerHand: s.Hand.String(),
		DealerHand: d.dealerHand.String(),
		Bet:        s.CurrentBet,
		Payout:     payout,
		Chips:      s.Chips,
		Timestamp:  time.Now().UnixMilli(),
	}
	go func(rec cache.RoundRecord) {
		if cache.Rdb == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishRoundRecord(ctx, rec); err != nil {
			d.log.WithError(err).Error("failed publishing round record")
		}
	}(rec)
}

func (d *Dealer) dealPlayer(round int) {
	s := d.sess
	c := d.draw()
	s.Hand = append(s.Hand, c)
	s.Emit(Event{Type: EventCardDealt, Round: round, Card: c, PlayerHand: s.Hand})
}

func (d *Dealer) dealDealer(round int, hidden bool) {
	c := d.draw()
	d.dealerHand = append(d.dealerHand, c)
	d.sess.Emit(Event{Type: EventCardDealt, Round: round, Card: c, ToDealer: true, Hidden: hidden})
}

func (d *Dealer) withTimeout(ctx context.Context, ttl time.Duration) (context.Context, context.CancelFunc) {
	if ttl <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, ttl)
}
