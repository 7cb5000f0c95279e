package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"

	"github.com/gayagur/blackjack-hackathon/engine"
	"github.com/gayagur/blackjack-hackathon/internal/game"
)

// promptSource collects bets and decisions interactively.
type promptSource struct{}

func (promptSource) NextBet(_ context.Context, min, max int) (int, error) {
	for {
		in, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText(fmt.Sprintf("Your bet (%d-%d)", min, max)).
			WithDefaultValue(strconv.Itoa(min)).Show()
		n, err := strconv.Atoi(strings.TrimSpace(in))
		if err != nil {
			pterm.Error.Println("Enter a number")
			continue
		}
		return n, nil // the dealer rejects out-of-range bets and reprompts
	}
}

func (promptSource) NextDecision(_ context.Context, hand engine.Hand, up engine.Card, canDouble bool) (engine.Decision, error) {
	options := []string{"Hit", "Stand"}
	if canDouble {
		options = append(options, "Double Down")
	}
	choice, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText(fmt.Sprintf("Your hand: %s   Dealer shows %s", hand, up)).
		WithOptions(options).Show()
	switch choice {
	case "Hit":
		return engine.DecisionHit, nil
	case "Double Down":
		return engine.DecisionDouble, nil
	default:
		return engine.DecisionStand, nil
	}
}

// renderEvent prints table events for a solo session.
func renderEvent(ev game.Event) {
	renderFor("", ev)
}

// renderSeatEvent renders a shared table's events from one player's chair.
func renderSeatEvent(me string) game.EmitFn {
	return func(ev game.Event) {
		renderFor(me, ev)
	}
}

func renderFor(me string, ev game.Event) {
	seat := ev.Seat
	mine := seat == "" || seat == me
	who := "You"
	if !mine {
		who = seat
	}

	switch ev.Type {
	case game.EventRoundStart:
		if ev.Chips > 0 {
			pterm.DefaultSection.Printfln("Round %d  (%d chips)", ev.Round, ev.Chips)
		} else {
			pterm.DefaultSection.Printfln("Round %d", ev.Round)
		}
	case game.EventBetPlaced:
		if mine {
			pterm.Info.Printfln("Bet %d placed, %d chips behind", ev.Bet, ev.Chips)
		} else {
			pterm.Info.Printfln("%s bets %d", who, ev.Bet)
		}
	case game.EventCardDealt:
		if ev.ToDealer {
			if ev.Hidden {
				pterm.Info.Println("Dealer takes a hole card")
			} else {
				pterm.Info.Printfln("Dealer shows %s", ev.Card)
			}
			return
		}
		if mine {
			pterm.Info.Printfln("You drew %s  (total %d)", ev.Card, ev.PlayerHand.Total())
		} else {
			pterm.Info.Printfln("%s drew %s", who, ev.Card)
		}
	case game.EventPlayerBust:
		if mine {
			pterm.Error.Printfln("Bust at %s", ev.PlayerHand)
		} else {
			pterm.Info.Printfln("%s busts", who)
		}
	case game.EventDealerReveal:
		pterm.Info.Printfln("Dealer reveals %s, holding %s", ev.Card, ev.DealerHand)
	case game.EventRoundResolved:
		if !mine {
			pterm.Info.Printfln("%s: %s", who, ev.Outcome)
			return
		}
		switch ev.Outcome {
		case engine.OutcomeWin:
			if ev.Payout > 0 {
				pterm.Success.Printfln("You win %d with %s", ev.Payout, ev.PlayerHand)
			} else {
				pterm.Success.Printfln("You win with %s", ev.PlayerHand)
			}
		case engine.OutcomeLoss:
			pterm.Error.Printfln("You lose with %s against %s", ev.PlayerHand, ev.DealerHand)
		case engine.OutcomePush:
			pterm.Info.Printfln("Push at %s", ev.PlayerHand)
		}
	case game.EventGameFinished:
		if mine && ev.Stats != nil {
			printSummary(ev.Stats, ev.Chips)
		}
	}
}

// runCasino plays a local chips-and-betting session against the dealer.
func runCasino(ctx context.Context, cfg game.Config, log *logrus.Logger, name string, rounds int, bot bool) error {
	var src game.DecisionSource = promptSource{}
	mode := game.ModeCasino
	if bot {
		src = game.NewBotSource()
	}
	if !bot {
		// A human at the keyboard shouldn't race server-side timers.
		cfg.TurnTimeout = 0
		cfg.BetTimeout = 0
	}

	sess := game.NewSession(name, mode, rounds, src, renderEvent)
	dealer := game.NewDealer(sess, cfg, log)
	if err := dealer.Run(ctx); err != nil {
		return err
	}
	if dealer.Broke() {
		pterm.Error.Println("The house cleaned you out.")
	}
	return nil
}

// runTable seats the player at a local multiplayer table padded out with
// basic-strategy bots.
func runTable(ctx context.Context, cfg game.Config, log *logrus.Logger, name string, rounds, seats int) error {
	if seats < game.MinSeats || seats > game.MaxSeats {
		return fmt.Errorf("table size must be between %d and %d", game.MinSeats, game.MaxSeats)
	}

	mgr := game.NewRoomManager(cfg, log)
	human := game.NewSession(name, game.ModeMultiplayer, rounds, promptSource{}, renderSeatEvent(name))
	room, err := mgr.Create(human, rounds)
	if err != nil {
		return err
	}
	for i := 1; i < seats; i++ {
		bot := game.NewSession(fmt.Sprintf("Bot-%d", i), game.ModeMultiplayer, rounds, game.NewBotSource(), nil)
		if err := room.Join(bot); err != nil {
			return err
		}
	}

	pterm.Info.Printfln("Table %s open with %d seats", pterm.LightCyan(room.Code), seats)
	if err := room.Start(ctx, name); err != nil {
		return err
	}

	select {
	case <-room.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
