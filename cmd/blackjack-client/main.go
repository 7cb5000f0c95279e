package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/sirupsen/logrus"

	"github.com/gayagur/blackjack-hackathon/engine"
	"github.com/gayagur/blackjack-hackathon/internal/client"
	"github.com/gayagur/blackjack-hackathon/internal/config"
	"github.com/gayagur/blackjack-hackathon/internal/discovery"
	"github.com/gayagur/blackjack-hackathon/internal/game"
	"github.com/gayagur/blackjack-hackathon/internal/protocol"
)

func main() {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	nameFlag := flag.String("name", "", "player name")
	roundsFlag := flag.Int("rounds", 3, "rounds to play (1-255)")
	botFlag := flag.Bool("bot", false, "let basic strategy play for you")
	casinoFlag := flag.Bool("casino", false, "play a local casino session with chips and betting")
	tableFlag := flag.Int("table", 0, "play a local multiplayer table against N-1 bots (2-4 seats)")
	scanFlag := flag.Duration("scan", 3*time.Second, "discovery scan window")
	flag.Parse()

	cfg := config.Load(log)

	banner, err := pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Black", pterm.FgLightWhite.ToStyle()),
		putils.LettersFromStringWithStyle("jack", pterm.FgRed.ToStyle()),
	).Srender()
	if err == nil {
		pterm.Print(banner)
	}

	name := *nameFlag
	if name == "" {
		name, _ = pterm.DefaultInteractiveTextInput.
			WithDefaultText("Enter your name").
			WithDefaultValue("Player").Show()
	}

	rounds := *roundsFlag
	if rounds < 1 || rounds > 255 {
		pterm.Error.Println("rounds must be between 1 and 255")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gameCfg := game.Config{
		StartingChips:   cfg.StartingChips,
		MinBet:          cfg.MinBet,
		MaxBet:          cfg.MaxBet,
		BlackjackPayout: cfg.BlackjackPayout,
		TurnTimeout:     cfg.TurnTimeout,
		BetTimeout:      cfg.BetTimeout,
	}

	switch {
	case *tableFlag > 0:
		err = runTable(ctx, gameCfg, log, name, rounds, *tableFlag)
	case *casinoFlag:
		err = runCasino(ctx, gameCfg, log, name, rounds, *botFlag)
	default:
		err = runWire(ctx, cfg, log, name, rounds, *botFlag, *scanFlag)
	}
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
}

// runWire discovers servers over UDP, connects to the chosen one and plays
// the classic fixed-rounds game over the wire protocol.
func runWire(ctx context.Context, cfg config.Config, log *logrus.Logger, name string, rounds int, bot bool, window time.Duration) error {
	scanner := discovery.NewScanner(cfg.UDPPort, log)
	spinner, _ := pterm.DefaultSpinner.Start("Scanning for tables...")
	found, err := scanner.Scan(ctx, window)
	if err != nil {
		spinner.Fail()
		return fmt.Errorf("discovery scan: %w", err)
	}
	if len(found) == 0 {
		spinner.Fail()
		return fmt.Errorf("no servers found on UDP port %d", cfg.UDPPort)
	}
	spinner.Success(fmt.Sprintf("Found %d server(s)", len(found)))

	names := make([]string, 0, len(found))
	for n := range found {
		names = append(names, n)
	}
	sort.Strings(names)

	choice := names[0]
	if len(names) > 1 {
		choice, _ = pterm.DefaultInteractiveSelect.
			WithDefaultText("Pick a table").
			WithOptions(names).Show()
	}
	addr := found[choice].Addr()
	pterm.Info.Printfln("Joining %s at %s", pterm.LightCyan(choice), addr)

	c, err := client.Dial(ctx, addr, log)
	if err != nil {
		return err
	}
	defer c.Close()
	if err := c.Handshake(name, uint8(rounds)); err != nil {
		return err
	}

	decide := promptWireDecision
	if bot {
		decide = botWireDecision
	}

	var stats game.Stats
	for round := 1; round <= rounds; round++ {
		pterm.DefaultSection.Printfln("Round %d of %d", round, rounds)
		res, err := c.PlayRound(decide, func(card engine.Card, hand engine.Hand) {
			pterm.Info.Printfln("You drew %s  (total %d)", card, hand.Total())
		})
		if err != nil {
			return fmt.Errorf("round %d: %w", round, err)
		}
		announceOutcome(res.Outcome, res.Hand, res.Dealer)
		stats.RecordOutcome(res.Outcome, res.Hand.IsNatural(), false)
	}

	printSummary(&stats, 0)
	return nil
}

// promptWireDecision asks the human to hit or stand.
func promptWireDecision(hand engine.Hand, up engine.Card) string {
	choice, _ := pterm.DefaultInteractiveSelect.
		WithDefaultText(fmt.Sprintf("Your hand: %s   Dealer shows %s", hand, up)).
		WithOptions([]string{"Hit", "Stand"}).Show()
	if choice == "Hit" {
		return protocol.TokenHit
	}
	return protocol.TokenStand
}

// botWireDecision plays basic strategy against the dealer's up-card.
func botWireDecision(hand engine.Hand, up engine.Card) string {
	if engine.DefaultStrategy().Decide(hand, up) == engine.DecisionHit {
		return protocol.TokenHit
	}
	return protocol.TokenStand
}

func announceOutcome(out engine.Outcome, hand, dealer engine.Hand) {
	switch out {
	case engine.OutcomeWin:
		pterm.Success.Printfln("You win with %s against %s", hand, dealer)
	case engine.OutcomeLoss:
		pterm.Error.Printfln("You lose with %s against %s", hand, dealer)
	case engine.OutcomePush:
		pterm.Info.Printfln("Push at %s against %s", hand, dealer)
	}
}

func printSummary(st *game.Stats, chips int) {
	data := pterm.TableData{
		{"Metric", "Value"},
		{"Rounds", strconv.Itoa(st.Rounds())},
		{"Wins", strconv.Itoa(st.Wins)},
		{"Losses", strconv.Itoa(st.Losses)},
		{"Pushes", strconv.Itoa(st.Pushes)},
		{"Blackjacks", strconv.Itoa(st.Blackjacks)},
		{"Busts", strconv.Itoa(st.Busts)},
		{"Best streak", strconv.Itoa(st.BestStreak)},
		{"Worst streak", strconv.Itoa(st.WorstStreak)},
		{"Win rate", fmt.Sprintf("%.0f%%", st.WinRate()*100)},
	}
	if chips > 0 || st.MaxChips > 0 {
		data = append(data,
			[]string{"Final chips", strconv.Itoa(chips)},
			[]string{"Chip high water", strconv.Itoa(st.MaxChips)},
			[]string{"Chip low water", strconv.Itoa(st.MinChips)},
			[]string{"Double downs", strconv.Itoa(st.Doubles)},
		)
	}
	pterm.Println()
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
