package game

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gayagur/blackjack-hackathon/engine"
)

func waitClosed(t *testing.T, r *Room) {
	t.Helper()
	select {
	case <-r.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("room did not close in time")
	}
}

func (er *eventRecorder) indexOf(t EventType, seat string) int {
	er.mu.Lock()
	defer er.mu.Unlock()
	for i, ev := range er.events {
		if ev.Type == t && (seat == "" || ev.Seat == seat) {
			return i
		}
	}
	return -1
}

func TestRoomJoinLimits(t *testing.T) {
	r := NewRoom("TESTROOM", 1, DefaultConfig(), testLog())
	for i := 0; i < MaxSeats; i++ {
		sess := NewSession("p"+string(rune('1'+i)), ModeMultiplayer, 1, &scriptedSource{}, nil)
		require.NoError(t, r.Join(sess))
	}
	err := r.Join(NewSession("p5", ModeMultiplayer, 1, &scriptedSource{}, nil))
	assert.ErrorIs(t, err, ErrRoomFull)

	err = r.Join(NewSession("p1", ModeMultiplayer, 1, &scriptedSource{}, nil))
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestRoomStartValidation(t *testing.T) {
	r := NewRoom("TESTROOM", 1, DefaultConfig(), testLog())
	require.NoError(t, r.Join(NewSession("host", ModeMultiplayer, 1, &scriptedSource{}, nil)))

	err := r.Start(context.Background(), "host")
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	require.NoError(t, r.Join(NewSession("guest", ModeMultiplayer, 1, &scriptedSource{}, nil)))
	err = r.Start(context.Background(), "guest")
	assert.ErrorIs(t, err, ErrNotHost)
}

func TestRoomHostLeavingBeforeStartCloses(t *testing.T) {
	r := NewRoom("TESTROOM", 1, DefaultConfig(), testLog())
	require.NoError(t, r.Join(NewSession("host", ModeMultiplayer, 1, &scriptedSource{}, nil)))
	require.NoError(t, r.Join(NewSession("guest", ModeMultiplayer, 1, &scriptedSource{}, nil)))

	require.NoError(t, r.Leave("host"))
	waitClosed(t, r)

	err := r.Join(NewSession("late", ModeMultiplayer, 1, &scriptedSource{}, nil))
	assert.ErrorIs(t, err, ErrRoomClosed)
}

func TestRoomGuestLeavingBeforeStartKeepsRoomOpen(t *testing.T) {
	r := NewRoom("TESTROOM", 1, DefaultConfig(), testLog())
	require.NoError(t, r.Join(NewSession("host", ModeMultiplayer, 1, &scriptedSource{}, nil)))
	require.NoError(t, r.Join(NewSession("guest", ModeMultiplayer, 1, &scriptedSource{}, nil)))

	require.NoError(t, r.Leave("guest"))
	assert.Equal(t, 1, r.Seats())
	assert.Equal(t, "host", r.Host())
	select {
	case <-r.Done():
		t.Fatal("room closed after a guest left")
	default:
	}
}

func TestRoomHostPromotionMidGame(t *testing.T) {
	r := NewRoom("TESTROOM", 1, DefaultConfig(), testLog())
	require.NoError(t, r.Join(NewSession("host", ModeMultiplayer, 1, &scriptedSource{}, nil)))
	require.NoError(t, r.Join(NewSession("guest", ModeMultiplayer, 1, &scriptedSource{}, nil)))
	r.started = true

	require.NoError(t, r.Leave("host"))
	assert.Equal(t, "guest", r.Host())
	assert.Equal(t, 1, r.Seats())
}

// TestRoomResolvesOnlyAfterDealerTurn plays a round where one seat busts
// early and checks no outcome is announced before the hole card turns.
func TestRoomResolvesOnlyAfterDealerTurn(t *testing.T) {
	r := NewRoom("TESTROOM", 1, DefaultConfig(), testLog())
	r.draw = scriptDeck(
		card(engine.SuitSpades, 10),   // p1
		card(engine.SuitDiamonds, 10), // p2
		card(engine.SuitHearts, 7),    // p1: 17
		card(engine.SuitClubs, 8),     // p2: 18
		card(engine.SuitHearts, 10),   // dealer up
		card(engine.SuitDiamonds, 7),  // dealer hole: 17
		card(engine.SuitSpades, engine.RankKing), // p1 hits and busts
	)

	rec1 := &eventRecorder{}
	rec2 := &eventRecorder{}
	p1 := NewSession("p1", ModeMultiplayer, 1, &scriptedSource{decisions: []engine.Decision{engine.DecisionHit}}, rec1.emit)
	p2 := NewSession("p2", ModeMultiplayer, 1, &scriptedSource{}, rec2.emit)
	require.NoError(t, r.Join(p1))
	require.NoError(t, r.Join(p2))
	require.NoError(t, r.Start(context.Background(), "p1"))
	waitClosed(t, r)

	bust := rec2.indexOf(EventPlayerBust, "p1")
	reveal := rec2.indexOf(EventDealerReveal, "")
	lossAnnounced := rec2.indexOf(EventRoundResolved, "p1")
	require.GreaterOrEqual(t, bust, 0)
	require.GreaterOrEqual(t, reveal, 0)
	require.GreaterOrEqual(t, lossAnnounced, 0)
	assert.Less(t, bust, reveal, "bust is announced as it happens")
	assert.Less(t, reveal, lossAnnounced, "outcome waits for the dealer turn")

	resolved := rec2.byType(EventRoundResolved)
	require.Len(t, resolved, 2)
	assert.Equal(t, 0, p1.Stats.Wins)
	assert.Equal(t, 1, p1.Stats.Busts)
	assert.Equal(t, 1, p2.Stats.Wins) // 18 beats the dealer's 17
}

func TestRoomSilentSeatWagersMinimum(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BetTimeout = 50 * time.Millisecond
	r := NewRoom("TESTROOM", 1, cfg, testLog())
	r.draw = scriptDeck(
		card(engine.SuitSpades, 10),
		card(engine.SuitDiamonds, 10),
		card(engine.SuitHearts, 8),
		card(engine.SuitClubs, 7),
		card(engine.SuitHearts, 10),
		card(engine.SuitDiamonds, 7),
	)

	rec1 := &eventRecorder{}
	p1 := NewSession("p1", ModeMultiplayer, 1, &scriptedSource{bets: []int{100}}, rec1.emit)
	p2 := NewSession("p2", ModeMultiplayer, 1, &scriptedSource{delay: time.Second}, nil)
	require.NoError(t, r.Join(p1))
	require.NoError(t, r.Join(p2))
	require.NoError(t, r.Start(context.Background(), "p1"))
	waitClosed(t, r)

	var p1Bet, p2Bet int
	for _, ev := range rec1.byType(EventBetPlaced) {
		switch ev.Seat {
		case "p1":
			p1Bet = ev.Bet
		case "p2":
			p2Bet = ev.Bet
		}
	}
	assert.Equal(t, 100, p1Bet)
	assert.Equal(t, cfg.MinBet, p2Bet)
}

func TestRoomOutOfRangeBetReprompts(t *testing.T) {
	r := NewRoom("TESTROOM", 1, DefaultConfig(), testLog())
	r.draw = scriptDeck(
		card(engine.SuitSpades, 10),
		card(engine.SuitDiamonds, 10),
		card(engine.SuitHearts, 8),
		card(engine.SuitClubs, 7),
		card(engine.SuitHearts, 10),
		card(engine.SuitDiamonds, 7),
	)

	rec1 := &eventRecorder{}
	p1 := NewSession("p1", ModeMultiplayer, 1, &scriptedSource{bets: []int{9999, 50}}, rec1.emit)
	p2 := NewSession("p2", ModeMultiplayer, 1, &scriptedSource{bets: []int{100}}, nil)
	require.NoError(t, r.Join(p1))
	require.NoError(t, r.Join(p2))
	require.NoError(t, r.Start(context.Background(), "p1"))
	waitClosed(t, r)

	// An over-limit wager is not bankable; the table asks again.
	assert.Len(t, rec1.byType(EventBetPrompt), 2)
	var p1Bet int
	for _, ev := range rec1.byType(EventBetPlaced) {
		if ev.Seat == "p1" {
			p1Bet = ev.Bet
		}
	}
	assert.Equal(t, 50, p1Bet)
}

// leavingSource stands its first decision and walks away from the table.
type leavingSource struct {
	scriptedSource
	leave func()
	once  sync.Once
}

func (ls *leavingSource) NextDecision(ctx context.Context, hand engine.Hand, up engine.Card, canDouble bool) (engine.Decision, error) {
	ls.once.Do(ls.leave)
	return engine.DecisionStand, nil
}

func TestRoomClosesWhenTooFewSeatsRemain(t *testing.T) {
	r := NewRoom("TESTROOM", 3, DefaultConfig(), testLog())
	r.draw = scriptDeck(
		card(engine.SuitSpades, 10),
		card(engine.SuitDiamonds, 10),
		card(engine.SuitHearts, 8),
		card(engine.SuitClubs, 7),
		card(engine.SuitHearts, 10),
		card(engine.SuitDiamonds, 7),
	)

	rec1 := &eventRecorder{}
	quitter := &leavingSource{leave: func() { _ = r.Leave("p2") }}
	p1 := NewSession("p1", ModeMultiplayer, 1, &scriptedSource{}, rec1.emit)
	p2 := NewSession("p2", ModeMultiplayer, 1, quitter, nil)
	require.NoError(t, r.Join(p1))
	require.NoError(t, r.Join(p2))
	require.NoError(t, r.Start(context.Background(), "p1"))
	waitClosed(t, r)

	// Round one resolves for the remaining seat, then the table folds
	// instead of playing rounds two and three.
	assert.Len(t, rec1.byType(EventRoundResolved), 2)
	assert.Len(t, rec1.byType(EventRoundStart), 1)
	assert.NotNil(t, rec1.last(EventGameFinished))
}

func TestRoomManagerLifecycle(t *testing.T) {
	m := NewRoomManager(DefaultConfig(), testLog())
	host := NewSession("host", ModeMultiplayer, 1, &scriptedSource{}, nil)
	room, err := m.Create(host, 3)
	require.NoError(t, err)
	require.Len(t, room.Code, 8)

	got, ok := m.Get(room.Code)
	require.True(t, ok)
	assert.Same(t, room, got)

	// Lowercase lookups find the room too.
	_, ok = m.Get(strings.ToLower(room.Code))
	assert.True(t, ok)

	require.NoError(t, room.Leave("host")) // host leaving pre-start closes the room
	waitClosed(t, room)
	require.Eventually(t, func() bool { return m.Count() == 0 }, time.Second, 10*time.Millisecond)
}
