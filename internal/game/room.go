package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gayagur/blackjack-hackathon/engine"
)

// Room capacity limits.
const (
	MinSeats = 2
	MaxSeats = 4
)

var (
	ErrRoomFull         = errors.New("room is full")
	ErrRoomStarted      = errors.New("room has already started")
	ErrRoomClosed       = errors.New("room is closed")
	ErrNotHost          = errors.New("only the host can start the game")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrNameTaken        = errors.New("name already seated in this room")
	ErrSeatNotFound     = errors.New("no such seat")
)

// Seat binds a session to a spot at a shared table plus its per-round state.
type Seat struct {
	Sess *Session

	connected bool
	cancel    context.CancelFunc // interrupts a pending prompt on disconnect

	bet     int
	doubled bool
	busted  bool
	done    bool // terminal for the current round
}

// Room is a shared table for up to four players. The first joiner is the
// host; if the host drops mid-game the next live seat inherits the role.
// All seats play their turns in join order against one dealer hand, and
// outcomes are announced only after the shared dealer turn, even for hands
// that busted earlier.
type Room struct {
	Code   string
	cfg    Config
	rounds int
	log    *logrus.Entry
	draw   func() engine.Card

	mu      sync.Mutex
	seats   []*Seat
	started bool
	closed  bool

	dealerHand engine.Hand

	done    chan struct{}
	onClose func(code string)
}

// NewRoom creates an empty table playing the given number of rounds.
func NewRoom(code string, rounds int, cfg Config, log *logrus.Logger) *Room {
	deck := engine.NewDeck(uint64(time.Now().UnixNano()))
	return &Room{
		Code:   code,
		cfg:    cfg,
		rounds: rounds,
		log:    log.WithField("room", code),
		draw:   deck.Draw,
		done:   make(chan struct{}),
	}
}

// Done is closed when the room tears down.
func (r *Room) Done() <-chan struct{} { return r.done }

// Join seats a session. Fails once the game has started or all seats are
// taken. The joining session receives the table's starting bankroll.
func (r *Room) Join(sess *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}
	if r.started {
		return ErrRoomStarted
	}
	if len(r.seats) >= MaxSeats {
		return ErrRoomFull
	}
	for _, st := range r.seats {
		if st.Sess.Name == sess.Name {
			return ErrNameTaken
		}
	}
	sess.Mode = ModeMultiplayer
	sess.Chips = r.cfg.StartingChips
	sess.Stats.RecordChips(sess.Chips)
	r.seats = append(r.seats, &Seat{Sess: sess, connected: true})
	r.log.WithFields(logrus.Fields{"player": sess.Name, "seats": len(r.seats)}).Info("player joined")
	return nil
}

// Host returns the name of the current host: the first seat still live.
func (r *Room) Host() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.seats {
		if st.connected {
			return st.Sess.Name
		}
	}
	return ""
}

// Seats returns the number of live seats.
func (r *Room) Seats() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.liveSeatsLocked()
}

// Leave drops a player. Before the game starts the seat is vacated, and a
// departing host tears the room down. Mid-game the seat goes dark: any
// pending prompt is cut short and the hand stands as dealt.
func (r *Room) Leave(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRoomClosed
	}

	idx := -1
	for i, st := range r.seats {
		if st.Sess.Name == name && st.connected {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrSeatNotFound
	}

	wasHost := r.hostLocked() == name

	st := r.seats[idx]
	st.connected = false
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	r.log.WithField("player", name).Info("player left")

	if !r.started {
		r.seats = append(r.seats[:idx], r.seats[idx+1:]...)
		if wasHost || len(r.seats) == 0 {
			r.closeLocked()
		}
		return nil
	}

	if wasHost {
		if promoted := r.hostLocked(); promoted != "" {
			r.log.WithField("player", promoted).Info("host promoted")
		}
	}
	return nil
}

// Start begins play. Only the host may start, and at least two seats must
// be filled. Rounds run on their own goroutine until done or ctx cancels.
func (r *Room) Start(ctx context.Context, name string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRoomClosed
	}
	if r.started {
		r.mu.Unlock()
		return ErrRoomStarted
	}
	if r.hostLocked() != name {
		r.mu.Unlock()
		return ErrNotHost
	}
	if r.liveSeatsLocked() < MinSeats {
		r.mu.Unlock()
		return ErrNotEnoughPlayers
	}
	r.started = true
	r.mu.Unlock()

	r.log.WithField("host", name).Info("game starting")
	go r.run(ctx)
	return nil
}

func (r *Room) run(ctx context.Context) {
	defer func() {
		r.mu.Lock()
		r.closeLocked()
		r.mu.Unlock()
	}()

	for round := 1; round <= r.rounds; round++ {
		r.mu.Lock()
		live := r.liveSeatsLocked()
		r.mu.Unlock()
		if live < MinSeats {
			r.log.WithField("round", round).Info("too few players remain, closing table")
			break
		}
		if ctx.Err() != nil {
			return
		}
		r.playRound(ctx, round)
	}

	r.mu.Lock()
	seats := make([]*Seat, 0, len(r.seats))
	for _, st := range r.seats {
		if st.connected {
			seats = append(seats, st)
		}
	}
	r.mu.Unlock()
	for _, st := range seats {
		st.Sess.RoundsCompleted = st.Sess.Stats.Rounds()
		st.Sess.Emit(Event{Type: EventGameFinished, Chips: st.Sess.Chips, Stats: &st.Sess.Stats})
	}
	r.log.Info("game finished")
}

func (r *Room) playRound(ctx context.Context, round int) {
	r.mu.Lock()
	r.dealerHand = r.dealerHand[:0]
	for _, st := range r.seats {
		st.Sess.Hand = st.Sess.Hand[:0]
		st.bet = 0
		st.doubled = false
		st.busted = false
		st.done = !st.connected
	}
	seats := make([]*Seat, len(r.seats))
	copy(seats, r.seats)
	r.mu.Unlock()

	r.broadcast(Event{Type: EventRoundStart, Round: round})

	// All seats wager concurrently; the phase ends when everyone has
	// answered or timed out.
	var wg sync.WaitGroup
	for _, st := range seats {
		if !r.seatLive(st) {
			continue
		}
		wg.Add(1)
		go func(st *Seat) {
			defer wg.Done()
			r.collectBet(ctx, round, st)
		}(st)
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		for _, st := range seats {
			if r.seatLive(st) {
				r.dealSeat(round, st)
			}
		}
	}
	r.dealDealer(round, false)
	r.dealDealer(round, true)

	for _, st := range seats {
		if !r.seatLive(st) {
			st.done = true
			continue
		}
		if st.Sess.Hand.IsNatural() {
			st.done = true
			continue
		}
		r.seatTurn(ctx, round, st)
	}

	r.dealerTurn(round, seats)

	for _, st := range seats {
		if st.bet == 0 && len(st.Sess.Hand) == 0 {
			continue // seat was dark for the whole round
		}
		r.resolveSeat(round, st)
	}

	// Seats that can no longer cover the minimum are done playing.
	r.mu.Lock()
	for _, st := range r.seats {
		if st.connected && st.Sess.Chips < r.cfg.MinBet {
			st.connected = false
			r.mu.Unlock()
			st.Sess.Emit(Event{Type: EventGameFinished, Chips: st.Sess.Chips, Stats: &st.Sess.Stats})
			r.log.WithField("player", st.Sess.Name).Info("player is broke, leaving the table")
			r.mu.Lock()
		}
	}
	r.mu.Unlock()
}

// collectBet prompts the seat until it wagers within table limits,
// re-prompting on out-of-range answers while the betting window is open.
// A seat that stays silent past the window, or drops, wagers the minimum.
func (r *Room) collectBet(ctx context.Context, round int, st *Seat) {
	s := st.Sess
	maxBet := r.cfg.MaxBet
	if s.Chips < maxBet {
		maxBet = s.Chips
	}

	// One window spans every re-prompt; out-of-range answers do not buy
	// the seat more time.
	callCtx, cancel := r.seatContext(ctx, st, r.cfg.BetTimeout)
	defer cancel()
	defer r.clearCancel(st)

	var bet int
	for {
		s.Emit(Event{Type: EventBetPrompt, Round: round, Chips: s.Chips})
		b, err := s.Source.NextBet(callCtx, r.cfg.MinBet, maxBet)
		if err != nil {
			if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
				r.log.WithError(err).WithField("player", s.Name).Warn("bet collection failed, wagering the minimum")
			}
			bet = r.cfg.MinBet
			if bet > maxBet {
				bet = maxBet
			}
			break
		}
		if b < r.cfg.MinBet || b > maxBet {
			r.log.WithFields(logrus.Fields{"player": s.Name, "bet": b}).Debug("bet out of range, reprompting")
			continue
		}
		bet = b
		break
	}

	r.mu.Lock()
	s.Chips -= bet
	st.bet = bet
	r.mu.Unlock()
	r.broadcast(Event{Type: EventBetPlaced, Round: round, Seat: s.Name, Bet: bet, Chips: s.Chips})
}

func (r *Room) seatTurn(ctx context.Context, round int, st *Seat) {
	s := st.Sess
	up := r.dealerHand[0]

	for s.Hand.Total() < 21 {
		if !r.seatLive(st) {
			break // disconnect mid-turn stands the hand
		}
		canDouble := len(s.Hand) == 2 && !st.doubled && s.Chips >= st.bet
		s.Emit(Event{Type: EventTurnPrompt, Round: round, Seat: s.Name, PlayerHand: s.Hand, Card: up})

		callCtx, cancel := r.seatContext(ctx, st, r.cfg.TurnTimeout)
		dec, err := s.Source.NextDecision(callCtx, s.Hand, up, canDouble)
		cancel()
		r.clearCancel(st)

		if err != nil {
			if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
				r.log.WithError(err).WithField("player", s.Name).Warn("decision failed, standing")
			}
			dec = engine.DecisionStand
		}

		if dec == engine.DecisionStand {
			s.Stats.Stands++
			break
		}
		if dec == engine.DecisionDouble {
			if !canDouble {
				continue
			}
			s.Stats.Doubles++
			r.mu.Lock()
			s.Chips -= st.bet
			st.bet *= 2
			st.doubled = true
			r.mu.Unlock()
			r.dealSeat(round, st)
			if s.Hand.IsBust() {
				st.busted = true
				s.Stats.Busts++
				r.broadcast(Event{Type: EventPlayerBust, Round: round, Seat: s.Name, PlayerHand: s.Hand})
			}
			break
		}

		s.Stats.Hits++
		r.dealSeat(round, st)
		if s.Hand.IsBust() {
			st.busted = true
			s.Stats.Busts++
			r.broadcast(Event{Type: EventPlayerBust, Round: round, Seat: s.Name, PlayerHand: s.Hand})
			break
		}
	}
	st.done = true
}

// dealerTurn plays the single shared house hand once every seat is
// terminal. The house only draws if at least one hand is still in
// contention.
func (r *Room) dealerTurn(round int, seats []*Seat) {
	r.broadcast(Event{Type: EventDealerReveal, Round: round, Card: r.dealerHand[1], DealerHand: r.dealerHand})

	contested := false
	for _, st := range seats {
		if len(st.Sess.Hand) > 0 && !st.busted && !st.Sess.Hand.IsNatural() {
			contested = true
			break
		}
	}
	if !contested {
		return
	}
	for r.dealerHand.Total() < 17 {
		r.dealDealer(round, false)
	}
}

func (r *Room) resolveSeat(round int, st *Seat) {
	s := st.Sess
	out := engine.Resolve(s.Hand, r.dealerHand)
	natural := s.Hand.IsNatural()

	payout := engine.Settle(out, st.bet, natural, r.cfg.BlackjackPayout)
	r.mu.Lock()
	s.Chips += payout
	r.mu.Unlock()
	s.Stats.RecordChips(s.Chips)
	if r.dealerHand.IsBust() {
		s.Stats.DealerBusts++
	}
	s.Stats.RecordOutcome(out, natural, st.doubled)

	r.broadcast(Event{
		Type:       EventRoundResolved,
		Round:      round,
		Seat:       s.Name,
		Outcome:    out,
		Payout:     payout,
		Chips:      s.Chips,
		PlayerHand: s.Hand,
		DealerHand: r.dealerHand,
	})
}

func (r *Room) dealSeat(round int, st *Seat) {
	c := r.draw()
	st.Sess.Hand = append(st.Sess.Hand, c)
	r.broadcast(Event{Type: EventCardDealt, Round: round, Seat: st.Sess.Name, Card: c, PlayerHand: st.Sess.Hand})
}

func (r *Room) dealDealer(round int, hidden bool) {
	c := r.draw()
	r.dealerHand = append(r.dealerHand, c)
	r.broadcast(Event{Type: EventCardDealt, Round: round, Card: c, ToDealer: true, Hidden: hidden})
}

// broadcast fans an event out to every live seat.
func (r *Room) broadcast(ev Event) {
	r.mu.Lock()
	seats := make([]*Seat, 0, len(r.seats))
	for _, st := range r.seats {
		if st.connected {
			seats = append(seats, st)
		}
	}
	r.mu.Unlock()
	for _, st := range seats {
		st.Sess.Emit(ev)
	}
}

// seatContext derives the prompt context for a seat, wiring its cancel so
// a disconnect can interrupt the pending call.
func (r *Room) seatContext(ctx context.Context, st *Seat, ttl time.Duration) (context.Context, context.CancelFunc) {
	var callCtx context.Context
	var cancel context.CancelFunc
	if ttl > 0 {
		callCtx, cancel = context.WithTimeout(ctx, ttl)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	r.mu.Lock()
	st.cancel = cancel
	r.mu.Unlock()
	return callCtx, cancel
}

func (r *Room) clearCancel(st *Seat) {
	r.mu.Lock()
	st.cancel = nil
	r.mu.Unlock()
}

func (r *Room) seatLive(st *Seat) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return st.connected
}

func (r *Room) liveSeatsLocked() int {
	n := 0
	for _, st := range r.seats {
		if st.connected {
			n++
		}
	}
	return n
}

func (r *Room) hostLocked() string {
	for _, st := range r.seats {
		if st.connected {
			return st.Sess.Name
		}
	}
	return ""
}

func (r *Room) closeLocked() {
	if r.closed {
		return
	}
	r.closed = true
	close(r.done)
	if r.onClose != nil {
		go r.onClose(r.Code)
	}
	r.log.Info("room closed")
}
