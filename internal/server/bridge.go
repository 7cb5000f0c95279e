package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/gayagur/blackjack-hackathon/engine"
	"github.com/gayagur/blackjack-hackathon/internal/game"
	"github.com/gayagur/blackjack-hackathon/internal/protocol"
)

// resolvedFiller is the throwaway card packed into a round-result payload;
// the fixed 9-byte layout always carries a card even when none is dealt.
var resolvedFiller = engine.NewCard(engine.SuitHearts, engine.RankAce)

// wireBridge adapts one TCP connection to the dealer's two interfaces:
// table events become Payload-Server packets, and decisions are read back
// as Payload-Client packets. The 9-byte payload has no owner field, so card
// ownership is positional: the opening pair is the player's, the third card
// is the dealer's up-card, hit cards answer the player's decisions, and
// everything after the player's turn is the dealer's (reveal, then draws)
// until a packet with a result code ends the round. The hole card is the
// only deal withheld from the wire; it crosses at the reveal.
//
// It is not safe for concurrent use, matching the dealer's single-threaded
// round loop. A write failure is remembered and surfaced on the next
// decision read so the session unwinds instead of playing against a dead
// socket.
type wireBridge struct {
	conn net.Conn
	werr error
}

func (b *wireBridge) emit(ev game.Event) {
	switch ev.Type {
	case game.EventCardDealt:
		if ev.ToDealer && ev.Hidden {
			return // the hole card stays down until the reveal
		}
		b.send(protocol.EncodePayloadServer(engine.OutcomeNotOver, ev.Card))
	case game.EventDealerReveal:
		b.send(protocol.EncodePayloadServer(engine.OutcomeNotOver, ev.Card))
	case game.EventRoundResolved:
		b.send(protocol.EncodePayloadServer(ev.Outcome, resolvedFiller))
	}
}

func (b *wireBridge) send(pkt []byte) {
	if b.werr != nil {
		return
	}
	if _, err := b.conn.Write(pkt); err != nil {
		b.werr = err
	}
}

// NextBet never runs: wire sessions are classic mode, which has no betting
// phase. It answers the minimum to stay harmless if that ever changes.
func (b *wireBridge) NextBet(_ context.Context, min, _ int) (int, error) {
	return min, nil
}

// NextDecision blocks on the next Payload-Client packet. The context
// deadline is pushed down onto the socket so a stalled client surfaces as
// context.DeadlineExceeded, which the dealer converts to a stand.
func (b *wireBridge) NextDecision(ctx context.Context, _ engine.Hand, _ engine.Card, _ bool) (engine.Decision, error) {
	if b.werr != nil {
		return 0, fmt.Errorf("connection broken: %w", b.werr)
	}

	var deadline time.Time
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := b.conn.SetReadDeadline(deadline); err != nil {
		return 0, err
	}

	buf := make([]byte, protocol.PayloadClientSize)
	if _, err := io.ReadFull(b.conn, buf); err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return 0, context.DeadlineExceeded
		}
		return 0, err
	}

	token, err := protocol.DecodePayloadClient(buf)
	if err != nil {
		return 0, err
	}
	if token == protocol.TokenHit {
		return engine.DecisionHit, nil
	}
	return engine.DecisionStand, nil
}
