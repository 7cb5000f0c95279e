// Package client speaks the game wire protocol from the player's side.
package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gayagur/blackjack-hackathon/engine"
	"github.com/gayagur/blackjack-hackathon/internal/protocol"
)

// DecideFunc chooses the next move given the player's hand and the dealer's
// up-card. It returns one of the protocol decision tokens.
type DecideFunc func(hand engine.Hand, dealerUp engine.Card) string

// ObserveFunc is told about each of the player's cards as it lands.
type ObserveFunc func(card engine.Card, hand engine.Hand)

// RoundResult summarizes one finished round.
type RoundResult struct {
	Hand    engine.Hand
	Dealer  engine.Hand // up-card, then the reveal and any draws
	Outcome engine.Outcome
}

// GameClient is one TCP game session against a server.
type GameClient struct {
	conn net.Conn
	log  *logrus.Entry
}

// Dial connects to a game server.
func Dial(ctx context.Context, addr string, log *logrus.Logger) (*GameClient, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp4", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &GameClient{
		conn: conn,
		log:  log.WithField("server", addr),
	}, nil
}

// Close tears the session down.
func (c *GameClient) Close() error {
	return c.conn.Close()
}

// SetReadDeadline bounds future Receive calls.
func (c *GameClient) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// Handshake opens the session: name and how many rounds to play.
func (c *GameClient) Handshake(name string, rounds uint8) error {
	pkt, err := protocol.EncodeRequest(protocol.Request{Rounds: rounds, ClientName: name})
	if err != nil {
		return err
	}
	if _, err := c.conn.Write(pkt); err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	c.log.WithFields(logrus.Fields{"name": name, "rounds": rounds}).Debug("handshake sent")
	return nil
}

// SendDecision transmits a hit/stand token.
func (c *GameClient) SendDecision(token string) error {
	pkt, err := protocol.EncodePayloadClient(token)
	if err != nil {
		return err
	}
	if _, err := c.conn.Write(pkt); err != nil {
		return fmt.Errorf("send decision: %w", err)
	}
	return nil
}

// Receive blocks for the next server payload.
func (c *GameClient) Receive() (engine.Outcome, engine.Card, error) {
	buf := make([]byte, protocol.PayloadServerSize)
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		return 0, 0, err
	}
	return protocol.DecodePayloadServer(buf)
}

// PlayRound drives one round, tracking card ownership by deal phase: the
// opening pair is the player's and the third card is the dealer's up-card;
// each hit is answered with one more player card; after standing, busting
// or sitting on 21 every in-progress packet is a dealer card (the reveal,
// then draws) until a packet with a result code ends the round.
func (c *GameClient) PlayRound(decide DecideFunc, observe ObserveFunc) (RoundResult, error) {
	var res RoundResult

	takePlayer := func() (bool, error) {
		out, card, err := c.Receive()
		if err != nil {
			return false, err
		}
		if out != engine.OutcomeNotOver {
			res.Outcome = out
			return false, nil
		}
		res.Hand = append(res.Hand, card)
		if observe != nil {
			observe(card, res.Hand)
		}
		return true, nil
	}

	for i := 0; i < 2; i++ {
		ok, err := takePlayer()
		if err != nil || !ok {
			return res, err
		}
	}
	out, up, err := c.Receive()
	if err != nil {
		return res, err
	}
	if out != engine.OutcomeNotOver {
		res.Outcome = out
		return res, nil
	}
	res.Dealer = append(res.Dealer, up)

	for res.Hand.Total() < 21 {
		token := decide(res.Hand, up)
		if err := c.SendDecision(token); err != nil {
			return res, err
		}
		if token == protocol.TokenStand {
			break
		}
		ok, err := takePlayer()
		if err != nil || !ok {
			return res, err
		}
	}

	for {
		out, card, err := c.Receive()
		if err != nil {
			return res, err
		}
		if out != engine.OutcomeNotOver {
			res.Outcome = out
			return res, nil
		}
		res.Dealer = append(res.Dealer, card)
	}
}
