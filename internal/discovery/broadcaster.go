// Package discovery implements server offer broadcasting and client-side
// offer scanning over UDP.
//
// The broadcast is fire-and-forget: the periodic resend is the retry
// mechanism, and no acknowledgment exists. Scanning is lazy and restartable;
// every scan starts from an empty collection.
package discovery

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gayagur/blackjack-hackathon/internal/protocol"
)

// Broadcaster periodically announces an Offer packet to the discovery port.
type Broadcaster struct {
	conn     net.PacketConn
	dest     *net.UDPAddr
	packet   []byte
	interval time.Duration
	log      *logrus.Entry
}

// BroadcasterOption tweaks a Broadcaster before first use.
type BroadcasterOption func(*Broadcaster)

// WithDestination overrides the broadcast destination address. Tests point
// this at loopback.
func WithDestination(addr *net.UDPAddr) BroadcasterOption {
	return func(b *Broadcaster) { b.dest = addr }
}

// WithInterval overrides the resend interval (default 1s).
func WithInterval(d time.Duration) BroadcasterOption {
	return func(b *Broadcaster) { b.interval = d }
}

// NewBroadcaster builds a broadcaster announcing the given TCP port and
// server name on the well-known UDP discovery port.
func NewBroadcaster(udpPort int, tcpPort uint16, serverName string, log *logrus.Logger, opts ...BroadcasterOption) (*Broadcaster, error) {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("open broadcast socket: %w", err)
	}
	b := &Broadcaster{
		conn:     conn,
		dest:     &net.UDPAddr{IP: net.IPv4bcast, Port: udpPort},
		packet:   protocol.EncodeOffer(protocol.Offer{TCPPort: tcpPort, ServerName: serverName}),
		interval: time.Second,
		log:      log.WithField("component", "discovery"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Run broadcasts until ctx is canceled. Send errors are logged and the loop
// keeps going; the next tick is the retry.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.WithFields(logrus.Fields{
		"dest":     b.dest.String(),
		"interval": b.interval,
	}).Info("broadcasting offers")

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	defer b.conn.Close()

	for {
		if _, err := b.conn.WriteTo(b.packet, b.dest); err != nil {
			b.log.WithError(err).Warn("offer broadcast failed")
		}
		select {
		case <-ctx.Done():
			b.log.Info("broadcast stopped")
			return
		case <-ticker.C:
		}
	}
}
