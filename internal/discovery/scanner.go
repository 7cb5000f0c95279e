package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gayagur/blackjack-hackathon/internal/protocol"
)

// Endpoint is a reachable game server discovered via an Offer.
type Endpoint struct {
	IP   net.IP
	Port uint16
}

// Addr renders the endpoint as host:port for net.Dial.
func (e Endpoint) Addr() string {
	return fmt.Sprintf("%s:%d", e.IP, e.Port)
}

// Scanner collects Offer broadcasts from the discovery port.
type Scanner struct {
	port int
	log  *logrus.Entry
}

// NewScanner returns a scanner listening on the given UDP discovery port.
func NewScanner(udpPort int, log *logrus.Logger) *Scanner {
	return &Scanner{port: udpPort, log: log.WithField("component", "discovery")}
}

// Scan listens for offers for the given window and returns a snapshot of
// every distinct server observed, keyed by server name. A repeated offer
// from the same name refreshes its entry. Each call starts from an empty
// collection, so two scans of an unchanged network yield the same set.
//
// Malformed packets are dropped silently: UDP is best-effort.
func (s *Scanner) Scan(ctx context.Context, window time.Duration) (map[string]Endpoint, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: s.port})
	if err != nil {
		return nil, fmt.Errorf("listen on discovery port %d: %w", s.port, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(window)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	stop := context.AfterFunc(ctx, func() { conn.SetReadDeadline(time.Now()) })
	defer stop()

	found := make(map[string]Endpoint)
	buf := make([]byte, 1024)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				break // window elapsed or ctx canceled
			}
			if errors.Is(err, net.ErrClosed) {
				break
			}
			return nil, err
		}
		offer, err := protocol.DecodeOffer(buf[:n])
		if err != nil {
			s.log.WithError(err).Debug("dropping malformed offer")
			continue
		}
		if _, seen := found[offer.ServerName]; !seen {
			s.log.WithFields(logrus.Fields{
				"server": offer.ServerName,
				"addr":   addr.IP,
				"port":   offer.TCPPort,
			}).Info("discovered server")
		}
		found[offer.ServerName] = Endpoint{IP: addr.IP, Port: offer.TCPPort}
	}
	if ctx.Err() != nil && len(found) == 0 {
		return found, ctx.Err()
	}
	return found, nil
}
