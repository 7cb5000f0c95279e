// Package server accepts TCP game sessions and runs each one through a
// dealer on its own goroutine.
package server

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/gayagur/blackjack-hackathon/internal/game"
	"github.com/gayagur/blackjack-hackathon/internal/protocol"
)

// Server owns the listening socket. One goroutine per accepted connection;
// the connection is that session's exclusive channel for its whole life.
type Server struct {
	cfg game.Config
	log *logrus.Logger
	ln  net.Listener
}

// New creates a server dealing by cfg's table rules.
func New(cfg game.Config, log *logrus.Logger) *Server {
	return &Server{cfg: cfg, log: log}
}

// Listen binds the TCP socket. addr may name port 0 to let the OS pick;
// Port reports the bound port either way.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.log.WithField("addr", ln.Addr().String()).Info("listening for game sessions")
	return nil
}

// Port returns the bound TCP port.
func (s *Server) Port() uint16 {
	return uint16(s.ln.Addr().(*net.TCPAddr).Port)
}

// Serve accepts connections until ctx is canceled or the listener fails.
func (s *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = s.ln.Close() })
	defer stop()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		go s.handle(ctx, conn)
	}
}

// handle reads the one Request a connection opens with, then hands the
// socket to a dealer for the rest of the session. A malformed handshake
// closes the connection immediately.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	log := s.log.WithField("remote", conn.RemoteAddr().String())

	buf := make([]byte, protocol.RequestSize)
	if _, err := io.ReadFull(conn, buf); err != nil {
		log.WithError(err).Warn("failed reading handshake")
		return
	}
	req, err := protocol.DecodeRequest(buf)
	if err != nil {
		log.WithError(err).Warn("malformed handshake, closing")
		return
	}

	bridge := &wireBridge{conn: conn}
	sess := game.NewSession(req.ClientName, game.ModeClassic, int(req.Rounds), bridge, bridge.emit)
	log = log.WithFields(logrus.Fields{"player": req.ClientName, "rounds": req.Rounds})
	log.Info("session accepted")

	// A canceled server context closes the socket and unwinds the dealer.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	dealer := game.NewDealer(sess, s.cfg, s.log)
	if err := dealer.Run(ctx); err != nil {
		log = log.WithFields(logrus.Fields{
			"rounds": sess.RoundsCompleted,
			"wins":   sess.Stats.Wins,
			"losses": sess.Stats.Losses,
			"pushes": sess.Stats.Pushes,
		})
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			log.Info("client disconnected, session aborted")
		} else {
			log.WithError(err).Warn("session aborted")
		}
		return
	}
	log.WithField("wins", sess.Stats.Wins).Info("session complete")
}
