package gameserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/moonvale/mud/internal/config"
	"github.com/moonvale/mud/internal/crypto"
	"github.com/moonvale/mud/internal/db"
	"github.com/moonvale/mud/internal/packet"
	"github.com/moonvale/mud/internal/protocol"
)

// Server accepts TCP connections and feeds them to the world.
type Server struct {
	cfg   config.Server
	world *World
	keys  *crypto.KeyPair
	log   *slog.Logger

	nextConnID atomic.Int64
}

// New builds a server with a fresh RSA key pair and a world loaded from the
// store.
func New(ctx context.Context, cfg config.Server, store db.Store, log *slog.Logger) (*Server, error) {
	keys, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("generating server keys: %w", err)
	}

	world, err := NewWorld(ctx, cfg, store, keys, log)
	if err != nil {
		return nil, fmt.Errorf("building world: %w", err)
	}

	return &Server{cfg: cfg, world: world, keys: keys, log: log}, nil
}

// World exposes the world for the tick driver.
func (s *Server) World() *World {
	return s.world
}

// Run supervises the listener and the tick driver until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.world.Run(ctx) })
	g.Go(func() error { return s.listen(ctx) })
	return g.Wait()
}

func (s *Server) listen(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.log.Info("listening", "addr", addr)
	for {
		netConn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accepting connection: %w", err)
		}
		s.handleConn(netConn)
	}
}

func (s *Server) handleConn(netConn net.Conn) {
	id := s.nextConnID.Add(1)
	tr := protocol.NewTransport(netConn, s.keys.Private, s.cfg.StrictEncryption, s.cfg.MaxFrameSize)
	c := newConn(id, tr, netConn, s.cfg.SendQueueSize, s.log)

	s.log.Info("client connected", "conn", id, "remote", netConn.RemoteAddr())
	s.world.Join(c)

	go c.writePump()
	go s.readLoop(c)
}

// readLoop pulls frames off the wire and delivers decoded messages to the
// connection's mailbox. Frame-level failures that are not fatal to the
// stream drop the frame and keep reading.
func (s *Server) readLoop(c *Conn) {
	for {
		payload, err := c.tr.Read()
		if err != nil {
			if errors.Is(err, protocol.ErrUndecryptable) {
				c.log.Warn("dropping undecryptable frame")
				continue
			}
			c.log.Debug("read loop ended", "error", err)
			c.gone.Store(true)
			return
		}

		msg, err := packet.Decode(payload)
		if err != nil {
			c.log.Warn("dropping malformed message", "error", err)
			continue
		}
		c.Deliver(msg)
	}
}
