// Package server wires together the protocol codec, world registry,
// player registry, and broadcast queue into the running dispatcher:
// the accept loop, the per-session protocol state machine, and the
// keepalive, heartbeat, and world-save periodic loops.
package server

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/flafmg/dandelion-classic/pkg/broadcast"
	"github.com/flafmg/dandelion-classic/pkg/config"
	"github.com/flafmg/dandelion-classic/pkg/mapbuilder"
	"github.com/flafmg/dandelion-classic/pkg/salt"
	"github.com/flafmg/dandelion-classic/pkg/world"
)

// broadcastQueueCapacity is generous enough that the dispatcher and
// keepalive loop never block enqueuing under ordinary load.
const broadcastQueueCapacity = 1024

// Server is the running supervisor: one accept loop plus the periodic
// keepalive, heartbeat, and world-save loops, all sharing the player
// and world registries and the broadcast queue.
type Server struct {
	cfg  *config.Config
	log  *zap.Logger
	salt string

	players *playerRegistry
	worlds  *world.Registry
	queue   *broadcast.Queue

	listener  net.Listener
	worldsDir string

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Server from a loaded configuration and logger. The
// world registry's directory and the builder used to seed a missing
// default world are supplied by the caller so tests can point them at
// a temp directory.
func New(cfg *config.Config, log *zap.Logger, worldsDir string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:       cfg,
		log:       log,
		salt:      salt.Generate(),
		players:   newPlayerRegistry(),
		worlds:    world.NewRegistry(worldsDir, log),
		queue:     broadcast.NewQueue(broadcastQueueCapacity),
		worldsDir: worldsDir,
		conns:     make(map[net.Conn]struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start loads worlds, seeds the default world if absent, binds the
// listener, and spawns every periodic loop plus the accept loop. It
// returns once the listener is bound; the accept loop runs in the
// background until Stop is called.
func (s *Server) Start(builder mapbuilder.Builder) error {
	if err := s.worlds.LoadAll(); err != nil {
		s.log.Warn("world directory unavailable, starting with no worlds", zap.Error(err))
	}

	if _, ok := s.worlds.Get(s.cfg.DefaultMap); !ok {
		s.log.Info("default world missing, generating a flat world", zap.String("world", s.cfg.DefaultMap))
		m, err := builder.Build(s.cfg.DefaultMap)
		if err != nil {
			return fmt.Errorf("server: build default world: %w", err)
		}
		s.worlds.Put(s.cfg.DefaultMap, s.worldPath(s.cfg.DefaultMap), m)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Addr, s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	s.listener = ln

	s.wg.Add(4)
	go func() { defer s.wg.Done(); s.worlds.SaveAllLoop(s.ctx, world.DefaultSavePeriod) }()
	go func() { defer s.wg.Done(); s.keepaliveLoop() }()
	go func() { defer s.wg.Done(); s.heartbeatLoop() }()
	go func() { defer s.wg.Done(); broadcast.Flusher(s.queue, s.players.recipients, s.log, s.ctx.Done()) }()

	s.wg.Add(1)
	go func() { defer s.wg.Done(); s.acceptLoop() }()

	s.log.Info("server listening", zap.String("addr", addr), zap.String("salt", s.salt))
	return nil
}

// Stop cancels every periodic loop, closes the listener (ending the
// accept loop), closes every accepted connection (identified or still
// mid-handshake), waits for all loops to exit, and makes a best-effort
// final save of every world.
func (s *Server) Stop() {
	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}

	s.connsMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connsMu.Unlock()

	s.wg.Wait()
	s.worlds.SaveAll()
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				s.log.Warn("accept failed", zap.Error(err))
				continue
			}
		}
		s.trackConn(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrackConn(conn)
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) trackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	delete(s.conns, conn)
}

// worldPath builds the on-disk path a world named name would have if
// it had been found by LoadAll, for seeding a freshly generated world.
func (s *Server) worldPath(name string) string {
	return filepath.Join(s.worldsDir, name+".dmf")
}
