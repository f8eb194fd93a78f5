package server

import (
	"errors"
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/flafmg/dandelion-classic/pkg/chat"
	"github.com/flafmg/dandelion-classic/pkg/player"
	"github.com/flafmg/dandelion-classic/pkg/protocol"
)

// sessionState is the per-connection protocol state machine. It never
// regresses: AwaitingIdentification -> InWorld -> Closed.
type sessionState int

const (
	stateAwaitingIdentification sessionState = iota
	stateInWorld
)

// handleConnection owns one accepted TCP connection for its entire
// life: it blocks on reads, frames by packet id, and drives the
// session through AwaitingIdentification and InWorld until the read
// side fails, at which point it enters Closed.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	state := stateAwaitingIdentification
	var p *player.Player

	for {
		id, payload, err := protocol.ReadFrame(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.log.Debug("session read failed", zap.Error(err))
			}
			break
		}

		switch state {
		case stateAwaitingIdentification:
			if id != protocol.PacketServerIdentification {
				s.log.Debug("ignoring frame before identification", zap.Uint8("packet_id", id))
				continue
			}
			newcomer, ok := s.identify(conn, protocol.DecodeIdentification(payload))
			if !ok {
				return
			}
			p = newcomer
			state = stateInWorld

		case stateInWorld:
			switch id {
			case protocol.PacketSetBlockServer:
				s.handleSetBlock(p, protocol.DecodeSetBlockRequest(payload))
			case protocol.PacketPositionAndOrientation:
				s.handlePositionUpdate(p, protocol.DecodePositionUpdate(payload))
			case protocol.PacketMessage:
				s.handleChat(p, protocol.DecodeChatRequest(payload))
			default:
				s.log.Debug("ignoring unhandled in-world packet", zap.Uint8("packet_id", id))
			}
		}
	}

	if p != nil {
		s.despawn(p)
	}
}

// identify runs §4.7's AwaitingIdentification sequence: id allocation,
// registry insertion, ServerIdentification, default-world lookup, level
// transfer, spawn teleport, spawn-packet exchange, and the join chat
// banner. It reports false if the session could not be brought into
// InWorld, in which case the connection should simply be closed by the
// caller.
func (s *Server) identify(conn net.Conn, ident protocol.Identification) (*player.Player, bool) {
	others := s.players.snapshot()

	p, ok := s.players.allocate(func(id int8) *player.Player {
		return player.New(id, ident.Username, conn, s.cfg.DefaultMap)
	})
	if !ok {
		conn.Write(protocol.EncodeDisconnect("server full"))
		return nil, false
	}

	if err := p.Write(protocol.EncodeServerIdentification(s.cfg.Name, s.cfg.MOTD)); err != nil {
		s.players.remove(p.ID())
		return nil, false
	}

	m, ok := s.worlds.Get(s.cfg.DefaultMap)
	if !ok {
		s.log.Error("default world unavailable at login", zap.String("world", s.cfg.DefaultMap))
		p.Write(protocol.EncodeDisconnect("server has no default world"))
		s.players.remove(p.ID())
		return nil, false
	}

	if err := p.StreamLevel(m); err != nil {
		s.log.Debug("level stream failed", zap.Int8("player_id", p.ID()), zap.Error(err))
		s.players.remove(p.ID())
		return nil, false
	}

	spawn := m.SpawnPoint()
	if err := p.Teleport(spawn.X, spawn.Y, spawn.Z, 0, 0); err != nil {
		s.players.remove(p.ID())
		return nil, false
	}

	for _, other := range others {
		x, y, z, yaw, pitch := other.Position()
		p.Write(protocol.EncodeSpawnPlayer(other.ID(), other.Name, x, y, z, yaw, pitch))
	}
	excl := p.ID()
	s.queue.Enqueue(&excl, protocol.EncodeSpawnPlayer(p.ID(), p.Name, spawn.X, spawn.Y, spawn.Z, 0, 0))

	s.queue.Enqueue(nil, protocol.EncodeMessage(protocol.OwnPlayerID, chat.Join(p.Name)))
	for _, line := range chat.Welcome() {
		p.SendMessage(line)
	}

	return p, true
}

func (s *Server) handleSetBlock(p *player.Player, req protocol.SetBlockRequest) {
	m, ok := s.worlds.Get(p.World())
	if !ok || !m.InBounds(req.X, req.Y, req.Z) {
		return
	}
	applied := req.AppliedBlock()
	m.SetBlock(req.X, req.Y, req.Z, applied)

	excl := p.ID()
	s.queue.Enqueue(&excl, protocol.EncodeSetBlock(req.X, req.Y, req.Z, applied))
}

func (s *Server) handlePositionUpdate(p *player.Player, upd protocol.PositionUpdate) {
	p.SetPosition(upd.X, upd.Y, upd.Z, upd.Yaw, upd.Pitch)

	excl := p.ID()
	s.queue.Enqueue(&excl, protocol.EncodeSetPositionAndOrientation(p.ID(), upd.X, upd.Y, upd.Z, upd.Yaw, upd.Pitch))
}

func (s *Server) handleChat(p *player.Player, req protocol.ChatRequest) {
	s.queue.Enqueue(nil, protocol.EncodeMessage(p.ID(), chat.Relay(p.Name, req.Message)))
}

// despawn enters Closed: remove from the registry, broadcast the
// despawn packet, and announce the player's departure.
func (s *Server) despawn(p *player.Player) {
	if !s.players.remove(p.ID()) {
		return
	}
	s.queue.Enqueue(nil, protocol.EncodeDespawnPlayer(p.ID()))
	s.queue.Enqueue(nil, protocol.EncodeMessage(protocol.OwnPlayerID, chat.Goodbye(p.Name)))
}
