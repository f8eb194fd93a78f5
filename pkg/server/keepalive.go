package server

import (
	"time"

	"go.uber.org/zap"

	"github.com/flafmg/dandelion-classic/pkg/player"
	"github.com/flafmg/dandelion-classic/pkg/protocol"
)

// KeepalivePeriod is the interval between Ping sweeps. Keepalive is the
// authoritative liveness detector: a write failure here, not a read
// timeout, is what reaps a dead session.
const KeepalivePeriod = 100 * time.Millisecond

func (s *Server) keepaliveLoop() {
	ticker := time.NewTicker(KeepalivePeriod)
	defer ticker.Stop()

	ping := protocol.EncodePing()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweepKeepalive(ping)
		}
	}
}

func (s *Server) sweepKeepalive(ping []byte) {
	var dead []*player.Player
	for _, p := range s.players.snapshot() {
		if err := p.Write(ping); err != nil {
			dead = append(dead, p)
		}
	}

	for _, p := range dead {
		s.log.Debug("keepalive write failed, reaping session", zap.Int8("player_id", p.ID()))
		s.despawn(p)
		p.Close()
	}
}
