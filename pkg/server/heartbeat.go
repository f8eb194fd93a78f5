package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// HeartbeatPeriod is the interval between heartbeat requests.
const HeartbeatPeriod = 45 * time.Second

// heartbeatSoftware identifies this implementation to the heartbeat
// server, analogous to a User-Agent.
const heartbeatSoftware = "dandelion-classic"

func (s *Server) heartbeatLoop() {
	if s.cfg.HeartbeatURL == "" {
		return
	}

	ticker := time.NewTicker(HeartbeatPeriod)
	defer ticker.Stop()

	s.sendHeartbeat()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sendHeartbeat()
		}
	}
}

func (s *Server) sendHeartbeat() {
	q := url.Values{}
	q.Set("port", strconv.Itoa(int(s.cfg.Port)))
	q.Set("max", strconv.FormatUint(uint64(s.cfg.MaxPlayers), 10))
	q.Set("name", s.cfg.Name)
	q.Set("public", strconv.FormatBool(s.cfg.Public))
	q.Set("version", "7")
	q.Set("salt", s.salt)
	q.Set("users", strconv.Itoa(s.players.count()))
	q.Set("software", heartbeatSoftware)
	q.Set("web", "false")

	reqURL := fmt.Sprintf("%s?%s", s.cfg.HeartbeatURL, q.Encode())
	resp, err := http.Get(reqURL)
	if err != nil {
		s.log.Warn("heartbeat request failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.log.Warn("heartbeat request rejected", zap.Int("status", resp.StatusCode))
	}
}
