// Package player implements the connected-player record: identity,
// live position, the world it is pinned to, and the exclusive write
// handle used to serialize every packet sent to that session.
package player

import (
	"bytes"
	"encoding/binary"
	"net"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/flafmg/dandelion-classic/pkg/protocol"
	"github.com/flafmg/dandelion-classic/pkg/world"
)

// MaxNameLength is the wire width of the username field.
const MaxNameLength = protocol.StringFieldLength

// Player is a connected session's identity and mutable state. ID and
// Name are fixed for the lifetime of the session; position, yaw, pitch,
// and the current world name may change.
type Player struct {
	id   int8
	Name string

	mu    sync.RWMutex
	world string
	x, y, z int16
	yaw, pitch byte

	// writeMu is the exclusive handle on the session's write half. Every
	// packet sent to this player, whether from the dispatcher, the
	// broadcast flusher, or the keepalive loop, acquires it first.
	writeMu sync.Mutex
	conn    net.Conn
}

// New constructs a Player bound to conn, starting in worldName.
func New(id int8, name string, conn net.Conn, worldName string) *Player {
	return &Player{
		id:    id,
		Name:  name,
		conn:  conn,
		world: worldName,
	}
}

// ID returns the session's allocated player id (0-127).
func (p *Player) ID() int8 {
	return p.id
}

// World returns the name of the world this player currently occupies.
func (p *Player) World() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.world
}

// SetWorld pins the player to a different world name.
func (p *Player) SetWorld(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.world = name
}

// Position returns the player's last known position and orientation.
func (p *Player) Position() (x, y, z int16, yaw, pitch byte) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.x, p.y, p.z, p.yaw, p.pitch
}

// SetPosition records a new position and orientation.
func (p *Player) SetPosition(x, y, z int16, yaw, pitch byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.x, p.y, p.z = x, y, z
	p.yaw, p.pitch = yaw, pitch
}

// Write sends a single pre-encoded frame under the write-half lock.
func (p *Player) Write(frame []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.writeLocked(frame)
}

// writeLocked assumes writeMu is already held.
func (p *Player) writeLocked(frame []byte) error {
	_, err := p.conn.Write(frame)
	return err
}

// Close closes the underlying connection.
func (p *Player) Close() error {
	return p.conn.Close()
}

// SendMessage emits a 0x0d Message with source id -1 (server/self).
func (p *Player) SendMessage(text string) error {
	return p.Write(protocol.EncodeMessage(protocol.OwnPlayerID, text))
}

// Teleport updates the player's recorded position then emits a 0x08
// SetPositionAndOrientation addressed to the recipient's own player.
func (p *Player) Teleport(x, y, z int16, yaw, pitch byte) error {
	p.SetPosition(x, y, z, yaw, pitch)
	return p.Write(protocol.EncodeSetPositionAndOrientation(protocol.OwnPlayerID, x, y, z, yaw, pitch))
}

// levelChunkSize is the width of one LevelDataChunk's chunk_data field;
// the compressed level is split into slices of at most this size.
const levelChunkSize = protocol.ByteArrayFieldLength

// StreamLevel runs the full level-transfer sequence (LevelInitialize,
// any number of LevelDataChunk, LevelFinalize) as one continuous
// acquisition of the write-half lock so no other packet can interleave.
func (p *Player) StreamLevel(m *world.DmfMap) error {
	xSize, ySize, zSize, blocks := m.Snapshot()

	var raw bytes.Buffer
	if err := binary.Write(&raw, binary.BigEndian, uint32(len(blocks))); err != nil {
		return err
	}
	raw.Write(blocks)

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(raw.Bytes()); err != nil {
		gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if err := p.writeLocked(protocol.EncodeLevelInitialize()); err != nil {
		return err
	}

	data := compressed.Bytes()
	total := len(data)
	for offset := 0; offset < total || total == 0; offset += levelChunkSize {
		end := offset + levelChunkSize
		if end > total {
			end = total
		}
		chunk := data[offset:end]
		chunkLength := int16(len(chunk))
		percent := int(float64(offset+len(chunk)) / float64(max(total, 1)) * 100)
		if percent > 100 {
			percent = 100
		}
		if percent < 0 {
			percent = 0
		}
		if err := p.writeLocked(protocol.EncodeLevelDataChunk(chunk, chunkLength, byte(percent))); err != nil {
			return err
		}
		if total == 0 {
			break
		}
	}

	return p.writeLocked(protocol.EncodeLevelFinalize(xSize, ySize, zSize))
}
