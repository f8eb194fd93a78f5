package protocol

import (
	"fmt"
	"io"
)

// Packet ids, client-bound and server-bound share the same id space
// per spec but are only ever valid in one direction at a time.
const (
	PacketServerIdentification       byte = 0x00 // server-bound: Identification
	PacketPing                       byte = 0x01
	PacketLevelInitialize            byte = 0x02
	PacketLevelDataChunk             byte = 0x03
	PacketLevelFinalize              byte = 0x04
	PacketSetBlockServer             byte = 0x05 // server-bound: SetBlock
	PacketSetBlockClient             byte = 0x06 // client-bound: SetBlock update
	PacketSpawnPlayer                byte = 0x07
	PacketPositionAndOrientation     byte = 0x08 // shared id, direction-dependent payload
	PacketDespawnPlayer              byte = 0x0c
	PacketMessage                    byte = 0x0d
	PacketDisconnect                 byte = 0x0e
	PacketUpdateUserType             byte = 0x0f
	ClassicProtocolVersion           byte = 0x07
	DefaultUserType                  byte = 0x64
	OwnPlayerID                      int8 = -1
)

// frameLength is the payload length (excluding the id octet) of every
// catalogued server-bound packet. Classic frames have no length prefix,
// so the dispatcher must know exactly how many bytes to consume for a
// given id before it can read the next frame.
var frameLength = map[byte]int{
	PacketServerIdentification:   1 + StringFieldLength + StringFieldLength,
	PacketSetBlockServer:         2 + 2 + 2 + 1 + 1,
	PacketPositionAndOrientation: 1 + 2 + 2 + 2 + 1 + 1,
	PacketMessage:                1 + StringFieldLength,
}

// FrameLength reports the payload length for a known server-bound id.
func FrameLength(id byte) (int, bool) {
	n, ok := frameLength[id]
	return n, ok
}

// ReadFrame consumes exactly one frame from r: the id octet plus the
// declared payload for that id. An id outside the server-bound catalog
// cannot be safely framed (there is no length prefix to fall back on)
// and is reported as an error so the caller can close the session.
func ReadFrame(r io.Reader) (id byte, payload []byte, err error) {
	var idBuf [1]byte
	if _, err := io.ReadFull(r, idBuf[:]); err != nil {
		return 0, nil, err
	}
	id = idBuf[0]
	n, ok := FrameLength(id)
	if !ok {
		return id, nil, fmt.Errorf("protocol: unrecognized packet id 0x%02x", id)
	}
	payload = make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return 0, nil, err
		}
	}
	return id, payload, nil
}

// --- server-bound packet decoding ---

// Identification is the 0x00 client -> server handshake packet.
type Identification struct {
	ProtocolVersion  byte
	Username         string
	VerificationKey  string
}

// DecodeIdentification parses a 0x00 frame payload.
func DecodeIdentification(payload []byte) Identification {
	r := NewReader(payload)
	return Identification{
		ProtocolVersion: r.Byte(),
		Username:        r.String(),
		VerificationKey: r.String(),
	}
}

// SetBlockRequest is the 0x05 client -> server block edit packet.
type SetBlockRequest struct {
	X, Y, Z   int16
	Mode      byte // 0 = break, otherwise place
	BlockType byte
}

// DecodeSetBlockRequest parses a 0x05 frame payload.
func DecodeSetBlockRequest(payload []byte) SetBlockRequest {
	r := NewReader(payload)
	return SetBlockRequest{
		X:         r.Short(),
		Y:         r.Short(),
		Z:         r.Short(),
		Mode:      r.Byte(),
		BlockType: r.Byte(),
	}
}

// AppliedBlock returns the block id that this edit actually writes:
// mode-zero (break) always forces air (0x00) regardless of BlockType.
func (s SetBlockRequest) AppliedBlock() byte {
	if s.Mode == 0 {
		return 0x00
	}
	return s.BlockType
}

// PositionUpdate is the 0x08 client -> server movement packet.
type PositionUpdate struct {
	PlayerID   int8 // ignored: authoritative id is the session's own
	X, Y, Z    int16
	Yaw, Pitch byte
}

// DecodePositionUpdate parses a 0x08 frame payload.
func DecodePositionUpdate(payload []byte) PositionUpdate {
	r := NewReader(payload)
	return PositionUpdate{
		PlayerID: r.SByte(),
		X:        r.Short(),
		Y:        r.Short(),
		Z:        r.Short(),
		Yaw:      r.Byte(),
		Pitch:    r.Byte(),
	}
}

// ChatRequest is the 0x0d client -> server chat packet.
type ChatRequest struct {
	PlayerID int8 // ignored
	Message  string
}

// DecodeChatRequest parses a 0x0d frame payload.
func DecodeChatRequest(payload []byte) ChatRequest {
	r := NewReader(payload)
	return ChatRequest{
		PlayerID: r.SByte(),
		Message:  r.String(),
	}
}

// --- client-bound packet encoding ---

// EncodeServerIdentification builds the 0x00 login reply.
func EncodeServerIdentification(name, motd string) []byte {
	return NewWriter().
		Byte(PacketServerIdentification).
		Byte(ClassicProtocolVersion).
		String(name).
		String(motd).
		Byte(DefaultUserType).
		Bytes()
}

// EncodePing builds the 0x01 keepalive ping.
func EncodePing() []byte {
	return NewWriter().Byte(PacketPing).Bytes()
}

// EncodeLevelInitialize builds the 0x02 level-transfer start marker.
func EncodeLevelInitialize() []byte {
	return NewWriter().Byte(PacketLevelInitialize).Bytes()
}

// EncodeLevelDataChunk builds one 0x03 compressed level chunk.
func EncodeLevelDataChunk(chunk []byte, chunkLength int16, percentComplete byte) []byte {
	return NewWriter().
		Byte(PacketLevelDataChunk).
		Short(chunkLength).
		ByteArray(chunk).
		Byte(percentComplete).
		Bytes()
}

// EncodeLevelFinalize builds the 0x04 level-transfer end marker.
func EncodeLevelFinalize(xSize, ySize, zSize int16) []byte {
	return NewWriter().
		Byte(PacketLevelFinalize).
		Short(xSize).
		Short(ySize).
		Short(zSize).
		Bytes()
}

// EncodeSetBlock builds the 0x06 client-bound block-update packet.
func EncodeSetBlock(x, y, z int16, blockType byte) []byte {
	return NewWriter().
		Byte(PacketSetBlockClient).
		Short(x).
		Short(y).
		Short(z).
		Byte(blockType).
		Bytes()
}

// EncodeSpawnPlayer builds the 0x07 player-spawn packet.
func EncodeSpawnPlayer(id int8, name string, x, y, z int16, yaw, pitch byte) []byte {
	return NewWriter().
		Byte(PacketSpawnPlayer).
		SByte(id).
		String(name).
		Short(x).
		Short(y).
		Short(z).
		Byte(yaw).
		Byte(pitch).
		Bytes()
}

// EncodeSetPositionAndOrientation builds the 0x08 client-bound teleport
// packet. id == -1 addresses the recipient's own player.
func EncodeSetPositionAndOrientation(id int8, x, y, z int16, yaw, pitch byte) []byte {
	return NewWriter().
		Byte(PacketPositionAndOrientation).
		SByte(id).
		Short(x).
		Short(y).
		Short(z).
		Byte(yaw).
		Byte(pitch).
		Bytes()
}

// EncodeDespawnPlayer builds the 0x0c player-despawn packet.
func EncodeDespawnPlayer(id int8) []byte {
	return NewWriter().Byte(PacketDespawnPlayer).SByte(id).Bytes()
}

// EncodeMessage builds the 0x0d client-bound chat packet.
func EncodeMessage(sourceID int8, text string) []byte {
	return NewWriter().
		Byte(PacketMessage).
		SByte(sourceID).
		String(text).
		Bytes()
}

// EncodeDisconnect builds the 0x0e disconnect packet.
func EncodeDisconnect(reason string) []byte {
	return NewWriter().Byte(PacketDisconnect).String(reason).Bytes()
}

// EncodeUpdateUserType builds the 0x0f user-type packet.
func EncodeUpdateUserType(userType byte) []byte {
	return NewWriter().Byte(PacketUpdateUserType).Byte(userType).Bytes()
}
