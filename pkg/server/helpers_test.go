package server

import (
	"io"

	"github.com/flafmg/dandelion-classic/pkg/protocol"
)

// clientBoundFrameLength mirrors protocol.frameLength for the
// client-bound direction, which the production dispatcher never needs
// to parse but a test harness playing the client role does.
var clientBoundFrameLength = map[byte]int{
	protocol.PacketServerIdentification:   1 + protocol.StringFieldLength + protocol.StringFieldLength + 1,
	protocol.PacketLevelInitialize:        0,
	protocol.PacketLevelDataChunk:         2 + protocol.ByteArrayFieldLength + 1,
	protocol.PacketLevelFinalize:          2 + 2 + 2,
	protocol.PacketSetBlockClient:         2 + 2 + 2 + 1,
	protocol.PacketSpawnPlayer:            1 + protocol.StringFieldLength + 2 + 2 + 2 + 1 + 1,
	protocol.PacketPositionAndOrientation: 1 + 2 + 2 + 2 + 1 + 1,
	protocol.PacketDespawnPlayer:          1,
	protocol.PacketMessage:                1 + protocol.StringFieldLength,
	protocol.PacketDisconnect:             protocol.StringFieldLength,
	protocol.PacketUpdateUserType:         1,
}

func readClientBoundFrame(r io.Reader) (byte, []byte, error) {
	var idBuf [1]byte
	if _, err := io.ReadFull(r, idBuf[:]); err != nil {
		return 0, nil, err
	}
	n := clientBoundFrameLength[idBuf[0]]
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return 0, nil, err
		}
	}
	return idBuf[0], payload, nil
}
