package world

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
)

const (
	headerIdentifier = "DANDELION MAP FORMAT" // 20 ASCII bytes
	headerVersion    = 0x00
)

// ErrInvalidFormat is returned when a file's header identifier does not match.
var ErrInvalidFormat = errors.New("world: invalid DMF header identifier")

// ErrUnsupportedVersion is returned when the version byte is not 0x00.
var ErrUnsupportedVersion = errors.New("world: unsupported DMF version")

// ErrTruncated is returned when any field is short.
var ErrTruncated = errors.New("world: truncated DMF file")

// headerIdentifierBytes is the fixed 20-byte on-disk identifier.
var headerIdentifierBytes = [20]byte{}

func init() {
	copy(headerIdentifierBytes[:], headerIdentifier)
}

// Save writes m to path in DMF format, little-endian.
func (m *DmfMap) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(headerIdentifierBytes[:]); err != nil {
		return err
	}
	if _, err := f.Write([]byte{headerVersion}); err != nil {
		return err
	}

	fields := []int16{
		m.Spawn.X, m.Spawn.Y, m.Spawn.Z,
		m.XSize, m.YSize, m.ZSize,
	}
	for _, v := range fields {
		if err := binary.Write(f, binary.LittleEndian, v); err != nil {
			return err
		}
	}

	_, err = f.Write(m.Blocks)
	return err
}

// Load reads a DMF file from path.
func Load(path string) (*DmfMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var identifier [20]byte
	if err := readExact(f, identifier[:]); err != nil {
		return nil, err
	}
	if identifier != headerIdentifierBytes {
		return nil, ErrInvalidFormat
	}

	var version [1]byte
	if err := readExact(f, version[:]); err != nil {
		return nil, err
	}
	if version[0] != headerVersion {
		return nil, ErrUnsupportedVersion
	}

	var spawnX, spawnY, spawnZ, xSize, ySize, zSize int16
	for _, v := range []*int16{&spawnX, &spawnY, &spawnZ, &xSize, &ySize, &zSize} {
		if err := binary.Read(f, binary.LittleEndian, v); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, ErrTruncated
			}
			return nil, err
		}
	}

	total := int(xSize) * int(ySize) * int(zSize)
	blocks := make([]byte, total)
	if err := readExact(f, blocks); err != nil {
		return nil, err
	}

	return &DmfMap{
		Spawn:  Position{X: spawnX, Y: spawnY, Z: spawnZ},
		XSize:  xSize,
		YSize:  ySize,
		ZSize:  zSize,
		Blocks: blocks,
	}, nil
}

func readExact(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrTruncated
		}
		return err
	}
	return nil
}
