// Package mapbuilder declares the interface the procedural map
// generator satisfies. The generator itself (flat / noise / island
// strategies) is an external collaborator and out of scope; Flat is
// the one trivial strategy kept here so the server is bootable against
// an empty maps directory.
package mapbuilder

import "github.com/flafmg/dandelion-classic/pkg/world"

// Builder produces a brand new world for a given name.
type Builder interface {
	Build(name string) (*world.DmfMap, error)
}

// Flat builds a stone floor GroundHeight blocks deep (y 0 to
// GroundHeight-1) under one layer of grass at y = GroundHeight, with
// spawn centered above the ground.
type Flat struct {
	XSize, YSize, ZSize int16
	GroundHeight        int16
}

// DefaultFlat returns the 256x64x256 Flat builder the server binary uses
// to seed a missing default world.
func DefaultFlat() Flat {
	return Flat{XSize: 256, YSize: 64, ZSize: 256, GroundHeight: 32}
}

const (
	blockAir   byte = 0
	blockStone byte = 1
	blockGrass byte = 2
)

// Build implements Builder.
func (f Flat) Build(name string) (*world.DmfMap, error) {
	spawn := world.Position{
		X: f.XSize / 2,
		Y: f.GroundHeight + 1,
		Z: f.ZSize / 2,
	}
	m := world.New(spawn, f.XSize, f.YSize, f.ZSize)
	for x := int16(0); x < f.XSize; x++ {
		for z := int16(0); z < f.ZSize; z++ {
			for y := int16(0); y < f.GroundHeight; y++ {
				m.SetBlock(x, y, z, blockStone)
			}
			m.SetBlock(x, f.GroundHeight, z, blockGrass)
		}
	}
	return m, nil
}
