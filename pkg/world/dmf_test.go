package world

import "testing"

func TestNewBlocksLength(t *testing.T) {
	m := New(Position{1, 2, 3}, 4, 5, 6)
	if len(m.Blocks) != 4*5*6 {
		t.Fatalf("len(Blocks) = %d, want %d", len(m.Blocks), 4*5*6)
	}
}

func TestSetGetBlockValidCoordinate(t *testing.T) {
	m := New(Position{}, 16, 16, 16)
	m.SetBlock(1, 2, 3, 7)
	if got := m.GetBlock(1, 2, 3); got != 7 {
		t.Errorf("GetBlock = %d, want 7", got)
	}
}

func TestSetBlockOutOfBoundsIsNoOp(t *testing.T) {
	m := New(Position{}, 16, 16, 16)
	before := make([]byte, len(m.Blocks))
	copy(before, m.Blocks)

	m.SetBlock(-1, 0, 0, 9)
	m.SetBlock(16, 0, 0, 9)
	m.SetBlock(0, 16, 0, 9)
	m.SetBlock(0, 0, 16, 9)

	for i := range before {
		if m.Blocks[i] != before[i] {
			t.Fatalf("out-of-bounds SetBlock mutated the volume at index %d", i)
		}
	}
}

func TestGetBlockOutOfBoundsReturnsZero(t *testing.T) {
	m := New(Position{}, 16, 16, 16)
	m.SetBlock(0, 0, 0, 5)
	if got := m.GetBlock(-1, 0, 0); got != 0 {
		t.Errorf("GetBlock(-1,0,0) = %d, want 0", got)
	}
	if got := m.GetBlock(16, 0, 0); got != 0 {
		t.Errorf("GetBlock(16,0,0) = %d, want 0", got)
	}
}

func TestBlockIndexFormula(t *testing.T) {
	m := New(Position{}, 4, 5, 6)
	x, y, z := int16(2), int16(3), int16(1)
	m.SetBlock(x, y, z, 42)
	want := int(y)*int(m.ZSize)*int(m.XSize) + int(z)*int(m.XSize) + int(x)
	if m.Blocks[want] != 42 {
		t.Fatalf("block at authoritative index %d = %d, want 42", want, m.Blocks[want])
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	m := New(Position{}, 2, 2, 2)
	m.SetBlock(0, 0, 0, 1)
	_, _, _, blocks := m.Snapshot()
	blocks[0] = 99
	if m.GetBlock(0, 0, 0) != 1 {
		t.Fatal("Snapshot must not alias the live block volume")
	}
}
