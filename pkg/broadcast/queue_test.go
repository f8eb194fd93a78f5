package broadcast

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeRecipient struct {
	id       int8
	mu       sync.Mutex
	received [][]byte
	failNext bool
}

func (f *fakeRecipient) ID() int8 { return f.id }

func (f *fakeRecipient) Write(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return errors.New("write failed")
	}
	f.received = append(f.received, append([]byte(nil), frame...))
	return nil
}

func (f *fakeRecipient) frames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.received
}

func TestDeliverExcludesSender(t *testing.T) {
	a := &fakeRecipient{id: 1}
	b := &fakeRecipient{id: 2}
	excl := int8(1)

	deliver(Item{Excluded: &excl, Frame: []byte("hi")}, []Recipient{a, b}, zap.NewNop())

	if len(a.frames()) != 0 {
		t.Errorf("excluded recipient received %d frames, want 0", len(a.frames()))
	}
	if len(b.frames()) != 1 {
		t.Errorf("recipient received %d frames, want 1", len(b.frames()))
	}
}

func TestDeliverNoExclusionReachesEveryone(t *testing.T) {
	a := &fakeRecipient{id: 1}
	b := &fakeRecipient{id: 2}

	deliver(Item{Frame: []byte("hi")}, []Recipient{a, b}, zap.NewNop())

	if len(a.frames()) != 1 || len(b.frames()) != 1 {
		t.Errorf("expected both recipients to receive the frame")
	}
}

func TestDeliverOneFailureDoesNotAbortOthers(t *testing.T) {
	a := &fakeRecipient{id: 1, failNext: true}
	b := &fakeRecipient{id: 2}

	deliver(Item{Frame: []byte("hi")}, []Recipient{a, b}, zap.NewNop())

	if len(b.frames()) != 1 {
		t.Errorf("surviving recipient should still receive the frame")
	}
}

func TestFlusherPreservesFIFOOrderPerRecipient(t *testing.T) {
	q := NewQueue(8)
	r := &fakeRecipient{id: 1}
	stop := make(chan struct{})
	defer close(stop)

	snapshot := func() []Recipient { return []Recipient{r} }
	go Flusher(q, snapshot, zap.NewNop(), stop)

	q.Enqueue(nil, []byte("a"))
	q.Enqueue(nil, []byte("b"))
	q.Enqueue(nil, []byte("c"))

	waitForFrames(t, r, 3)

	got := r.frames()
	want := []string{"a", "b", "c"}
	for i, w := range want {
		if string(got[i]) != w {
			t.Errorf("frame %d = %q, want %q", i, got[i], w)
		}
	}
}

func waitForFrames(t *testing.T, r *fakeRecipient, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(r.frames()) >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d frames, got %d", n, len(r.frames()))
}
