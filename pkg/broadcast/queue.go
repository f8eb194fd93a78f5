// Package broadcast implements the FIFO of pending broadcast packets
// and the single flusher that delivers each one to every eligible
// connected player.
package broadcast

import (
	"time"

	"go.uber.org/zap"
)

// IdlePoll is how long the flusher sleeps between drains of an empty queue.
const IdlePoll = 20 * time.Millisecond

// Recipient is anything the flusher can write a raw frame to.
type Recipient interface {
	ID() int8
	Write(frame []byte) error
}

// Item is one pending broadcast: a packet and an optional excluded
// recipient id.
type Item struct {
	Excluded *int8
	Frame    []byte
}

// Queue is a single-consumer, multi-producer FIFO of broadcast Items.
// It is backed by a buffered channel sized generously so producers
// (the dispatcher, the keepalive loop) never block under normal load.
type Queue struct {
	items chan Item
}

// NewQueue creates a queue with the given buffer capacity.
func NewQueue(capacity int) *Queue {
	return &Queue{items: make(chan Item, capacity)}
}

// Enqueue appends a packet to the queue, excluding the given player id
// if excluded is non-nil.
func (q *Queue) Enqueue(excluded *int8, frame []byte) {
	q.items <- Item{Excluded: excluded, Frame: frame}
}

// Flusher drains the queue in FIFO order, delivering each item to every
// recipient returned by snapshot except the excluded one. A write
// failure on one recipient does not abort delivery to the others; the
// failing session is left for the keepalive loop to reap.
func Flusher(q *Queue, snapshot func() []Recipient, log *zap.Logger, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case item := <-q.items:
			deliver(item, snapshot(), log)
		default:
			select {
			case <-stop:
				return
			case item := <-q.items:
				deliver(item, snapshot(), log)
			case <-time.After(IdlePoll):
			}
		}
	}
}

func deliver(item Item, recipients []Recipient, log *zap.Logger) {
	for _, r := range recipients {
		if item.Excluded != nil && r.ID() == *item.Excluded {
			continue
		}
		if err := r.Write(item.Frame); err != nil {
			log.Debug("broadcast write failed, leaving for keepalive to reap",
				zap.Int8("player_id", r.ID()), zap.Error(err))
		}
	}
}
