package blockfall

import (
	"math/rand"
)

// ShapeGetter supplies the shape of every newly spawned piece.
type ShapeGetter interface {
	Next() Shape
}

type RandomGetter struct {
	randomizer *rand.Rand
}

func NewRandomGetter(seed int64) *RandomGetter {
	return &RandomGetter{randomizer: rand.New(rand.NewSource(seed))}
}

func (r *RandomGetter) Next() Shape {
	return RandomShape(r.randomizer)
}

// QueueGetter hands out shapes in the order they were pushed. When the queue
// runs dry it keeps returning the fallback shape.
type QueueGetter struct {
	queue    []Shape
	fallback Shape
}

func NewQueueGetter(shapes ...Shape) *QueueGetter {
	q := &QueueGetter{queue: make([]Shape, 0, len(shapes)), fallback: ShapeSquare}
	q.Push(shapes...)
	return q
}

func (q *QueueGetter) Next() Shape {
	if len(q.queue) == 0 {
		return q.fallback
	}
	s := q.queue[0]
	q.queue = q.queue[1:]
	return s
}

func (q *QueueGetter) Push(shapes ...Shape) {
	q.queue = append(q.queue, shapes...)
}

// SetFallback changes the shape returned once the queue is empty.
func (q *QueueGetter) SetFallback(s Shape) {
	q.fallback = s
}

func (q *QueueGetter) Len() int {
	return len(q.queue)
}
