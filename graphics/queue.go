package graphics

// MaxBatchInstances is the fixed capacity of a single instanced draw
// call's uniform array. A sequence of draws sharing a BatchKey beyond
// this count spills into a new batch rather than growing the existing
// one, keeping every batch's uniform upload a fixed, predictable size.
const MaxBatchInstances = 128

// BatchKey groups draws that can be satisfied by a single instanced
// draw call: same shader program, same vertex data, same texture and
// material uniforms.
type BatchKey struct {
	RendererID ID
	PolyID     ID
	MaterialID ID
}

// batch accumulates the packed per-instance uniform bytes for at most
// MaxBatchInstances draws sharing a BatchKey.
type batch struct {
	data  []byte
	count int
}

func (b *batch) full() bool { return b.count == MaxBatchInstances }

// GraphicsQueue collects draw calls issued by one worker slot during a
// single frame and groups them into batches by BatchKey, in the order
// each key was first seen. It is not safe for concurrent use: each
// worker slot owns exactly one queue, per the registry in Server.
type GraphicsQueue struct {
	order []BatchKey
	stack map[BatchKey][]*batch
}

func newGraphicsQueue() *GraphicsQueue {
	return &GraphicsQueue{stack: make(map[BatchKey][]*batch)}
}

// Draw appends one instance's packed uniform bytes to key's current
// batch, opening a new batch first if the current one is full or this
// is the first draw for key this frame. instance is copied; the caller
// may reuse its buffer immediately after the call returns.
func (q *GraphicsQueue) Draw(key BatchKey, instance []byte) {
	batches := q.stack[key]
	var b *batch
	if len(batches) > 0 {
		b = batches[len(batches)-1]
	}
	if b == nil || b.full() {
		b = &batch{}
		if len(batches) == 0 {
			q.order = append(q.order, key)
		}
		q.stack[key] = append(batches, b)
	}
	b.data = append(b.data, instance...)
	b.count++
}

// reset discards every batch, preparing the queue for reuse next frame.
func (q *GraphicsQueue) reset() {
	q.order = q.order[:0]
	for k := range q.stack {
		delete(q.stack, k)
	}
}
