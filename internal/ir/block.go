package ir

// Block is an ordered, doubly-linked sequence of Operation values: append-only during
// parsing, and never reordered during renaming or allocation (only the fields within
// each Operation are mutated).
type Block struct {
	head, tail *Operation
	count      int
}

// NewBlock returns an empty Block.
func NewBlock() *Block { return &Block{} }

// Append adds a new Operation for line/op to the end of the block and returns it so
// the parser can fill in its source-register operands.
func (b *Block) Append(line int, op Opcode) *Operation {
	o := newOperation(line, op)
	if b.head == nil {
		b.head = o
		b.tail = o
	} else {
		o.prev = b.tail
		b.tail.next = o
		b.tail = o
	}
	b.count++
	return o
}

// Len returns the number of operations in the block.
func (b *Block) Len() int { return b.count }

// Head returns the first operation, or nil if the block is empty.
func (b *Block) Head() *Operation { return b.head }

// Tail returns the last operation, or nil if the block is empty.
func (b *Block) Tail() *Operation { return b.tail }

// Forward calls fn for every operation from head to tail, in source order.
func (b *Block) Forward(fn func(*Operation)) {
	for o := b.head; o != nil; o = o.next {
		fn(o)
	}
}

// Backward calls fn for every operation from tail to head, in reverse source order.
// The backward next-use pass (internal/renamer) relies on this visiting the block's
// own prev links rather than re-deriving order from indices.
func (b *Block) Backward(fn func(*Operation)) {
	for o := b.tail; o != nil; o = o.prev {
		fn(o)
	}
}

// Slice materializes the block as a slice in source order. Convenience for tests and
// for callers that want index-based access; allocation and renaming themselves use
// Forward/Backward and never need this.
func (b *Block) Slice() []*Operation {
	out := make([]*Operation, 0, b.count)
	b.Forward(func(o *Operation) { out = append(out, o) })
	return out
}
