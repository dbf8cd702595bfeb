// Package combiner implements the three ways a container cell folds
// multiple values written to the same key, ported from combiner.h's
// buffer_combiner, associative_combiner, and their MUST_REDUCE variant.
package combiner

// Combiner accumulates values added under one key and exposes them to the
// reduce phase through Combined's iteration protocol.
type Combiner[V any] interface {
	// Add appends a value to this cell's accumulation.
	Add(v V)
	// Empty reports whether anything has ever been added.
	Empty() bool
	// Iterator returns a fresh view over everything added, which the
	// reduce worker drains via Combined.Next.
	Iterator() Combined[V]
	// Combine folds another same-key combiner's contents into this one,
	// ported from combiner.h's "combined::add(Impl const*)" overload used
	// to merge one lane's contribution into a container's cross-lane
	// accumulator during the reduce phase.
	Combine(other Combiner[V])
}

// Combined is the lazy, single-pass iteration protocol a reduce worker
// drains, ported from combiner.h's nested "combined" class.
type Combined[V any] interface {
	// Next advances to the next value, returning false when exhausted.
	Next(out *V) bool
	// Size returns the number of values remaining to iterate.
	Size() int
}

// Buffer stores every added value in an append-only slice with no
// folding at add time, the map-task-visible shape of buffer_combiner.
// It's the right choice when the reduce function needs to see every
// individual value (e.g. string-match's match list).
type Buffer[V any] struct {
	values []V
}

func NewBuffer[V any]() *Buffer[V] { return &Buffer[V]{} }

func (b *Buffer[V]) Add(v V)    { b.values = append(b.values, v) }
func (b *Buffer[V]) Empty() bool { return len(b.values) == 0 }

func (b *Buffer[V]) Iterator() Combined[V] {
	return &bufferIter[V]{values: b.values}
}

// Combine appends other's buffered values after this one's, the buffer
// variant's analog of "combined::add" pushing another lane's vector onto
// the merged item list.
func (b *Buffer[V]) Combine(other Combiner[V]) {
	o, ok := other.(*Buffer[V])
	if !ok {
		return
	}
	b.values = append(b.values, o.values...)
}

type bufferIter[V any] struct {
	values []V
	pos    int
}

func (it *bufferIter[V]) Next(out *V) bool {
	if it.pos >= len(it.values) {
		return false
	}
	*out = it.values[it.pos]
	it.pos++
	return true
}

func (it *bufferIter[V]) Size() int { return len(it.values) - it.pos }

// Associative folds every added value into a single accumulator using an
// associative binary operator F, ported from combiner.h's
// associative_combiner under #ifdef MUST_REDUCE: every Add immediately
// merges into the running total, which is only correct when F is
// associative (map-side folding and cross-lane Combine must agree with
// folding every value in one pass).
type Associative[V any] struct {
	f     func(a, b V) V
	init  func() V
	value V
	has   bool
}

// NewAssociative builds an associative combiner: every Add immediately
// merges into the running total.
func NewAssociative[V any](f func(a, b V) V, init func() V) *Associative[V] {
	return &Associative[V]{f: f, init: init}
}

func (c *Associative[V]) Add(v V) {
	if !c.has {
		c.value = v
		c.has = true
		return
	}
	c.value = c.f(c.value, v)
}

func (c *Associative[V]) Empty() bool { return !c.has }

// Combine folds other's accumulated value into this one if other holds
// anything, ported from associative_combiner's "combined::add(Impl
// const*)" overload (the non-empty guard matches the header's
// "if(!c->_empty)").
func (c *Associative[V]) Combine(other Combiner[V]) {
	o, ok := other.(*Associative[V])
	if !ok || !o.has {
		return
	}
	if !c.has {
		c.value = o.value
		c.has = true
		return
	}
	c.value = c.f(c.value, o.value)
}

func (c *Associative[V]) Iterator() Combined[V] {
	return &associativeIter[V]{combiner: c, done: !c.has}
}

type associativeIter[V any] struct {
	combiner *Associative[V]
	done     bool
}

func (it *associativeIter[V]) Next(out *V) bool {
	if it.done {
		return false
	}
	*out = it.combiner.value
	it.done = true
	return true
}

func (it *associativeIter[V]) Size() int {
	if it.done {
		return 0
	}
	return 1
}

// MustReduce buffers every added value unfolded, like Buffer, but its
// iterator folds them all with F on the first Next call and caches the
// single result — combiner.h's associative_combiner under its #else
// (non-MUST_REDUCE) branch. Unlike Associative, F runs neither on Add
// nor inside Combine, only once the reduce worker actually asks for a
// value; pick this over Associative when F is not associative and the
// cross-lane merge must not fold out of order.
type MustReduce[V any] struct {
	f      func(a, b V) V
	init   func() V
	values []V
}

// NewMustReduce builds a combiner that defers folding to iteration time.
func NewMustReduce[V any](f func(a, b V) V, init func() V) *MustReduce[V] {
	return &MustReduce[V]{f: f, init: init}
}

func (c *MustReduce[V]) Add(v V) { c.values = append(c.values, v) }

func (c *MustReduce[V]) Empty() bool { return len(c.values) == 0 }

// Combine appends other's unfolded values after this one's — folding
// still hasn't happened, matching combiner.h's non-MUST_REDUCE
// "combined::add(Impl const*)" overload, which concatenates vectors
// rather than reducing them.
func (c *MustReduce[V]) Combine(other Combiner[V]) {
	o, ok := other.(*MustReduce[V])
	if !ok {
		return
	}
	c.values = append(c.values, o.values...)
}

func (c *MustReduce[V]) Iterator() Combined[V] {
	return &mustReduceIter[V]{combiner: c, done: len(c.values) == 0}
}

type mustReduceIter[V any] struct {
	combiner *MustReduce[V]
	done     bool
}

func (it *mustReduceIter[V]) Next(out *V) bool {
	if it.done {
		return false
	}
	it.done = true

	values := it.combiner.values
	total := values[0]
	for _, v := range values[1:] {
		total = it.combiner.f(total, v)
	}
	*out = total
	return true
}

func (it *mustReduceIter[V]) Size() int {
	if it.done {
		return 0
	}
	return 1
}

// Sum builds a ready-made associative combiner over a numeric type,
// porting combiner.h's sum_combiner.
func Sum[V Number]() *Associative[V] {
	var zero V
	return NewAssociative(func(a, b V) V { return a + b }, func() V { return zero })
}

// Last keeps only the most recently added value, porting combiner.h's
// one_combiner (F returns the second argument; last write wins).
func Last[V any]() *Associative[V] {
	var zero V
	return NewAssociative(func(_, b V) V { return b }, func() V { return zero })
}

// Number constrains the built-in numeric types Sum can fold over.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}
