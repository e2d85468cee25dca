package items

import "slices"

// List is an observable, mutable sequence. Every mutation notifies the
// subscribers synchronously, in subscription order, after the items have
// been updated.
type List[T any] struct {
	items     []T
	observers []*observer
	nextID    int
}

type observer struct {
	id int
	fn func(Change)
}

// NewList returns a list holding a copy of values.
func NewList[T any](values ...T) *List[T] {
	return &List[T]{items: slices.Clone(values)}
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	return len(l.items)
}

// At returns the item at index as an opaque value.
func (l *List[T]) At(index int) any {
	return l.items[index]
}

// Get returns the item at index.
func (l *List[T]) Get(index int) T {
	return l.items[index]
}

// Items returns a copy of the current items.
func (l *List[T]) Items() []T {
	return slices.Clone(l.items)
}

// Subscribe registers fn for change notifications.
func (l *List[T]) Subscribe(fn func(Change)) func() {
	l.nextID++
	id := l.nextID
	l.observers = append(l.observers, &observer{id: id, fn: fn})
	return func() {
		l.observers = slices.DeleteFunc(l.observers, func(o *observer) bool {
			return o.id == id
		})
	}
}

// Append adds values at the end.
func (l *List[T]) Append(values ...T) {
	l.Insert(len(l.items), values...)
}

// Insert adds values at index.
func (l *List[T]) Insert(index int, values ...T) {
	if len(values) == 0 {
		return
	}
	l.items = slices.Insert(l.items, index, values...)
	l.notify(Added(index, len(values)))
}

// RemoveAt deletes count items starting at index.
func (l *List[T]) RemoveAt(index, count int) {
	if count <= 0 {
		return
	}
	l.items = slices.Delete(l.items, index, index+count)
	l.notify(Removed(index, count))
}

// Set replaces the item at index.
func (l *List[T]) Set(index int, value T) {
	l.items[index] = value
	l.notify(Replaced(index, 1, 1))
}

// Replace swaps count items at index for values.
func (l *List[T]) Replace(index, count int, values ...T) {
	l.items = slices.Replace(l.items, index, index+count, values...)
	l.notify(Replaced(index, count, len(values)))
}

// Move relocates the item at from so that it ends up at index to.
func (l *List[T]) Move(from, to int) {
	if from == to {
		return
	}
	item := l.items[from]
	l.items = slices.Delete(l.items, from, from+1)
	l.items = slices.Insert(l.items, to, item)
	l.notify(Moved(from, to, 1))
}

// Reset replaces the whole content.
func (l *List[T]) Reset(values ...T) {
	l.items = slices.Clone(values)
	l.notify(ResetChange())
}

func (l *List[T]) notify(change Change) {
	// Observers may unsubscribe while being notified.
	for _, o := range slices.Clone(l.observers) {
		o.fn(change)
	}
}
