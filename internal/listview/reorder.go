package listview

import (
	"errors"
	"sort"

	"github.com/google/uuid"
)

// ErrItemNotFound is returned when the source or target id is not in the
// collection being reordered.
var ErrItemNotFound = errors.New("item not found in collection")

// OrderPatch assigns a new custom order value to one item. A reorder emits
// patches only for the items whose position actually changed.
type OrderPatch struct {
	ID          uuid.UUID `json:"id"`
	CustomOrder int       `json:"custom_order"`
}

// MoveBefore removes the source item from its position and re-inserts it
// immediately before the target, returning the order patches to persist.
// Reordering is only meaningful in custom sort mode; callers gate on
// State.SortBy == models.SortCustom.
//
// items must be the complete filtered set in its current custom order, not
// the visible page slice: reordering the slice alone could never move an
// item past a page boundary.
//
// Only the span between the two positions is renumbered, and it reuses the
// order values it already occupied, so the rest of the collection keeps its
// numbering and untouched ties keep their relative order.
func MoveBefore[T any](items []T, id func(T) uuid.UUID, order func(T) int, srcID, dstID uuid.UUID) ([]OrderPatch, error) {
	if srcID == dstID {
		return nil, nil
	}

	srcIdx, dstIdx := -1, -1
	for i, item := range items {
		switch id(item) {
		case srcID:
			srcIdx = i
		case dstID:
			dstIdx = i
		}
	}
	if srcIdx < 0 || dstIdx < 0 {
		return nil, ErrItemNotFound
	}

	lo, hi := srcIdx, dstIdx
	if lo > hi {
		lo, hi = hi, lo
	}

	// Order values occupied by the affected span, reused after the splice.
	orders := make([]int, 0, hi-lo+1)
	for _, item := range items[lo : hi+1] {
		orders = append(orders, order(item))
	}
	sort.Ints(orders)

	// Splice within the span: drop the source, insert it back immediately
	// before the target.
	span := make([]T, 0, hi-lo+1)
	for _, item := range items[lo : hi+1] {
		if id(item) == srcID {
			continue
		}
		if id(item) == dstID {
			span = append(span, items[srcIdx])
		}
		span = append(span, item)
	}

	var patches []OrderPatch
	for i, item := range span {
		if order(item) != orders[i] {
			patches = append(patches, OrderPatch{ID: id(item), CustomOrder: orders[i]})
		}
	}

	return patches, nil
}
