// Package memory is a map-backed persistence implementation used by tests
// and the default development wiring. Ordering and filtering mirror the
// hosted table API closely enough for the core's contract tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	internal_errors "github.com/threadview-dev/threadview/internal/errors"
	"github.com/threadview-dev/threadview/internal/persistence"
)

type fieldFn[T any] func(rec T, field string) any
type patchFn[T any] func(rec T, patch persistence.Patch) T
type idFn[T any, ID comparable] func(rec T) ID
type assignFn[T any] func(rec T) T

// Collection stores records in insertion order so FetchMany without an
// explicit Order is deterministic.
type Collection[T any, ID comparable] struct {
	mu     sync.RWMutex
	recs   []T
	id     idFn[T, ID]
	field  fieldFn[T]
	apply  patchFn[T]
	assign assignFn[T]

	fail map[string]error
}

func newCollection[T any, ID comparable](id idFn[T, ID], field fieldFn[T], apply patchFn[T], assign assignFn[T]) *Collection[T, ID] {
	return &Collection[T, ID]{
		id:     id,
		field:  field,
		apply:  apply,
		assign: assign,
		fail:   make(map[string]error),
	}
}

// SetFail makes every subsequent op of the given name ("fetch_one",
// "fetch_many", "insert", "update", "delete", "delete_where", "upsert")
// return err until cleared with a nil err. Test hook.
func (c *Collection[T, ID]) SetFail(op string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.fail, op)
		return
	}
	c.fail[op] = err
}

func (c *Collection[T, ID]) failure(op string) error {
	return c.fail[op]
}

func (c *Collection[T, ID]) FetchOne(ctx context.Context, id ID) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var zero T
	if err := c.failure("fetch_one"); err != nil {
		return zero, err
	}
	for _, rec := range c.recs {
		if c.id(rec) == id {
			return rec, nil
		}
	}
	return zero, internal_errors.NotFound
}

func (c *Collection[T, ID]) FetchMany(ctx context.Context, filter persistence.Filter, order persistence.Order) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.failure("fetch_many"); err != nil {
		return nil, err
	}
	var out []T
	for _, rec := range c.recs {
		if c.matches(rec, filter) {
			out = append(out, rec)
		}
	}
	if order.Field != "" {
		sort.SliceStable(out, func(i, j int) bool {
			if order.Desc {
				return lessValue(c.field(out[j], order.Field), c.field(out[i], order.Field))
			}
			return lessValue(c.field(out[i], order.Field), c.field(out[j], order.Field))
		})
	}
	return out, nil
}

func (c *Collection[T, ID]) Insert(ctx context.Context, rec T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if err := c.failure("insert"); err != nil {
		return zero, err
	}
	rec = c.assign(rec)
	c.recs = append(c.recs, rec)
	return rec, nil
}

func (c *Collection[T, ID]) Update(ctx context.Context, id ID, patch persistence.Patch) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if err := c.failure("update"); err != nil {
		return zero, err
	}
	for i, rec := range c.recs {
		if c.id(rec) == id {
			c.recs[i] = c.apply(rec, patch)
			return c.recs[i], nil
		}
	}
	return zero, internal_errors.NotFound
}

func (c *Collection[T, ID]) Delete(ctx context.Context, id ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("delete"); err != nil {
		return err
	}
	for i, rec := range c.recs {
		if c.id(rec) == id {
			c.recs = append(c.recs[:i], c.recs[i+1:]...)
			return nil
		}
	}
	return internal_errors.NotFound
}

func (c *Collection[T, ID]) DeleteWhere(ctx context.Context, filter persistence.Filter) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.failure("delete_where"); err != nil {
		return err
	}
	kept := c.recs[:0]
	for _, rec := range c.recs {
		if !c.matches(rec, filter) {
			kept = append(kept, rec)
		}
	}
	c.recs = kept
	return nil
}

func (c *Collection[T, ID]) Upsert(ctx context.Context, key persistence.Filter, rec T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	if err := c.failure("upsert"); err != nil {
		return zero, err
	}
	for i, existing := range c.recs {
		if c.matches(existing, key) {
			// keep the existing identity, replace the payload
			patched := c.apply(rec, persistence.Patch{"id": c.field(existing, "id")})
			c.recs[i] = patched
			return patched, nil
		}
	}
	rec = c.assign(rec)
	c.recs = append(c.recs, rec)
	return rec, nil
}

func (c *Collection[T, ID]) matches(rec T, filter persistence.Filter) bool {
	for field, want := range filter {
		if !equalValue(c.field(rec, field), want) {
			return false
		}
	}
	return true
}

func equalValue(got, want any) bool {
	if ids, ok := want.([]int64); ok {
		g, ok := normalize(got).(int64)
		if !ok {
			return false
		}
		for _, id := range ids {
			if id == g {
				return true
			}
		}
		return false
	}
	if g, ok := got.(time.Time); ok {
		if w, ok := want.(time.Time); ok {
			return g.Equal(w)
		}
		return false
	}
	return normalize(got) == normalize(want)
}

func lessValue(a, b any) bool {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Before(bv)
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	default:
		ai, aok := normalize(a).(int64)
		bi, bok := normalize(b).(int64)
		return aok && bok && ai < bi
	}
}

// normalize collapses integer widths so Filter literals written as int
// match stored int64 ids.
func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case *int64:
		if n == nil {
			return nil
		}
		return *n
	default:
		return v
	}
}
