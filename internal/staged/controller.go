package staged

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// Source is the authoritative side of a staged view.
type Source[T any] interface {
	Fetch(ctx context.Context, filter string) ([]T, error)
	Save(ctx context.Context, row T) error
}

// Result is a table snapshot plus the rows whose edits a re-fetch dropped.
// The table must be treated as read-only. ReloadErr is set when a commit was
// saved but the follow-up fetch failed.
type Result[T any] struct {
	Table     *Table[T]
	Discarded []string
	ReloadErr error
}

// Controller runs staged-table steps as short read-modify-write cycles on
// the stored state. Backend calls never run inside a cycle.
type Controller[T any] struct {
	schema  Schema[T]
	store   StateStore
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
	group   singleflight.Group
}

// NewController constructs a Controller. busyTimeout bounds how long a
// commit marker blocks a row when its request never finished.
func NewController[T any](schema Schema[T], store StateStore, busyTimeout time.Duration, logger *slog.Logger) *Controller[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller[T]{
		schema:  schema,
		store:   store,
		timeout: busyTimeout,
		logger:  logger,
		now:     time.Now,
	}
}

// Schema returns the row schema.
func (c *Controller[T]) Schema() Schema[T] {
	return c.schema
}

// BusyTimeout returns the staleness bound of busy markers.
func (c *Controller[T]) BusyTimeout() time.Duration {
	return c.timeout
}

// Now returns the controller clock.
func (c *Controller[T]) Now() time.Time {
	return c.now()
}

// View returns the stored table without fetching.
func (c *Controller[T]) View(ctx context.Context, key string) (*Table[T], error) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return c.decode(raw), nil
}

// Ensure fetches when the view has never loaded or the filter changed.
func (c *Controller[T]) Ensure(ctx context.Context, key, filter string, src Source[T]) (Result[T], error) {
	table, err := c.View(ctx, key)
	if err != nil {
		return Result[T]{}, err
	}
	if table.Loaded && table.Filter == filter {
		return Result[T]{Table: table}, nil
	}
	return c.Refresh(ctx, key, filter, src)
}

// Refresh re-fetches the authoritative rows. Identical concurrent refreshes
// share one backend call.
func (c *Controller[T]) Refresh(ctx context.Context, key, filter string, src Source[T]) (Result[T], error) {
	ch := c.group.DoChan(key+"\x00"+filter, func() (interface{}, error) {
		return c.refresh(ctx, key, filter, src)
	})
	select {
	case <-ctx.Done():
		return Result[T]{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Result[T]{}, res.Err
		}
		return res.Val.(Result[T]), nil
	}
}

func (c *Controller[T]) refresh(ctx context.Context, key, filter string, src Source[T]) (Result[T], error) {
	var gen uint64
	if _, err := c.update(ctx, key, func(t *Table[T]) error {
		gen = t.BeginFetch(filter)
		return nil
	}); err != nil {
		return Result[T]{}, err
	}

	items, err := src.Fetch(ctx, filter)
	if err != nil {
		return Result[T]{}, err
	}

	var (
		discarded []string
		applied   bool
	)
	table, err := c.update(ctx, key, func(t *Table[T]) error {
		discarded, applied = t.Load(c.schema, gen, items)
		return nil
	})
	if err != nil {
		return Result[T]{}, err
	}
	if !applied {
		c.logger.Debug("drop stale fetch", slog.String("key", key), slog.Uint64("generation", gen))
	}
	if len(discarded) > 0 {
		c.logger.Info("re-fetch discarded pending edits", slog.String("key", key), slog.Any("rows", discarded))
	}
	return Result[T]{Table: table, Discarded: discarded}, nil
}

// SetLocalFields applies submitted values to one row. Nothing is stored
// unless every value parses.
func (c *Controller[T]) SetLocalFields(ctx context.Context, key, id string, values map[string]string) (*Table[T], error) {
	now := c.now()
	return c.update(ctx, key, func(t *Table[T]) error {
		for field, raw := range values {
			if err := t.SetLocalField(c.schema, id, field, raw, now, c.timeout); err != nil {
				return err
			}
		}
		return nil
	})
}

// RequestCommit puts a changed row up for confirmation.
func (c *Controller[T]) RequestCommit(ctx context.Context, key, id string) (*Table[T], error) {
	now := c.now()
	return c.update(ctx, key, func(t *Table[T]) error {
		return t.RequestCommit(c.schema, id, now, c.timeout)
	})
}

// CancelCommit withdraws a confirmation request.
func (c *Controller[T]) CancelCommit(ctx context.Context, key, id string) (*Table[T], error) {
	return c.update(ctx, key, func(t *Table[T]) error {
		return t.CancelCommit(id)
	})
}

// Discard resets one row to its original values.
func (c *Controller[T]) Discard(ctx context.Context, key, id string) (*Table[T], error) {
	now := c.now()
	return c.update(ctx, key, func(t *Table[T]) error {
		return t.Discard(c.schema, id, now, c.timeout)
	})
}

// Commit sends a confirmed row to the backend. On success the whole set is
// re-fetched. On failure the local edits stay and confirmation is left.
// A failed re-fetch after a successful save is not a commit failure: the
// saved table comes back with ReloadErr and is fetched again on next Ensure.
func (c *Controller[T]) Commit(ctx context.Context, key, id string, src Source[T]) (Result[T], error) {
	var local T
	table, err := c.update(ctx, key, func(t *Table[T]) error {
		var err error
		local, err = t.BeginCommit(c.schema, id, c.now(), c.timeout)
		return err
	})
	if err != nil {
		return Result[T]{}, err
	}

	settled := false
	defer func() {
		if settled {
			return
		}
		if _, err := c.update(context.WithoutCancel(ctx), key, func(t *Table[T]) error {
			t.CommitFailed(id)
			return nil
		}); err != nil {
			c.logger.Warn("clear busy row", slog.String("key", key), slog.Any("error", err))
		}
	}()

	if err := src.Save(ctx, local); err != nil {
		return Result[T]{}, err
	}

	saved, err := c.update(ctx, key, func(t *Table[T]) error {
		t.CommitSucceeded(c.schema, id)
		return nil
	})
	if err != nil {
		return Result[T]{}, err
	}
	settled = true

	res, err := c.Refresh(ctx, key, table.Filter, src)
	if err == nil {
		return res, nil
	}
	c.logger.Warn("reload after commit", slog.String("key", key), slog.Any("error", err))
	if marked, uerr := c.update(context.WithoutCancel(ctx), key, func(t *Table[T]) error {
		t.Loaded = false
		return nil
	}); uerr == nil {
		saved = marked
	}
	return Result[T]{Table: saved, ReloadErr: err}, nil
}

func (c *Controller[T]) update(ctx context.Context, key string, fn func(*Table[T]) error) (*Table[T], error) {
	var out *Table[T]
	err := c.store.Update(ctx, key, func(current []byte) ([]byte, error) {
		t := c.decode(current)
		if err := fn(t); err != nil {
			return nil, err
		}
		out = t
		return json.Marshal(t)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Controller[T]) decode(raw []byte) *Table[T] {
	t := &Table[T]{}
	if len(raw) == 0 {
		return t
	}
	if err := json.Unmarshal(raw, t); err != nil {
		c.logger.Debug("discard corrupt view state", slog.Any("error", err))
		return &Table[T]{}
	}
	return t
}
