// Package staged implements editable tables whose rows are changed locally
// and sent to the backend only after an explicit confirmation.
package staged

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"
)

var (
	// ErrRowNotFound is returned for an id that is not in the loaded set.
	ErrRowNotFound = errors.New("staged: row not found")
	// ErrUnknownField is returned for a field the schema does not track.
	ErrUnknownField = errors.New("staged: unknown field")
	// ErrNotConfirming is returned when confirming a row that was never put up for commit.
	ErrNotConfirming = errors.New("staged: row is not awaiting confirmation")
	// ErrNoChanges is returned when requesting a commit of an unchanged row.
	ErrNoChanges = errors.New("staged: row has no pending changes")
	// ErrBusy is returned while a commit for the row is in flight.
	ErrBusy = errors.New("staged: row is busy")
)

// Field is one tracked column. Get feeds the diff, Set parses a submitted value into the row.
type Field[T any] struct {
	Get func(T) any
	Set func(*T, string) error
}

// Schema describes how rows of T are keyed, copied and edited.
type Schema[T any] struct {
	Key    func(T) string
	Clone  func(T) T
	Fields map[string]Field[T]
}

func (s Schema[T]) clone(v T) T {
	if s.Clone != nil {
		return s.Clone(v)
	}
	var out T
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("staged: clone: %v", err))
	}
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("staged: clone: %v", err))
	}
	return out
}

// FieldError reports a value that could not be parsed into a field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("staged: field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Row pairs the last confirmed value with the in-progress copy.
type Row[T any] struct {
	ID         string    `json:"id"`
	Original   T         `json:"original"`
	Local      T         `json:"local"`
	Confirming bool      `json:"confirming,omitempty"`
	Busy       bool      `json:"busy,omitempty"`
	BusySince  time.Time `json:"busy_since,omitempty"`
}

// Table is the staged state of one view.
type Table[T any] struct {
	Generation uint64   `json:"generation"`
	Filter     string   `json:"filter"`
	Requested  string   `json:"requested"`
	Loaded     bool     `json:"loaded"`
	Rows       []Row[T] `json:"rows"`
}

// BeginFetch issues a new generation. Only a Load carrying it will be applied.
// Filter keeps describing the loaded rows until that Load happens.
func (t *Table[T]) BeginFetch(filter string) uint64 {
	t.Generation++
	t.Requested = filter
	return t.Generation
}

// Load replaces the whole row set when gen is the latest generation. It
// returns the ids of rows whose pending edits were dropped by the replace.
func (t *Table[T]) Load(s Schema[T], gen uint64, items []T) (discarded []string, applied bool) {
	if gen != t.Generation {
		return nil, false
	}
	for i := range t.Rows {
		if s.pending(t.Rows[i]) {
			discarded = append(discarded, t.Rows[i].ID)
		}
	}
	rows := make([]Row[T], 0, len(items))
	for _, item := range items {
		rows = append(rows, Row[T]{
			ID:       s.Key(item),
			Original: s.clone(item),
			Local:    s.clone(item),
		})
	}
	t.Rows = rows
	t.Filter = t.Requested
	t.Loaded = true
	return discarded, true
}

// Row returns the row with id.
func (t *Table[T]) Row(id string) (*Row[T], error) {
	for i := range t.Rows {
		if t.Rows[i].ID == id {
			return &t.Rows[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRowNotFound, id)
}

// SetLocalField parses raw into one field of the row's local copy. Editing a
// row that awaits confirmation withdraws the confirmation.
func (t *Table[T]) SetLocalField(s Schema[T], id, field, raw string, now time.Time, timeout time.Duration) error {
	row, err := t.Row(id)
	if err != nil {
		return err
	}
	if row.busy(now, timeout) {
		return ErrBusy
	}
	f, ok := s.Fields[field]
	if !ok || f.Set == nil {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if err := f.Set(&row.Local, raw); err != nil {
		return &FieldError{Field: field, Err: err}
	}
	row.Confirming = false
	return nil
}

// HasPendingChanges compares tracked fields of the local and original copies.
func (t *Table[T]) HasPendingChanges(s Schema[T], id string) bool {
	row, err := t.Row(id)
	if err != nil {
		return false
	}
	return s.pending(*row)
}

// Pending returns the ids of all rows with pending changes.
func (t *Table[T]) Pending(s Schema[T]) []string {
	var ids []string
	for _, row := range t.Rows {
		if s.pending(row) {
			ids = append(ids, row.ID)
		}
	}
	return ids
}

func (s Schema[T]) pending(row Row[T]) bool {
	for _, f := range s.Fields {
		if f.Get == nil {
			continue
		}
		if !reflect.DeepEqual(f.Get(row.Local), f.Get(row.Original)) {
			return true
		}
	}
	return false
}

// RequestCommit moves a changed row into the awaiting-confirmation state.
func (t *Table[T]) RequestCommit(s Schema[T], id string, now time.Time, timeout time.Duration) error {
	row, err := t.Row(id)
	if err != nil {
		return err
	}
	if row.busy(now, timeout) {
		return ErrBusy
	}
	if !s.pending(*row) {
		return ErrNoChanges
	}
	row.Confirming = true
	return nil
}

// CancelCommit leaves the awaiting-confirmation state without touching edits.
func (t *Table[T]) CancelCommit(id string) error {
	row, err := t.Row(id)
	if err != nil {
		return err
	}
	row.Confirming = false
	return nil
}

// BeginCommit marks a confirming row busy and returns a copy of its local values.
func (t *Table[T]) BeginCommit(s Schema[T], id string, now time.Time, timeout time.Duration) (T, error) {
	var zero T
	row, err := t.Row(id)
	if err != nil {
		return zero, err
	}
	if row.busy(now, timeout) {
		return zero, ErrBusy
	}
	if !row.Confirming {
		return zero, ErrNotConfirming
	}
	row.Busy = true
	row.BusySince = now
	return s.clone(row.Local), nil
}

// CommitFailed clears busy and confirmation. Local edits are kept for a retry.
func (t *Table[T]) CommitFailed(id string) {
	if row, err := t.Row(id); err == nil {
		row.Busy = false
		row.BusySince = time.Time{}
		row.Confirming = false
	}
}

// CommitSucceeded settles the row until the follow-up fetch replaces it.
func (t *Table[T]) CommitSucceeded(s Schema[T], id string) {
	if row, err := t.Row(id); err == nil {
		row.Busy = false
		row.BusySince = time.Time{}
		row.Confirming = false
		row.Original = s.clone(row.Local)
	}
}

// Discard resets the local copy of one row to its original.
func (t *Table[T]) Discard(s Schema[T], id string, now time.Time, timeout time.Duration) error {
	row, err := t.Row(id)
	if err != nil {
		return err
	}
	if row.busy(now, timeout) {
		return ErrBusy
	}
	row.Local = s.clone(row.Original)
	row.Confirming = false
	return nil
}

// IsBusy reports whether a commit is in flight and not yet stale.
func (r Row[T]) IsBusy(now time.Time, timeout time.Duration) bool {
	return r.busy(now, timeout)
}

func (r Row[T]) busy(now time.Time, timeout time.Duration) bool {
	if !r.Busy {
		return false
	}
	if timeout <= 0 {
		return true
	}
	return now.Sub(r.BusySince) < timeout
}
