package page

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/galaxy-staffing/galaxy-web/internal/staged"
)

// Row actions posted by staged tables.
const (
	ActionUpdate  = "update"
	ActionCommit  = "commit"
	ActionConfirm = "confirm"
	ActionCancel  = "cancel"
	ActionDiscard = "discard"
)

// StagedAction applies one posted row action and redirects back. update and
// commit first stage the submitted field values, repeated values joined by
// commas. commit then asks for confirmation and confirm sends the row.
func StagedAction[T any](p *Responder, w http.ResponseWriter, r *http.Request, ctrl *staged.Controller[T], key, id, action string, src staged.Source[T], back string) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	var err error
	switch action {
	case ActionUpdate, ActionCommit:
		values := make(map[string]string)
		for name := range ctrl.Schema().Fields {
			if r.PostForm.Has(name) {
				values[name] = strings.Join(r.PostForm[name], ",")
			}
		}
		if len(values) > 0 {
			_, err = ctrl.SetLocalFields(ctx, key, id, values)
		}
		if err == nil && action == ActionCommit {
			_, err = ctrl.RequestCommit(ctx, key, id)
		}
	case ActionCancel:
		_, err = ctrl.CancelCommit(ctx, key, id)
	case ActionDiscard:
		_, err = ctrl.Discard(ctx, key, id)
	case ActionConfirm:
		var res staged.Result[T]
		res, err = ctrl.Commit(ctx, key, id, src)
		if err == nil {
			if res.ReloadErr != nil {
				if p.expireIfInvalid(w, r, res.ReloadErr) {
					return
				}
				p.Redirect(w, r, back, FlashWarning, "Changes saved, but the list could not be reloaded.")
				return
			}
			p.WarnDiscarded(r, res.Discarded)
			p.Redirect(w, r, back, FlashSuccess, "Changes saved.")
			return
		}
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		p.stagedFailure(w, r, err, back)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// WarnDiscarded tells the user a re-fetch replaced rows they had edited.
func (p *Responder) WarnDiscarded(r *http.Request, ids []string) {
	switch n := len(ids); {
	case n == 1:
		p.Flash(r, FlashWarning, "Reloading the list discarded unsaved changes on 1 row.")
	case n > 1:
		p.Flash(r, FlashWarning, fmt.Sprintf("Reloading the list discarded unsaved changes on %d rows.", n))
	}
}

func (p *Responder) stagedFailure(w http.ResponseWriter, r *http.Request, err error, back string) {
	var fieldErr *staged.FieldError
	switch {
	case errors.As(err, &fieldErr):
		p.Redirect(w, r, back, FlashError, fmt.Sprintf("Invalid value for %s.", fieldLabel(fieldErr.Field)))
	case errors.Is(err, staged.ErrBusy):
		p.Redirect(w, r, back, FlashWarning, "A save for this row is already in progress.")
	case errors.Is(err, staged.ErrNoChanges):
		p.Redirect(w, r, back, FlashWarning, "There are no changes to save on this row.")
	case errors.Is(err, staged.ErrNotConfirming):
		p.Redirect(w, r, back, FlashWarning, "Review the change and press Save again to confirm.")
	case errors.Is(err, staged.ErrRowNotFound):
		p.Redirect(w, r, back, FlashWarning, "That row is no longer in the list.")
	case errors.Is(err, staged.ErrUnknownField), errors.Is(err, staged.ErrConflict):
		p.logger.Warn("staged action rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
		p.Redirect(w, r, back, FlashError, "That change could not be applied. Please try again.")
	default:
		p.Fail(w, r, err, back)
	}
}

var fieldLabels = map[string]string{
	"status":       "status",
	"ta_amount":    "TA",
	"bonus_amount": "bonus",
	"fine_amount":  "fine",
	"role":         "role",
	"permissions":  "permissions",
}

func fieldLabel(name string) string {
	if label, ok := fieldLabels[name]; ok {
		return label
	}
	return name
}
