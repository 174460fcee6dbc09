// Package page renders resource views inside the role shell and maps
// backend errors onto redirects and flashes.
package page

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/auth"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
	"github.com/galaxy-staffing/galaxy-web/internal/shell"
	"github.com/galaxy-staffing/galaxy-web/internal/view"
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
)

// Responder is shared by every resource handler.
type Responder struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	store     *auth.Store
	validate  *validator.Validate
}

// NewResponder constructs a Responder.
func NewResponder(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, store *auth.Store) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{
		logger:    logger,
		templates: templates,
		csrf:      csrf,
		store:     store,
		validate:  validator.New(),
	}
}

// Logger returns the responder logger.
func (p *Responder) Logger() *slog.Logger {
	return p.logger
}

// Session returns the signed-in session of the request.
func (p *Responder) Session(r *http.Request) *auth.Session {
	return auth.FromContext(r.Context())
}

// Credentials returns the backend cookie jar of the request.
func (p *Responder) Credentials(r *http.Request) *galaxy.Credentials {
	return auth.FromContext(r.Context()).Credentials()
}

// Render writes a page with the shell, CSRF token and pending flash.
func (p *Responder) Render(w http.ResponseWriter, r *http.Request, name, title string, data any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := p.csrf.EnsureToken(r.Context(), sess)
	var flashes []shared.FlashMessage
	if sess != nil {
		flashes = sess.PopFlashes()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flashes:     flashes,
		CurrentPath: r.URL.Path,
		Shell:       shell.Build(r),
		Data:        data,
	}
	if err := p.templates.RenderStatus(w, status, name, viewData); err != nil {
		p.logger.Error("render template", slog.String("template", name), slog.Any("error", err))
	}
}

// Flash queues a message for the next rendered page.
func (p *Responder) Flash(r *http.Request, kind, msg string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && msg != "" {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: msg})
	}
}

// Redirect queues a flash and answers 303.
func (p *Responder) Redirect(w http.ResponseWriter, r *http.Request, location, kind, msg string) {
	p.Flash(r, kind, msg)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// Fail handles an error from a mutation. An invalidated backend session
// ends the local one; anything else flashes and goes back.
func (p *Responder) Fail(w http.ResponseWriter, r *http.Request, err error, back string) {
	if p.expireIfInvalid(w, r, err) {
		return
	}
	p.logFailure(r, err)
	p.Redirect(w, r, back, FlashError, galaxy.Message(err))
}

// FailPage handles an error while loading a page. The page cannot redirect
// to itself, so an error page is rendered instead.
func (p *Responder) FailPage(w http.ResponseWriter, r *http.Request, err error) {
	if p.expireIfInvalid(w, r, err) {
		return
	}
	p.logFailure(r, err)
	status := http.StatusBadGateway
	switch {
	case galaxy.IsForbidden(err):
		status = http.StatusForbidden
	case galaxy.IsNotFound(err):
		status = http.StatusNotFound
	}
	p.Render(w, r, "pages/error.html", "Error", ErrorPage{Status: status, Message: galaxy.Message(err)}, status)
}

// ErrorPage is the view model of pages/error.html.
type ErrorPage struct {
	Status  int
	Message string
}

func (p *Responder) expireIfInvalid(w http.ResponseWriter, r *http.Request, err error) bool {
	if !galaxy.IsSessionInvalid(err) {
		return false
	}
	p.logger.Info("backend session invalid, signing out", slog.String("path", r.URL.Path))
	if p.store != nil {
		p.store.Expire(r.Context(), shared.SessionFromContext(r.Context()))
	}
	http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
	return true
}

func (p *Responder) logFailure(r *http.Request, err error) {
	var apiErr *galaxy.APIError
	if errors.As(err, &apiErr) {
		p.logger.Warn("backend rejected request", slog.String("path", r.URL.Path), slog.Int("status", apiErr.Status), slog.String("message", apiErr.Message))
		return
	}
	p.logger.Error("backend request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
}

// Validate runs struct validation and maps failures to per-field messages.
// messages is keyed by struct field name; unlisted fields get a generic text.
func (p *Responder) Validate(form any, messages map[string]string) map[string]string {
	err := p.validate.Struct(form)
	if err == nil {
		return nil
	}
	errs := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["general"] = err.Error()
		return errs
	}
	for _, fieldErr := range verrs {
		msg, ok := messages[fieldErr.Field()]
		if !ok {
			msg = strings.ToLower(fieldErr.Field()) + " is invalid"
		}
		errs[fieldErr.Field()] = msg
	}
	return errs
}
