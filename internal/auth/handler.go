package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/galaxy-staffing/galaxy-web/internal/access"
	"github.com/galaxy-staffing/galaxy-web/internal/galaxy"
	"github.com/galaxy-staffing/galaxy-web/internal/shared"
	"github.com/galaxy-staffing/galaxy-web/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	store       *Store
	templates   *view.Engine
	csrfManager *shared.CSRFManager
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, store *Store, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:      logger,
		service:     service,
		store:       store,
		templates:   templates,
		csrfManager: csrf,
		validator:   validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.root)
	r.Get(access.LoginPath, h.showLogin)
	r.Post(access.LoginPath, h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginForm struct {
	Phone    string `validate:"required,numeric,min=10,max=15"`
	Password string `validate:"required"`
}

type loginPageData struct {
	Form   loginForm
	Errors map[string]string
}

var loginFieldMessages = map[string]string{
	"Phone":    "Enter a valid phone number (digits only).",
	"Password": "Password is required.",
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	current := FromContext(r.Context())
	if !current.Authenticated() {
		http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, current.Landing(), http.StatusSeeOther)
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if current := FromContext(r.Context()); current.Authenticated() {
		http.Redirect(w, r, current.Landing(), http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, loginPageData{}, http.StatusOK)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Phone:    strings.TrimSpace(r.PostFormValue("phone")),
		Password: r.PostFormValue("password"),
	}
	errs := make(map[string]string)
	if err := h.validator.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				errs[fieldErr.Field()] = loginFieldMessages[fieldErr.Field()]
			}
		}
	}
	if len(errs) > 0 {
		h.renderLogin(w, r, loginPageData{Form: loginForm{Phone: form.Phone}, Errors: errs}, http.StatusBadRequest)
		return
	}

	user, creds, err := h.service.Authenticate(r.Context(), form.Phone, form.Password)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			errs["general"] = "Invalid phone number or password."
		default:
			var apiErr *galaxy.APIError
			if !errors.As(err, &apiErr) {
				status = http.StatusBadGateway
				h.logger.Error("login backend call", slog.Any("error", err))
			}
			errs["general"] = galaxy.Message(err)
		}
		h.renderLogin(w, r, loginPageData{Form: loginForm{Phone: form.Phone}, Errors: errs}, status)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	current, err := h.store.Login(sess, user, creds)
	if err != nil {
		h.logger.Warn("reject identity", slog.Any("error", err))
		errs["general"] = "This account cannot sign in here. Contact an administrator."
		h.renderLogin(w, r, loginPageData{Form: loginForm{Phone: form.Phone}, Errors: errs}, http.StatusForbidden)
		return
	}
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back, " + current.User.Name})
	http.Redirect(w, r, current.Landing(), http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.store.Logout(r.Context(), shared.SessionFromContext(r.Context()), FromContext(r.Context()))
	http.Redirect(w, r, access.LoginPath, http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, data loginPageData, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	var flashes []shared.FlashMessage
	if sess != nil {
		flashes = sess.PopFlashes()
	}
	viewData := view.TemplateData{
		Title:       "Sign in",
		CSRFToken:   csrfToken,
		Flashes:     flashes,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.RenderStatus(w, status, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
	}
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}
