package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"authgate/cmd/internal/auth/flows"
	"authgate/cmd/internal/auth/session"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler wires HTTP auth endpoints to the session and flows services.
type Handler struct {
	log *slog.Logger
	cfg Config

	sessions *session.Service
	flows    *flows.Service

	// pool is used for audit logging only; nil disables audit.
	pool *pgxpool.Pool
}

// NewHandler constructs an auth Handler. flows may be nil when the link
// endpoints are not deployed; pool may be nil to disable audit logging.
func NewHandler(log *slog.Logger, cfg Config, sessions *session.Service, flowsSvc *flows.Service, pool *pgxpool.Pool) (*Handler, error) {
	if sessions == nil {
		return nil, errors.New("authapi: nil session service")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:      log,
		cfg:      cfg,
		sessions: sessions,
		flows:    flowsSvc,
		pool:     pool,
	}, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/auth/login", h.handleLogin)
	mux.HandleFunc("/auth/logout", h.handleLogout)
	mux.HandleFunc("/auth/validate", h.handleValidate)
	mux.HandleFunc("/auth/link/initiate", h.handleLinkInitiate)
	mux.HandleFunc("/auth/link/consume", h.handleLinkConsume)
	mux.HandleFunc("/auth/reset/initiate", h.handleResetInitiate)
	mux.HandleFunc("/auth/reset/complete", h.handleResetComplete)
}

// ---- handlers ----

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := strings.TrimSpace(r.UserAgent())
	client := NewCookieClientStore(w, r, h.cfg)

	res, err := h.sessions.Login(ctx, now, session.LoginInput{
		TokenName: h.cfg.CookieName,
		Subject:   req.Email,
		Proof:     req.Password,
		Remember:  req.Remember,
	}, client)
	if err != nil {
		h.log.Error("auth.login.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, "server_busy", "please retry later")
		return
	}
	if !res.Success {
		h.auditLoginFailed(ctx, ip, ua, res.Message)
		// Uniform 401: no distinction between unknown account and wrong password.
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	h.auditLoginSuccess(ctx, ip, ua, res.Token.Subject)
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Message: res.Message})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	client := NewCookieClientStore(w, r, h.cfg)

	var tok *session.Token
	if v, ok := client.Get(h.cfg.CookieName); ok {
		tok = &session.Token{Name: h.cfg.CookieName, Value: v}
	}

	res, err := h.sessions.Logout(ctx, now, tok, client)
	if err != nil {
		h.log.Error("auth.logout.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, "server_busy", "please retry later")
		return
	}

	h.auditLogout(ctx, clientIP(r, h.cfg.TrustProxy), r.UserAgent(), res.Partial)
	writeJSON(w, http.StatusOK, logoutResponse{
		Success: res.Success,
		Partial: res.Partial,
		Message: res.Message,
	})
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := strings.TrimSpace(r.UserAgent())
	client := NewCookieClientStore(w, r, h.cfg)

	out, err := h.sessions.Validate(ctx, now, h.cfg.CookieName, nil, client)
	switch {
	case errors.Is(err, session.ErrRateLimited):
		h.auditRateLimited(ctx, ip, ua)
		writeRateLimited(w)
		return
	case errors.Is(err, session.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "please retry later")
		return
	case err != nil:
		h.log.Error("auth.validate.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	if !out.Authenticated() {
		if out.Status() == session.StatusInvalid {
			h.auditValidateInvalid(ctx, ip, ua)
		}
		// One uniform denial regardless of which non-valid status was
		// derived; anything finer grained is a session-probing oracle.
		writeError(w, http.StatusUnauthorized, "not_authenticated", "not authenticated")
		return
	}

	exp := out.Record.ExpiresAt
	writeJSON(w, http.StatusOK, validateResponse{
		Authenticated: true,
		Subject:       out.Record.Subject,
		ExpiresAt:     &exp,
	})
}

func (h *Handler) handleLinkInitiate(w http.ResponseWriter, r *http.Request) {
	h.handleInitiate(w, r, false)
}

func (h *Handler) handleResetInitiate(w http.ResponseWriter, r *http.Request) {
	h.handleInitiate(w, r, true)
}

func (h *Handler) handleInitiate(w http.ResponseWriter, r *http.Request, reset bool) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.flows == nil {
		writeError(w, http.StatusNotFound, "not_enabled", "link flows are not enabled")
		return
	}

	var req linkInitiateRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	var (
		res flows.InitiateResult
		err error
	)
	if reset {
		res, err = h.flows.InitiateReset(ctx, now, req.Email)
	} else {
		res, err = h.flows.InitiateLoginLink(ctx, now, req.Email)
	}
	if err != nil {
		h.log.Error("auth.link.initiate.fail", "err", err, "reset", reset)
		writeError(w, http.StatusServiceUnavailable, "server_busy", "please retry later")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: res.Message})
}

func (h *Handler) handleLinkConsume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.flows == nil {
		writeError(w, http.StatusNotFound, "not_enabled", "link flows are not enabled")
		return
	}

	var req linkConsumeRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "token is required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := strings.TrimSpace(r.UserAgent())
	client := NewCookieClientStore(w, r, h.cfg)

	res, err := h.flows.ConsumeLoginLink(ctx, now, req.Token, h.cfg.CookieName, client)
	if err != nil {
		h.log.Error("auth.link.consume.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, "server_busy", "please retry later")
		return
	}

	h.auditLinkConsumed(ctx, ip, ua, "login_link", res.Success)
	if !res.Success {
		writeError(w, http.StatusUnauthorized, "link_invalid", res.Message)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Message: res.Message})
}

func (h *Handler) handleResetComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.flows == nil {
		writeError(w, http.StatusNotFound, "not_enabled", "link flows are not enabled")
		return
	}

	var req resetCompleteRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Token) == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "token and new_password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()
	ip := clientIP(r, h.cfg.TrustProxy)
	ua := strings.TrimSpace(r.UserAgent())

	res, err := h.flows.CompleteReset(ctx, now, req.Token, req.NewPassword)
	if err != nil {
		h.log.Error("auth.reset.complete.fail", "err", err)
		writeError(w, http.StatusServiceUnavailable, "server_busy", "please retry later")
		return
	}

	h.auditLinkConsumed(ctx, ip, ua, "reset", res.Success)
	if !res.Success {
		writeError(w, http.StatusUnauthorized, "link_invalid", res.Message)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: res.Message})
}
