package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vanshika/referralnet/internal/auth"
	"github.com/vanshika/referralnet/internal/domain"
	"github.com/vanshika/referralnet/internal/expansion"
	"github.com/vanshika/referralnet/internal/service"
	"github.com/vanshika/referralnet/internal/tree"
)

// EmptyNetworkMessage is shown when the caller has no referrals.
const EmptyNetworkMessage = "No referrals yet."

// ReferralStore loads the nested referral payload for one user.
type ReferralStore interface {
	FetchReferrals(ctx context.Context, userID string, maxDepth int) ([]domain.RawNode, error)
}

// APIDependencies groups what the API handlers need.
type APIDependencies struct {
	Accounts  *service.AccountService
	Referrals *service.ReferralService
	Store     ReferralStore
	MaxDepth  int
}

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger    *slog.Logger
	accounts  *service.AccountService
	referrals *service.ReferralService
	store     ReferralStore
	maxDepth  int
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, deps APIDependencies) *APIHandlers {
	maxDepth := deps.MaxDepth
	if maxDepth <= 0 {
		maxDepth = tree.DefaultMaxDepth
	}
	return &APIHandlers{
		logger:    logger,
		accounts:  deps.Accounts,
		referrals: deps.Referrals,
		store:     deps.Store,
		maxDepth:  maxDepth,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"referralCode"`
}

type profileResponse struct {
	User         domain.ReferralUser `json:"user"`
	ReferralCode string              `json:"referralCode"`
}

type treeResponse struct {
	Forest      *tree.Forest        `json:"forest"`
	Expanded    expansion.State     `json:"expanded"`
	Rows        []expansion.Row     `json:"rows"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
	TeamSize    int                 `json:"teamSize"`
	Message     string              `json:"message,omitempty"`
	LoadedAt    string              `json:"loadedAt"`
}

func (h *APIHandlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	session, err := h.accounts.Login(r.Context(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.fail(w, r, err, "failed to log in")
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (h *APIHandlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	session, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		h.fail(w, r, err, "failed to register")
		return
	}
	h.logger.Info("account registered", "userId", session.User.ID, "requestId", RequestIDFromContext(r.Context()))
	respondJSON(w, http.StatusCreated, session)
}

func (h *APIHandlers) handleMe(w http.ResponseWriter, r *http.Request) {
	acct, err := h.account(r)
	if err != nil {
		h.fail(w, r, err, "failed to load profile")
		return
	}
	respondJSON(w, http.StatusOK, profileResponse{User: acct.ReferralUser(), ReferralCode: acct.ReferralCode})
}

func (h *APIHandlers) handleReferrals(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	nodes, err := h.store.FetchReferrals(r.Context(), userID, h.maxDepth)
	if err != nil {
		h.fail(w, r, err, "failed to fetch referrals")
		return
	}
	if nodes == nil {
		nodes = []domain.RawNode{}
	}
	respondJSON(w, http.StatusOK, nodes)
}

func (h *APIHandlers) handleReferralTree(w http.ResponseWriter, r *http.Request) {
	view, err := h.loadView(r)
	if err != nil {
		h.fail(w, r, err, "failed to build referral tree")
		return
	}

	query := r.URL.Query()
	switch strings.ToLower(query.Get("expand")) {
	case "", "all":
	case "none":
		view.CollapseAll()
	default:
		writeError(w, http.StatusBadRequest, "expand must be all or none")
		return
	}
	for _, id := range query["toggle"] {
		view.Toggle(strings.TrimSpace(id))
	}

	rows := view.Rows()
	if strings.EqualFold(query.Get("rows"), "visible") {
		rows = view.VisibleRows()
	}

	resp := treeResponse{
		Forest:      view.Forest,
		Expanded:    view.State,
		Rows:        rows,
		Diagnostics: view.Diagnostics,
		TeamSize:    view.Forest.Len(),
		LoadedAt:    formatTime(view.LoadedAt),
	}
	if resp.Diagnostics == nil {
		resp.Diagnostics = []domain.Diagnostic{}
	}
	if view.Forest.Empty() {
		resp.Message = EmptyNetworkMessage
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) handleDashboard(w http.ResponseWriter, r *http.Request) {
	acct, err := h.account(r)
	if err != nil {
		h.fail(w, r, err, "failed to load dashboard")
		return
	}
	view, err := h.loadView(r)
	if err != nil {
		h.fail(w, r, err, "failed to load dashboard")
		return
	}
	respondJSON(w, http.StatusOK, view.Dashboard(acct))
}

func (h *APIHandlers) account(r *http.Request) (domain.Account, error) {
	acct, err := h.accounts.Account(r.Context(), UserIDFromContext(r.Context()))
	if errors.Is(err, domain.ErrNotFound) {
		// Token outlived its account.
		return domain.Account{}, domain.ErrUnauthenticated
	}
	return acct, err
}

func (h *APIHandlers) loadView(r *http.Request) (*service.View, error) {
	userID := UserIDFromContext(r.Context())
	return h.referrals.Load(r.Context(), service.FetcherFunc(func(ctx context.Context) ([]domain.RawNode, error) {
		return h.store.FetchReferrals(ctx, userID, h.maxDepth)
	}))
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, context.Canceled):
		h.logger.Debug("request cancelled", "path", r.URL.Path)
	default:
		h.logger.Error(msg, "error", err, "path", r.URL.Path, "requestId", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}
