package transport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kutahiru/idea-labo-sub002/internal/domain/brainwriting"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/mandalart"
	"github.com/kutahiru/idea-labo-sub002/internal/domain/osborn"
	"github.com/kutahiru/idea-labo-sub002/internal/repository"
)

// FillWorker triggers asynchronous AI fills.
type FillWorker interface {
	RequestMandalartFill(ctx context.Context, tenantID, userID, mandalartID string) (string, error)
	RequestChecklistFill(ctx context.Context, tenantID, userID, checklistID string) (string, error)
}

// Services bundles everything the router dispatches to.
type Services struct {
	Brainwriting *brainwriting.Service
	Mandalarts   *mandalart.Service
	Checklists   *osborn.Service
	Assist       FillWorker
	Events       EventSubscriber
}

// Server wires HTTP handlers.
type Server struct {
	svc Services
}

// NewRouter creates the HTTP router with auth middleware applied to the API.
func NewRouter(svc Services, authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	srv := &Server{svc: svc}

	r.Get("/health", srv.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}

		r.Route("/brainwriting", func(r chi.Router) {
			r.Post("/", srv.handleCreateSession)
			r.Get("/", srv.handleListSessions)
			r.Post("/join", srv.handleJoinByToken)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", srv.handleSessionDetail)
				r.Post("/start", srv.handleStartSession)
				r.Post("/join", srv.handleJoinSession)
				r.Put("/flags", srv.handleSessionFlags)
				r.Get("/events", srv.handleSessionEvents)
				r.Post("/sheets/{sheetID}/inputs", srv.handleSubmitInput)
				r.Post("/sheets/{sheetID}/finish", srv.handleFinishTurn)
			})
		})

		r.Route("/mandalart", func(r chi.Router) {
			r.Post("/", srv.handleCreateMandalart)
			r.Get("/", srv.handleListMandalarts)
			r.Route("/{mandalartID}", func(r chi.Router) {
				r.Get("/", srv.handleGetMandalart)
				r.Delete("/", srv.handleDeleteMandalart)
				r.Put("/cells", srv.handleMandalartCell)
				r.Post("/fill", srv.handleMandalartFill)
			})
		})

		r.Route("/osborn", func(r chi.Router) {
			r.Post("/", srv.handleCreateChecklist)
			r.Get("/", srv.handleListChecklists)
			r.Route("/{checklistID}", func(r chi.Router) {
				r.Get("/", srv.handleGetChecklist)
				r.Delete("/", srv.handleDeleteChecklist)
				r.Put("/answers", srv.handleChecklistAnswer)
				r.Post("/fill", srv.handleChecklistFill)
			})
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func identity(w http.ResponseWriter, r *http.Request) (repository.Identity, bool) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return repository.Identity{}, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Code:    "invalid_input",
			Message: "malformed request body",
		}})
		return false
	}
	return true
}

// --- brainwriting ---

type createSessionRequest struct {
	Mode        string `json:"mode"`
	Title       string `json:"title"`
	Theme       string `json:"theme"`
	Description string `json:"description"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req createSessionRequest
	if !decode(w, r, &req) {
		return
	}

	sess, err := s.svc.Brainwriting.Create(r.Context(), id.TenantID, id.UserID, brainwriting.CreateRequest{
		Mode:        brainwriting.UsageMode(req.Mode),
		Title:       req.Title,
		Theme:       req.Theme,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	sessions, err := s.svc.Brainwriting.ListMine(r.Context(), id.TenantID, id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleSessionDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	detail, err := s.svc.Brainwriting.GetDetail(r.Context(), id.TenantID, id.UserID, chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if err := s.svc.Brainwriting.Start(r.Context(), id.TenantID, id.UserID, chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleJoinSession(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	result, err := s.svc.Brainwriting.Join(r.Context(), id.TenantID, id.UserID, chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type joinByTokenRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleJoinByToken(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req joinByTokenRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := s.svc.Brainwriting.JoinByToken(r.Context(), id.TenantID, id.UserID, req.Token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type sessionFlagsRequest struct {
	InviteActive  bool `json:"invite_active"`
	ResultsPublic bool `json:"results_public"`
}

func (s *Server) handleSessionFlags(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req sessionFlagsRequest
	if !decode(w, r, &req) {
		return
	}
	err := s.svc.Brainwriting.SetFlags(r.Context(), id.TenantID, id.UserID, chi.URLParam(r, "sessionID"), req.InviteActive, req.ResultsPublic)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type submitInputRequest struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Content string `json:"content"`
}

func (s *Server) handleSubmitInput(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req submitInputRequest
	if !decode(w, r, &req) {
		return
	}
	err := s.svc.Brainwriting.SubmitInput(r.Context(),
		id.TenantID, id.UserID,
		chi.URLParam(r, "sessionID"), chi.URLParam(r, "sheetID"),
		req.Row, req.Col, req.Content,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinishTurn(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	err := s.svc.Brainwriting.FinishTurn(r.Context(),
		id.TenantID, id.UserID,
		chi.URLParam(r, "sessionID"), chi.URLParam(r, "sheetID"),
	)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- mandalart ---

type themeRequest struct {
	Theme string `json:"theme"`
}

func (s *Server) handleCreateMandalart(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req themeRequest
	if !decode(w, r, &req) {
		return
	}
	m, err := s.svc.Mandalarts.Create(r.Context(), id.TenantID, id.UserID, req.Theme)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleListMandalarts(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	list, err := s.svc.Mandalarts.List(r.Context(), id.TenantID, id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mandalarts": list})
}

func (s *Server) handleGetMandalart(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	grid, err := s.svc.Mandalarts.Get(r.Context(), id.TenantID, id.UserID, chi.URLParam(r, "mandalartID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

func (s *Server) handleDeleteMandalart(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if err := s.svc.Mandalarts.Delete(r.Context(), id.TenantID, id.UserID, chi.URLParam(r, "mandalartID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type mandalartCellRequest struct {
	Block    int    `json:"block"`
	Position int    `json:"position"`
	Content  string `json:"content"`
}

func (s *Server) handleMandalartCell(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req mandalartCellRequest
	if !decode(w, r, &req) {
		return
	}
	err := s.svc.Mandalarts.UpsertCell(r.Context(), id.TenantID, id.UserID,
		chi.URLParam(r, "mandalartID"), req.Block, req.Position, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMandalartFill(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	corrID, err := s.svc.Assist.RequestMandalartFill(r.Context(), id.TenantID, id.UserID, chi.URLParam(r, "mandalartID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"correlation_id": corrID})
}

// --- osborn ---

func (s *Server) handleCreateChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req themeRequest
	if !decode(w, r, &req) {
		return
	}
	c, err := s.svc.Checklists.Create(r.Context(), id.TenantID, id.UserID, req.Theme)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListChecklists(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	list, err := s.svc.Checklists.List(r.Context(), id.TenantID, id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"checklists": list})
}

func (s *Server) handleGetChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	sheet, err := s.svc.Checklists.Get(r.Context(), id.TenantID, id.UserID, chi.URLParam(r, "checklistID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sheet)
}

func (s *Server) handleDeleteChecklist(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if err := s.svc.Checklists.Delete(r.Context(), id.TenantID, id.UserID, chi.URLParam(r, "checklistID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checklistAnswerRequest struct {
	Lens    string `json:"lens"`
	Content string `json:"content"`
}

func (s *Server) handleChecklistAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var req checklistAnswerRequest
	if !decode(w, r, &req) {
		return
	}
	err := s.svc.Checklists.UpsertAnswer(r.Context(), id.TenantID, id.UserID,
		chi.URLParam(r, "checklistID"), osborn.Lens(req.Lens), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChecklistFill(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	corrID, err := s.svc.Assist.RequestChecklistFill(r.Context(), id.TenantID, id.UserID, chi.URLParam(r, "checklistID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"correlation_id": corrID})
}
