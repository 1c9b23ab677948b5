package recommendation

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
	recoservice "github.com/zhouzirui/menu-assistant/backend/internal/service/recommendation"
	"github.com/zhouzirui/menu-assistant/backend/pkg/utils"
)

// Handler exposes the recommendation flow directly, without the chat layer.
type Handler struct {
	machine *recoservice.Machine
}

// New returns a handler over machine.
func New(machine *recoservice.Machine) *Handler {
	return &Handler{machine: machine}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/recommendations", h.handleCreate)
	r.Get("/recommendations/{sessionID}", h.handleGet)
	r.Get("/recommendations/{sessionID}/next", h.handleNext)
	r.Post("/recommendations/{sessionID}/answers", h.handleAnswer)
	r.Delete("/recommendations/{sessionID}", h.handleAbandon)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SenderID    string `json:"senderId"`
		BranchID    string `json:"branchId"`
		BusinessID  string `json:"businessId"`
		PartySize   int    `json:"partySize"`
		MealContext string `json:"mealContext"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SenderID == "" || payload.BranchID == "" {
		utils.RespondError(w, http.StatusBadRequest, "senderId and branchId are required")
		return
	}

	session, err := h.machine.CreateSession(r.Context(), payload.SenderID, payload.BranchID, payload.BusinessID, payload.PartySize, payload.MealContext)
	if err != nil {
		respondMachineError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	session, err := h.machine.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondMachineError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	step, err := h.machine.NextQuestion(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondMachineError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, step)
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Answer string `json:"answer"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accepted, err := h.machine.ProcessAnswer(r.Context(), chi.URLParam(r, "sessionID"), payload.Answer)
	if err != nil {
		respondMachineError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"accepted": accepted})
}

func (h *Handler) handleAbandon(w http.ResponseWriter, r *http.Request) {
	if err := h.machine.Abandon(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		respondMachineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondMachineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recoservice.ErrInvalidPartySize):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, recoservice.ErrSessionNotFound):
		utils.RespondError(w, http.StatusNotFound, recoservice.ErrSessionNotFound.Error())
	case errors.Is(err, recoservice.ErrSessionNotActive):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		utils.RespondError(w, http.StatusServiceUnavailable, catalog.ErrCatalogUnavailable.Error())
	default:
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}
