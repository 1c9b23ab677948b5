package menu

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/menu-assistant/backend/internal/analysis/orderparse"
	"github.com/zhouzirui/menu-assistant/backend/internal/model/catalog"
	"github.com/zhouzirui/menu-assistant/backend/pkg/utils"
)

// Catalog is the read side of the branch catalog the handler needs.
type Catalog interface {
	catalog.Accessor
	List() []catalog.Branch
	FindByID(id string) (catalog.Branch, bool)
}

// Handler serves branch menus and the standalone order parser.
type Handler struct {
	catalog Catalog
}

// New returns a menu handler over c.
func New(c Catalog) *Handler {
	return &Handler{catalog: c}
}

// RegisterRoutes mounts the branch and parse routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/branches", h.handleListBranches)
	r.Get("/branches/{branchID}/menu", h.handleMenu)
	r.Post("/parse", h.handleParse)
}

type branchSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	BusinessID   string `json:"businessId"`
	BusinessType string `json:"businessType"`
	Products     int    `json:"products"`
}

func (h *Handler) handleListBranches(w http.ResponseWriter, r *http.Request) {
	branches := h.catalog.List()
	out := make([]branchSummary, 0, len(branches))
	for _, b := range branches {
		out = append(out, branchSummary{
			ID:           b.ID,
			Name:         b.Name,
			BusinessID:   b.BusinessID,
			BusinessType: b.BusinessType,
			Products:     len(b.Entries),
		})
	}
	utils.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) handleMenu(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchID")
	if _, ok := h.catalog.FindByID(branchID); !ok {
		utils.RespondError(w, http.StatusNotFound, "branch not found")
		return
	}

	text, err := h.catalog.GetMenuText(r.Context(), branchID)
	if err != nil {
		respondCatalogError(w, err)
		return
	}
	entries, err := h.catalog.GetCatalog(r.Context(), branchID)
	if err != nil {
		respondCatalogError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"branchId": branchID,
		"menu":     text,
		"entries":  entries,
	})
}

// handleParse runs the order parser alone, for admin testing.
func (h *Handler) handleParse(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		BranchID string `json:"branchId"`
		Text     string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entries, err := h.catalog.GetCatalog(r.Context(), payload.BranchID)
	if err != nil {
		respondCatalogError(w, err)
		return
	}

	cart := orderparse.Parse(payload.Text, entries)
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"cart":     cart,
		"subtotal": cart.Subtotal(),
		"summary":  cart.Summary(),
	})
}

func respondCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, catalog.ErrCatalogUnavailable) {
		utils.RespondError(w, http.StatusServiceUnavailable, "catalog unavailable")
		return
	}
	utils.RespondError(w, http.StatusInternalServerError, "internal error")
}
