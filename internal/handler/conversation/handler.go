package conversation

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	convservice "github.com/zhouzirui/menu-assistant/backend/internal/service/conversation"
	"github.com/zhouzirui/menu-assistant/backend/pkg/utils"
)

// Handler 对话引擎的HTTP处理器
type Handler struct {
	engine *convservice.Engine
}

// New 创建对话处理器
func New(engine *convservice.Engine) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes 注册对话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/messages", h.handleMessage)
	r.Delete("/conversations/{branchID}/{senderID}", h.handleEvict)
}

// handleMessage 处理一条入站消息
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload convservice.Request
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payload.BranchID = strings.TrimSpace(payload.BranchID)
	payload.SenderID = strings.TrimSpace(payload.SenderID)
	if payload.BranchID == "" || payload.SenderID == "" {
		utils.RespondError(w, http.StatusBadRequest, "branchId and senderId are required")
		return
	}

	reply := h.engine.Respond(r.Context(), payload)
	utils.RespondJSON(w, http.StatusOK, reply)
}

// handleEvict 结束并清理一个对话
func (h *Handler) handleEvict(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branchID")
	senderID := chi.URLParam(r, "senderID")

	if err := h.engine.Evict(r.Context(), senderID, branchID); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, "failed to evict conversation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
