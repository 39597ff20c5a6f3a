package handlers

import (
	"fmt"
	"net/http"

	"feedbackhub-backend/internal/middleware"
	"feedbackhub-backend/internal/models"
	"feedbackhub-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type FeedbackHandler struct {
	service *service.FeedbackService
	logger  *zap.SugaredLogger
}

func NewFeedbackHandler(svc *service.FeedbackService, logger *zap.SugaredLogger) *FeedbackHandler {
	return &FeedbackHandler{
		service: svc,
		logger:  logger,
	}
}

type SubmitFeedbackResponse struct {
	Message  string           `json:"message"`
	ID       string           `json:"id"`
	Feedback *models.Feedback `json:"feedback"`
}

type UpdateFeedbackResponse struct {
	Message  string           `json:"message"`
	Feedback *models.Feedback `json:"feedback"`
}

// --- POST /api/feedback ---

func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackDraft
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	feedback, err := h.service.Submit(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, SubmitFeedbackResponse{
		Message:  "Feedback submitted successfully!",
		ID:       feedback.ID,
		Feedback: feedback,
	})
}

// --- GET /api/admin/feedback ---

func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), middleware.GetToken(r.Context()))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if admin, ok := middleware.GetAdmin(r.Context()); ok {
		h.logger.Debugw("feedback listed", "admin", admin.Username, "total", list.Stats.Total)
	}
	writeJSON(w, http.StatusOK, list)
}

// --- PUT|PATCH /api/feedback/{id} ---

func (h *FeedbackHandler) UpdateFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch models.FeedbackPatch
	if err := readJSON(w, r, &patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	feedback, err := h.service.Update(r.Context(), middleware.GetToken(r.Context()), id, patch)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, UpdateFeedbackResponse{
		Message:  fmt.Sprintf("Feedback %s updated successfully", id),
		Feedback: feedback,
	})
}

// --- DELETE /api/feedback/{id} ---

func (h *FeedbackHandler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Remove(r.Context(), middleware.GetToken(r.Context()), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Feedback %s deleted successfully", id),
	})
}
