package transport

import (
	"net/http"

	"simplestore/internal/middleware"
	"simplestore/internal/repository"
	"simplestore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// duplicateReviewDetail is the client-error message for a second review of
// the same product by the same user.
const duplicateReviewDetail = "You have already reviewed this product."

// CreateReviewRequest represents the review creation payload. The reviewer
// is the authenticated user; ratings are non-negative small integers.
type CreateReviewRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Content   string `json:"content"`
	Rating    int    `json:"rating" validate:"gte=0,lte=32767"`
}

// UpdateReviewRequest represents the review update payload
type UpdateReviewRequest struct {
	Content string `json:"content"`
	Rating  int    `json:"rating" validate:"gte=0,lte=32767"`
}

// ReviewHandler handles HTTP requests for review operations
type ReviewHandler struct {
	reviewService service.ReviewService
	logger        *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// RegisterRoutes registers all review routes. Reads follow the catalog read
// policy; writes always require authentication.
func (h *ReviewHandler) RegisterRoutes(r chi.Router, readMiddleware, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/reviews", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(readMiddleware)
			r.Get("/", h.List)
			r.Get("/{id}", h.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns all reviews
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewService.ListReviews(r.Context())
	if err != nil {
		h.logger.Error("Failed to list reviews", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, reviews)
}

// Get returns one review
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	review, err := h.reviewService.GetReview(r.Context(), id)
	if err != nil {
		if err == repository.ErrReviewNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "review not found")
			return
		}
		h.logger.Error("Failed to get review", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get review")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, review)
}

// Create persists a new review by the authenticated user. A duplicate
// review for the same (user, product) pair is a client error, including
// the case where the storage constraint catches a concurrent submission.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req CreateReviewRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := parseUUIDField(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	review, err := h.reviewService.CreateReview(r.Context(), userID, productID, req.Content, req.Rating)
	if err != nil {
		switch err {
		case repository.ErrDuplicateReview:
			middleware.RespondWithDetail(w, http.StatusBadRequest, duplicateReviewDetail)
		case repository.ErrReviewTargetMissing:
			middleware.RespondWithError(w, http.StatusBadRequest, "product does not exist")
		default:
			h.logger.Error("Failed to create review", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create review")
		}
		return
	}

	h.logger.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("product_id", review.ProductID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, review)
}

// Update changes the content and rating of an existing review
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	var req UpdateReviewRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviewService.UpdateReview(r.Context(), id, req.Content, req.Rating)
	if err != nil {
		if err == repository.ErrReviewNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "review not found")
			return
		}
		h.logger.Error("Failed to update review", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update review")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, review)
}

// Delete removes a review
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	if err := h.reviewService.DeleteReview(r.Context(), id); err != nil {
		if err == repository.ErrReviewNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "review not found")
			return
		}
		h.logger.Error("Failed to delete review", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete review")
		return
	}

	h.logger.Info("Review deleted", zap.String("review_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
