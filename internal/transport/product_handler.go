package transport

import (
	"net/http"

	"simplestore/internal/middleware"
	"simplestore/internal/repository"
	"simplestore/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// noReviewsSentinel is returned in place of a numeric average for products
// without reviews. Callers must special-case it.
const noReviewsSentinel = "No reviews yet!"

// ProductRequest represents the product create/update payload
type ProductRequest struct {
	CategoryID  string          `json:"category_id" validate:"required,uuid"`
	Name        string          `json:"name" validate:"required,max=255"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	Description string          `json:"description"`
}

// AverageRatingResponse carries either the mean rating as a float or the
// no-reviews sentinel string.
type AverageRatingResponse struct {
	AverageRating interface{} `json:"average_rating"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. Reads are gated by
// readMiddleware (deployment policy); writes always require authentication.
func (h *ProductHandler) RegisterRoutes(r chi.Router, readMiddleware, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/products", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(readMiddleware)
			r.Get("/", h.List)
			r.Get("/top_rated", h.TopRated)
			r.Get("/{id}", h.Retrieve)
			r.Get("/{id}/average_rating", h.AverageRating)
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

// List returns products in creation order, optionally filtered by the
// `categories` query parameter. An unknown category yields an empty list.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseCategoryFilter(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid categories filter")
		return
	}

	products, err := h.catalogService.ListProducts(r.Context(), categoryID)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// TopRated returns up to 5 products ranked by descending average rating,
// optionally filtered by the `categories` query parameter.
func (h *ProductHandler) TopRated(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseCategoryFilter(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid categories filter")
		return
	}

	products, err := h.catalogService.TopRated(r.Context(), categoryID)
	if err != nil {
		h.logger.Error("Failed to rank products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to rank products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Retrieve returns the product together with up to 5 related products of
// the same category.
func (h *ProductHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	detail, err := h.catalogService.GetProductDetail(r.Context(), id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, detail)
}

// AverageRating returns the mean review rating of the product, or the
// no-reviews sentinel when no reviews exist.
func (h *ProductHandler) AverageRating(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	avg, count, err := h.catalogService.AverageRating(r.Context(), id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to compute average rating", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute average rating")
		return
	}

	response := AverageRatingResponse{AverageRating: avg}
	if count == 0 {
		response.AverageRating = noReviewsSentinel
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// Create creates a new product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	categoryID, err := parseUUIDField(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), categoryID, req.Name, req.Price, req.Description)
	if err != nil {
		if err == repository.ErrProductCategoryMissing {
			middleware.RespondWithError(w, http.StatusBadRequest, "category does not exist")
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update updates an existing product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	categoryID, err := parseUUIDField(req.CategoryID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, categoryID, req.Name, req.Price, req.Description)
	if err != nil {
		switch err {
		case repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case repository.ErrProductCategoryMissing:
			middleware.RespondWithError(w, http.StatusBadRequest, "category does not exist")
		default:
			h.logger.Error("Failed to update product", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes a product and, by cascade, its reviews
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}
