package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// parseIDParam extracts and parses the {id} URL parameter
func parseIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// parseUUIDField parses a UUID carried in a request body field
func parseUUIDField(raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}

// parseCategoryFilter reads the optional ?categories={id} query parameter.
// A missing parameter yields (nil, nil); a malformed one yields an error.
func parseCategoryFilter(r *http.Request) (*uuid.UUID, error) {
	raw := r.URL.Query().Get("categories")
	if raw == "" {
		return nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}

	return &id, nil
}
