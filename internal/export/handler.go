package export

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/roiboard/roiboard/internal/auth"
	"github.com/roiboard/roiboard/internal/roiset"
)

type Handler struct {
	sets *roiset.Service
}

func NewHandler(sets *roiset.Service) *Handler {
	return &Handler{sets: sets}
}

// ExportSet handles GET /api/sets/{setId}/export?format=csv|json.
func (h *Handler) ExportSet(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	setID := mux.Vars(r)["setId"]

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		http.Error(w, "invalid format: must be csv or json", http.StatusBadRequest)
		return
	}

	set, err := h.sets.Get(r.Context(), setID, userID)
	if err != nil {
		switch {
		case errors.Is(err, roiset.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, roiset.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			slog.Error("export load set", "error", err, "set", setID)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	name := sanitize(set.ID)
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, name))
		err = WriteCSV(w, set.Document)
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.json"`, name))
		err = WriteJSON(w, set.Document)
	}
	if err != nil {
		slog.Error("export write", "error", err, "set", setID)
	}
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
