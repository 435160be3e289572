package media

import (
	"errors"
	"net/http"

	"github.com/2beens/bodyforecast/internal/telemetry/tracing"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	disk *DiskStore
}

func NewHandler(disk *DiskStore) *Handler {
	return &Handler{
		disk: disk,
	}
}

// HandleGet serves a file stored by the disk backend.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.media.get")
	defer span.End()

	p := mux.Vars(r)["path"]
	f, err := h.disk.Open(p)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) || errors.Is(err, ErrInvalidPath) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		log.Errorf("open media file [%s]: %s", p, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		log.Errorf("stat media file [%s]: %s", p, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, stat.Name(), stat.ModTime(), f)
}
