package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/marcus/dmscreen/internal/models"
)

// PutStateResponse is the body returned after a document is stored.
type PutStateResponse struct {
	LastSync time.Time `json:"lastSync"`
}

// handleGetState serves the stored document as a SyncRecord.
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	doc, err := s.store.GetDocument(userID)
	if err != nil {
		logFor(r.Context()).Error("get document", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to load document")
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "no document for user")
		return
	}

	rec := models.SyncRecord{GameState: models.DefaultState(), LastSync: doc.LastSync}
	if err := json.Unmarshal(doc.Data, &rec.GameState); err != nil {
		logFor(r.Context()).Error("decode stored document", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "stored document is corrupt")
		return
	}
	rec.Normalize()
	s.metrics.RecordRead()
	writeJSON(w, http.StatusOK, rec)
}

// handlePutState overwrites the document with the request body and stamps
// it with the server clock.
func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "document exceeds size limit")
			return
		}
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "failed to read body")
		return
	}

	state := models.DefaultState()
	if err := json.Unmarshal(body, &state); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid state document: "+err.Error())
		return
	}
	state.Normalize()

	data, err := json.Marshal(state)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to encode document")
		return
	}

	userID := r.PathValue("id")
	stamp, err := s.store.PutDocument(userID, data, r.Header.Get("X-Device-ID"), s.now())
	if err != nil {
		logFor(r.Context()).Error("put document", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to store document")
		return
	}
	s.metrics.RecordWrite()
	logFor(r.Context()).Debug("document stored", "bytes", len(data), "last_sync", stamp)
	writeJSON(w, http.StatusOK, PutStateResponse{LastSync: stamp})
}
