package rest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyTTL       = 24 * time.Hour
)

// withIdempotency оборачивает мутирующий handler кешированием ответа по
// Idempotency-Key. Заголовок опционален: без него запрос выполняется как
// обычно. Повтор с тем же ключом и тем же телом получает сохранённый ответ,
// повтор с другим телом — 409.
func (h *Handler) withIdempotency(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.idem == nil {
			next(w, r)
			return
		}

		key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
		if key == "" {
			next(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		record, err := h.idem.CreateProcessing(key, requestHash(r.Method, r.URL.Path, body), time.Now().UTC().Add(idempotencyTTL))
		if err != nil {
			h.replayIdempotency(w, key, record, err)
			return
		}

		capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		next(capture, r)

		if capture.status >= 200 && capture.status < 300 {
			if markErr := h.idem.MarkDone(key, capture.body.Bytes(), capture.status); markErr != nil {
				h.logger.WithError(markErr).WithField("idempotency_key", key).Warn("failed to store idempotent success response")
			}
			return
		}
		if markErr := h.idem.MarkFailed(key, capture.body.Bytes(), capture.status); markErr != nil {
			h.logger.WithError(markErr).WithField("idempotency_key", key).Warn("failed to store idempotency failure response")
		}
	}
}

func (h *Handler) replayIdempotency(w http.ResponseWriter, key string, record domain.IdempotencyRecord, createErr error) {
	switch {
	case errors.Is(createErr, domain.ErrIdempotencyHashMismatch):
		h.writeJSON(w, http.StatusConflict, errorResponse{Error: "idempotency key is already used with different request payload"})
	case errors.Is(createErr, domain.ErrIdempotencyKeyAlreadyExists):
		switch record.Status {
		case domain.IdempotencyStatusProcessing:
			h.writeJSON(w, http.StatusConflict, errorResponse{Error: "request with the same idempotency key is already processing"})
		case domain.IdempotencyStatusDone, domain.IdempotencyStatusFailed:
			h.replayStoredResponse(w, record)
		default:
			h.logger.WithField("idempotency_key", key).Warn("unknown idempotency record status")
			h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		}
	default:
		h.logger.WithError(createErr).WithField("idempotency_key", key).Warn("failed to create idempotency record")
		h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func (h *Handler) replayStoredResponse(w http.ResponseWriter, record domain.IdempotencyRecord) {
	status := record.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if len(record.ResponseBody) > 0 {
		if _, err := w.Write(record.ResponseBody); err != nil {
			h.logger.WithError(err).Warn("failed to replay cached idempotency response")
		}
	}
}

func requestHash(method, path string, body []byte) string {
	payload := make([]byte, 0, len(method)+len(path)+len(body)+2)
	payload = append(payload, method...)
	payload = append(payload, ':')
	payload = append(payload, path...)
	payload = append(payload, ':')
	payload = append(payload, body...)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// captureWriter дублирует статус и тело ответа для idempotency-кеша.
type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *captureWriter) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(data []byte) (int, error) {
	c.body.Write(data)
	return c.ResponseWriter.Write(data)
}
