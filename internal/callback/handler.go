package callback

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"duitku-go/internal/duitku"
	"duitku-go/internal/logger"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Processor receives every callback whose signature checked out.
type Processor func(ctx context.Context, n *duitku.NotificationPayload) error

// Verifier is the part of duitku.Client the handler needs.
type Verifier interface {
	ParseNotification(fields map[string]string) (*duitku.NotificationPayload, error)
}

type Handler struct {
	Verifier Verifier
	Process  Processor
}

func NewHandler(v Verifier, process Processor) *Handler {
	return &Handler{Verifier: v, Process: process}
}

// ServeHTTP accepts the gateway's form-encoded POST, or a GET carrying the
// same fields as query parameters.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET, POST")
		writeJSONError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fields, err := formFields(w, r)
	if err != nil {
		log.Warn("failed to parse callback", zap.Error(err))
		writeJSONError(w, "malformed callback", http.StatusBadRequest)
		return
	}

	n, err := h.Verifier.ParseNotification(fields)
	if err != nil {
		if errors.Is(err, duitku.ErrInvalidSignature) {
			log.Warn("callback signature rejected",
				zap.String("merchant_order_id", fields["merchantOrderId"]),
				zap.Error(err),
			)
			writeJSONError(w, "invalid signature", http.StatusUnauthorized)
			return
		}
		log.Error("failed to verify callback", zap.Error(err))
		writeJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}

	log = log.With(
		zap.String("merchant_order_id", n.MerchantOrderID),
		zap.String("reference", n.Reference),
		zap.String("result", n.ResultCode.Name()),
	)
	log.Info("duitku callback received")

	if h.Process != nil {
		if err := h.Process(r.Context(), n); err != nil {
			log.Error("failed to process callback", zap.Error(err))
			writeJSONError(w, "failed to process callback", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// formFields flattens the request form to the first value of each key.
func formFields(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(r.Form))
	for k, vs := range r.Form {
		if len(vs) > 0 {
			fields[k] = vs[0]
		}
	}
	return fields, nil
}

func writeJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
