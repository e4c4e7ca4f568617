package handler

import (
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"kycgate/internal/history"
	"kycgate/internal/model"
	"kycgate/internal/verification"
	"kycgate/pkg/derrors"
	"kycgate/pkg/platform/httputil"
	"kycgate/pkg/requestcontext"
)

// Batch uploads are bounded; a verification CSV is small by nature.
const maxBatchUpload = 10 << 20

// Handler wires verification endpoints to the scoring service. It stays
// thin: decoding, CSV framing, and response shaping only.
type Handler struct {
	service *verification.Service
	history *history.Service
	bundle  *model.Bundle
	logger  *slog.Logger
}

// New constructs a verification handler with its dependencies.
func New(service *verification.Service, historySvc *history.Service, bundle *model.Bundle, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		history: historySvc,
		bundle:  bundle,
		logger:  logger,
	}
}

// Register mounts the public verification endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/verify-kyc", h.HandleVerify)
	r.Post("/api/verify-kyc-batch", h.HandleVerifyBatch)
	r.Get("/api/history", h.HandleHistory)
}

// RegisterAdmin mounts diagnostic endpoints; callers wrap these with the
// admin middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/test-prediction", h.HandleTestPrediction)
}

// HandleVerify handles POST /api/verify-kyc.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	rec, err := req.Record()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Verify(ctx, rec)
	if err != nil {
		h.logger.ErrorContext(ctx, "verification failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "verification completed",
		"request_id", requestID,
		"verification_id", result.ID,
		"risk_level", result.Score.RiskLevel,
		"status", result.Score.Status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleVerifyBatch handles POST /api/verify-kyc-batch. The upload is a
// multipart CSV with columns (Full Name, Document Number, Address, Document
// Type). An unparsable upload is rejected wholesale; a bad row only fails
// that row.
func (h *Handler) HandleVerifyBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if err := r.ParseMultipartForm(maxBatchUpload); err != nil {
		httputil.WriteError(w, derrors.New(derrors.CodeBadRequest, "expected multipart form with a CSV file"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httputil.WriteError(w, derrors.New(derrors.CodeBadRequest, "missing file upload field"))
		return
	}
	defer file.Close()

	rows, err := parseBatchCSV(file)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	summary := h.service.VerifyBatch(ctx, rows)
	h.logger.InfoContext(ctx, "batch verification completed",
		"request_id", requestID,
		"total", summary.Total,
		"successful", summary.Successful,
		"failed", summary.Failed,
	)
	httputil.WriteJSON(w, http.StatusOK, FromBatch(summary))
}

// HandleHistory handles GET /api/history.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.history.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "history read failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"total":   len(entries),
		"results": entries,
	})
}

// HandleTestPrediction handles GET /admin/test-prediction: scores canned
// records while exposing each pipeline stage, for verifying a freshly
// deployed artifact set.
func (h *Handler) HandleTestPrediction(w http.ResponseWriter, r *http.Request) {
	cases := []verification.IdentityRecord{
		{Name: "John Doe", DocumentNumber: "123456789012", Address: "123 Main Street, City, State 12345", DocumentType: verification.DocumentAadhar},
		{Name: "Jane Smith", DocumentNumber: "ABCDE1234F", Address: "456 Oak Avenue", DocumentType: verification.DocumentPan},
	}

	type diag struct {
		Record verification.IdentityRecord `json:"record"`
		Trace  model.StageTrace            `json:"trace"`
	}
	out := make([]diag, 0, len(cases))
	for _, rec := range cases {
		vec := verification.Extract(rec)
		out = append(out, diag{Record: rec, Trace: h.bundle.Trace(vec, rec.DocumentNumber)})
	}

	classifier, selector, scaler := h.bundle.Loaded()
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"mode":       h.bundle.Mode().String(),
		"classifier": classifier,
		"selector":   selector,
		"scaler":     scaler,
		"results":    out,
	})
}

// batchColumns maps normalized CSV header names to record fields.
var batchColumns = map[string]int{
	"fullname":       0,
	"name":           0,
	"documentnumber": 1,
	"address":        2,
	"documenttype":   3,
	"idtype":         3,
}

// parseBatchCSV reads the upload into identity records. Header resolution
// is case- and spacing-insensitive. Short rows become records with missing
// fields so row validation isolates them; only a structurally unreadable
// file rejects the whole batch.
func parseBatchCSV(file io.Reader) ([]verification.IdentityRecord, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, derrors.New(derrors.CodeBadRequest, "could not parse CSV upload")
	}
	if len(all) == 0 {
		return nil, derrors.New(derrors.CodeBadRequest, "CSV upload is empty")
	}

	// Resolve header positions.
	colFor := [4]int{-1, -1, -1, -1}
	for i, name := range all[0] {
		key := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.TrimSpace(name)))
		if field, ok := batchColumns[key]; ok && colFor[field] == -1 {
			colFor[field] = i
		}
	}
	if colFor[0] == -1 || colFor[1] == -1 || colFor[3] == -1 {
		return nil, derrors.New(derrors.CodeBadRequest, "CSV header must include Full Name, Document Number and Document Type columns")
	}

	pick := func(row []string, col int) string {
		if col < 0 || col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}

	rows := make([]verification.IdentityRecord, 0, len(all)-1)
	for _, raw := range all[1:] {
		rows = append(rows, verification.IdentityRecord{
			Name:           pick(raw, colFor[0]),
			DocumentNumber: pick(raw, colFor[1]),
			Address:        pick(raw, colFor[2]),
			// Raw type flows through; per-row validation rejects unknowns.
			DocumentType: verification.DocumentType(strings.ToUpper(pick(raw, colFor[3]))),
		})
	}
	return rows, nil
}
