package handler

import (
	"time"

	"kycgate/internal/verification"
)

// VerifyRequest is the single-record submission body.
type VerifyRequest struct {
	Name           string `json:"name"`
	DocumentNumber string `json:"documentNumber"`
	Address        string `json:"address"`
	DocumentType   string `json:"documentType"`
}

// Validate normalizes the document type and rejects incomplete submissions
// before anything reaches the pipeline.
func (r *VerifyRequest) Validate() error {
	rec, err := r.Record()
	if err != nil {
		return err
	}
	return rec.Validate()
}

// Record converts the request into the immutable domain record.
func (r *VerifyRequest) Record() (verification.IdentityRecord, error) {
	docType, err := verification.ParseDocumentType(r.DocumentType)
	if err != nil {
		return verification.IdentityRecord{}, err
	}
	return verification.IdentityRecord{
		Name:           r.Name,
		DocumentNumber: r.DocumentNumber,
		Address:        r.Address,
		DocumentType:   docType,
	}, nil
}

// VerifyResponse mirrors the public verification result shape.
type VerifyResponse struct {
	ID               string               `json:"id"`
	Timestamp        string               `json:"timestamp"`
	Name             string               `json:"name"`
	DocumentNumber   string               `json:"documentNumber"`
	FraudProbability float64              `json:"fraudProbability"`
	RiskLevel        string               `json:"riskLevel"`
	Confidence       float64              `json:"confidence"`
	Status           string               `json:"status"`
	Details          verification.Details `json:"details"`
	Message          string               `json:"message"`
}

// FromResult renders a domain result for transport.
func FromResult(res *verification.VerificationResult) VerifyResponse {
	return VerifyResponse{
		ID:               res.ID,
		Timestamp:        res.Timestamp.Format(time.RFC3339),
		Name:             res.Record.Name,
		DocumentNumber:   res.Record.DocumentNumber,
		FraudProbability: res.Score.FraudProbability,
		RiskLevel:        string(res.Score.RiskLevel),
		Confidence:       res.Score.Confidence,
		Status:           string(res.Score.Status),
		Details:          res.Details,
		Message:          "KYC processed successfully.",
	}
}

// BatchRowResponse is one per-row outcome, tagged with the original row
// position; Error is set only on failed rows.
type BatchRowResponse struct {
	Row    int             `json:"row"`
	Result *VerifyResponse `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// BatchResponse aggregates a batch run.
type BatchResponse struct {
	Total      int                `json:"total"`
	Successful int                `json:"successful"`
	Failed     int                `json:"failed"`
	Results    []BatchRowResponse `json:"results"`
}

// FromBatch renders a batch summary for transport.
func FromBatch(summary verification.BatchSummary) BatchResponse {
	resp := BatchResponse{
		Total:      summary.Total,
		Successful: summary.Successful,
		Failed:     summary.Failed,
		Results:    make([]BatchRowResponse, 0, len(summary.Outcomes)),
	}
	for _, o := range summary.Outcomes {
		row := BatchRowResponse{Row: o.Row, Error: o.Err}
		if o.Result != nil {
			r := FromResult(o.Result)
			row.Result = &r
		}
		resp.Results = append(resp.Results, row)
	}
	return resp
}
