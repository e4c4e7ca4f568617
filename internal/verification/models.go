package verification

import (
	"strings"
	"time"

	"kycgate/pkg/derrors"
)

// DocumentType is the closed set of accepted identity document types. The
// numeric codes feed the feature vector and must match what the classifier
// was trained against.
type DocumentType string

const (
	DocumentAadhar  DocumentType = "AADHAR"
	DocumentPan     DocumentType = "PAN"
	DocumentUtility DocumentType = "UTILITY"
)

// Code returns the fixed type code used during training: AADHAR=0, PAN=1,
// UTILITY=2.
func (d DocumentType) Code() float64 {
	switch d {
	case DocumentAadhar:
		return 0
	case DocumentPan:
		return 1
	case DocumentUtility:
		return 2
	}
	return -1
}

// ParseDocumentType validates and normalizes a raw document type string.
func ParseDocumentType(raw string) (DocumentType, error) {
	switch DocumentType(strings.ToUpper(strings.TrimSpace(raw))) {
	case DocumentAadhar:
		return DocumentAadhar, nil
	case DocumentPan:
		return DocumentPan, nil
	case DocumentUtility:
		return DocumentUtility, nil
	}
	return "", derrors.Newf(derrors.CodeValidation, "unrecognized document type %q", raw)
}

// IdentityRecord is a single identity-verification submission. Immutable
// once received.
type IdentityRecord struct {
	Name           string       `json:"name"`
	DocumentNumber string       `json:"documentNumber"`
	Address        string       `json:"address"`
	DocumentType   DocumentType `json:"documentType"`
}

// Validate rejects records before any scoring happens. Address is optional.
func (r IdentityRecord) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return derrors.New(derrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(r.DocumentNumber) == "" {
		return derrors.New(derrors.CodeValidation, "document number is required")
	}
	if _, err := ParseDocumentType(string(r.DocumentType)); err != nil {
		return err
	}
	return nil
}

// RiskLevel is the discrete risk tier derived from the fraud probability.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Status is the verified/flagged outcome. It is a pure function of the risk
// level: only High flags a record.
type Status string

const (
	StatusVerified Status = "Verified"
	StatusFlagged  Status = "Flagged"
)

// StatusFor maps a risk level to its status.
func StatusFor(level RiskLevel) Status {
	if level == RiskHigh {
		return StatusFlagged
	}
	return StatusVerified
}

// RiskScore is the scored judgment for one record. FraudProbability and
// Confidence are percentages in [0,100].
type RiskScore struct {
	FraudProbability float64
	RiskLevel        RiskLevel
	Confidence       float64
	Status           Status
}

// Details carries the display sub-record derived from the score.
type Details struct {
	DocumentAuthenticity string `json:"documentAuthenticity"`
	AddressVerification  string `json:"addressVerification"`
	AnomalyScore         string `json:"anomalyScore"`
}

// VerificationResult is created once per scored record and never mutated.
type VerificationResult struct {
	ID        string
	Timestamp time.Time
	Record    IdentityRecord
	Score     RiskScore
	Details   Details
}

// RowOutcome is one batch row's result-or-error, tagged with the original
// 1-based row position.
type RowOutcome struct {
	Row    int
	Result *VerificationResult
	Err    string
}

// BatchSummary aggregates a batch run. Successful+Failed always equals Total.
type BatchSummary struct {
	Total      int
	Successful int
	Failed     int
	Outcomes   []RowOutcome
}
