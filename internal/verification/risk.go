package verification

import "fmt"

// Risk tier thresholds on the probability expressed as a percentage.
// Boundary values 33.00 and 67.00 are Medium: the Medium range is inclusive
// on both ends.
const (
	lowUpperBound  = 33.0
	highLowerBound = 67.0
)

// Classify maps a raw probability in [0,1] to a RiskScore. The tier is a
// pure function of the probability and the status a pure function of the
// tier, so the same probability always yields the same judgment.
func Classify(probability float64) RiskScore {
	p := clampPercent(probability * 100)

	var level RiskLevel
	switch {
	case p < lowUpperBound:
		level = RiskLow
	case p <= highLowerBound:
		level = RiskMedium
	default:
		level = RiskHigh
	}

	return RiskScore{
		FraudProbability: p,
		RiskLevel:        level,
		Confidence:       clampPercent(100 - p),
		Status:           StatusFor(level),
	}
}

// DeriveDetails builds the display sub-record for a scored record.
func DeriveDetails(score RiskScore, rec IdentityRecord) Details {
	authenticity := "Valid"
	if score.RiskLevel == RiskHigh {
		authenticity = "Suspicious"
	}
	addressCheck := "Pending"
	if len(rec.Address) > 10 {
		addressCheck = "Verified"
	}
	return Details{
		DocumentAuthenticity: authenticity,
		AddressVerification:  addressCheck,
		AnomalyScore:         fmt.Sprintf("%.2f", score.FraudProbability),
	}
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
