package verification

import (
	"regexp"
	"strings"
	"unicode"
)

// FeatureWidth is the fixed width of the raw feature vector. The classifier
// artifact is trained against exactly this encoding; changing the order or
// count here desynchronizes training and inference.
const FeatureWidth = 8

// FeatureVector is the fixed-order numeric encoding of an IdentityRecord:
//
//	0: name length
//	1: document-number length
//	2: address length
//	3: address word count
//	4: document-type code (AADHAR=0, PAN=1, UTILITY=2)
//	5: document-number well-formedness flag for the declared type
//	6: name uppercase-character count
//	7: name digit count
type FeatureVector []float64

// DocumentRule checks whether a document number is well formed for its type.
// Rules are intentionally shallow: the flag is a model feature, not a
// validation gate.
type DocumentRule interface {
	WellFormed(number string) bool
}

var documentRules = map[DocumentType]DocumentRule{
	DocumentAadhar:  digitsRule{length: 12},
	DocumentPan:     patternRule{re: regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)},
	DocumentUtility: minLengthRule{min: 6},
}

type digitsRule struct{ length int }

func (r digitsRule) WellFormed(number string) bool {
	if len(number) != r.length {
		return false
	}
	for _, c := range number {
		if !unicode.IsDigit(c) {
			return false
		}
	}
	return true
}

type patternRule struct{ re *regexp.Regexp }

func (r patternRule) WellFormed(number string) bool {
	return r.re.MatchString(number)
}

type minLengthRule struct{ min int }

func (r minLengthRule) WellFormed(number string) bool {
	return len(strings.ReplaceAll(number, " ", "")) >= r.min
}

// Extract turns a record into its feature vector. Pure and total: malformed
// fields degrade to conservative values (empty address scores 0 words)
// instead of failing. Unrecognized document types never reach this point;
// validation rejects them first.
func Extract(rec IdentityRecord) FeatureVector {
	wellFormed := 0.0
	if rule, ok := documentRules[rec.DocumentType]; ok && rule.WellFormed(rec.DocumentNumber) {
		wellFormed = 1.0
	}

	var upperCount, digitCount float64
	for _, c := range rec.Name {
		if unicode.IsUpper(c) {
			upperCount++
		}
		if unicode.IsDigit(c) {
			digitCount++
		}
	}

	return FeatureVector{
		float64(len(rec.Name)),
		float64(len(rec.DocumentNumber)),
		float64(len(rec.Address)),
		float64(len(strings.Fields(rec.Address))),
		rec.DocumentType.Code(),
		wellFormed,
		upperCount,
		digitCount,
	}
}
