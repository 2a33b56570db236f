package pipeline

import (
	"fmt"
	"strings"
)

// Reason codes for drugs that cannot be carried through the resolution chain.
const (
	ReasonNotFoundInSource    = 1
	ReasonNotFoundInCrossRef  = 2
	ReasonNotFoundInCanonical = 3
)

// DrugUnresolvableError marks a drug as expected-but-unmappable. Callers
// branch on it with errors.As to skip the combination instead of failing the
// run.
type DrugUnresolvableError struct {
	DrugName string
	Code     int
}

func (e *DrugUnresolvableError) Error() string {
	msg := fmt.Sprintf("drug %q could not be resolved", e.DrugName)
	if reason := e.Reason(); reason != "" {
		msg += ": " + reason
	}
	return msg
}

func (e *DrugUnresolvableError) Reason() string {
	switch e.Code {
	case ReasonNotFoundInSource:
		return "not found in DrugCombDB, despite being in a combination"
	case ReasonNotFoundInCrossRef:
		return "no ChEMBL mapping in UniChem"
	case ReasonNotFoundInCanonical:
		return "not found in ChEMBL, despite being mapped in UniChem"
	default:
		return ""
	}
}

// CellLineUnresolvableError is the cell line counterpart.
type CellLineUnresolvableError struct {
	CellLineName string
	Reason       string
}

func (e *CellLineUnresolvableError) Error() string {
	msg := fmt.Sprintf("cell line %q could not be resolved", e.CellLineName)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// NormalizeDrugName strips the "(approved)" marker DrugCombDB embeds in some
// drug names.
func NormalizeDrugName(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, "(approved)", ""))
}
