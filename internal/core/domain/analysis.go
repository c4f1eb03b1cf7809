package domain

import (
	"strings"
	"time"
)

// RiskType categorises a detected contract risk.
type RiskType string

// Risk categories the analyzer detects.
const (
	RiskTermination       RiskType = "termination_rights"
	RiskIndemnity         RiskType = "indemnity"
	RiskPenalty           RiskType = "penalty"
	RiskLiabilityCap      RiskType = "liability_cap"
	RiskPaymentTerms      RiskType = "payment_terms"
	RiskIP                RiskType = "intellectual_property"
	RiskConfidentiality   RiskType = "confidentiality"
	RiskWarranty          RiskType = "warranty"
	RiskForceMajeure      RiskType = "force_majeure"
	RiskDisputeResolution RiskType = "dispute_resolution"
)

// riskTypes is the closed set of valid categories.
var riskTypes = map[RiskType]bool{
	RiskTermination:       true,
	RiskIndemnity:         true,
	RiskPenalty:           true,
	RiskLiabilityCap:      true,
	RiskPaymentTerms:      true,
	RiskIP:                true,
	RiskConfidentiality:   true,
	RiskWarranty:          true,
	RiskForceMajeure:      true,
	RiskDisputeResolution: true,
}

// ParseRiskType normalises a model-supplied risk category.
// Matching is case-insensitive; anything outside the defined set is
// rejected rather than coerced.
func ParseRiskType(s string) (RiskType, bool) {
	t := RiskType(strings.ToLower(strings.TrimSpace(s)))
	if !riskTypes[t] {
		return "", false
	}
	return t, true
}

// RiskLevel is the assessed severity of a risk.
type RiskLevel string

// Severity levels, ordered low to high.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ParseRiskLevel normalises a model-supplied severity label.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch RiskLevel(strings.ToLower(strings.TrimSpace(s))) {
	case RiskLow:
		return RiskLow, true
	case RiskMedium:
		return RiskMedium, true
	case RiskHigh:
		return RiskHigh, true
	default:
		return "", false
	}
}

// RiskAssessment is one detected risk in a contract, optionally linked
// to the specific clause it was found in.
type RiskAssessment struct {
	// ID is the stable database identifier.
	ID int64

	// ContractID links to the assessed contract.
	ContractID ContractID

	// ClauseID links to the clause the risk was matched to, when the
	// model's clause reference resolved. Nil for contract-level risks.
	ClauseID *ClauseID

	// ClauseReference is the model's raw clause reference string.
	ClauseReference string

	// Type is the risk category.
	Type RiskType

	// Level is the assessed severity.
	Level RiskLevel

	// Description explains the specific risk identified.
	Description string

	// Justification is the reasoning for the severity assessment.
	Justification string

	// Recommendation is the suggested mitigation. May be empty.
	Recommendation string

	// AssessedAt is when the assessment was stored.
	AssessedAt time.Time
}

// SummaryRole is the stakeholder perspective a summary is written for.
type SummaryRole string

// Supported summary perspectives. Neutral is the default.
const (
	RoleSupplier SummaryRole = "supplier"
	RoleClient   SummaryRole = "client"
	RoleNeutral  SummaryRole = "neutral"
)

// ParseSummaryRole normalises a caller-supplied role. An empty string
// means neutral; anything else outside the allowed set is rejected.
func ParseSummaryRole(s string) (SummaryRole, bool) {
	switch SummaryRole(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleNeutral:
		return RoleNeutral, true
	case RoleSupplier:
		return RoleSupplier, true
	case RoleClient:
		return RoleClient, true
	default:
		return "", false
	}
}

// Summary types.
const (
	SummaryOverview     = "contract_overview"
	SummaryRoleSpecific = "role_specific"
)

// SummaryContent is the validated structured body of a summary. Its
// JSON shape doubles as the persisted representation.
type SummaryContent struct {
	// Summary is the main plain-language summary. Never empty after
	// validation.
	Summary string `json:"summary"`

	// KeyPoints lists the most important points, in order of
	// significance. At least three after validation.
	KeyPoints []string `json:"key_points"`

	// Parties describes who is contracting with whom.
	Parties string `json:"parties,omitempty"`

	// KeyDates lists important dates, deadlines and time periods.
	KeyDates []string `json:"key_dates,omitempty"`

	// FinancialTerms summarises payment terms and amounts.
	FinancialTerms string `json:"financial_terms,omitempty"`

	// Obligations maps party ("supplier"/"client") to its obligations.
	Obligations map[string][]string `json:"obligations,omitempty"`

	// Rights maps party to its rights and protections.
	Rights map[string][]string `json:"rights,omitempty"`

	// Termination explains how the contract can be ended.
	Termination string `json:"termination,omitempty"`

	// Risks is a brief overview of the top concerns.
	Risks []string `json:"risks,omitempty"`

	// Confidence is the model's self-assessed summary quality.
	Confidence string `json:"confidence,omitempty"`
}

// ContractSummary is a persisted plain-language summary of a contract.
type ContractSummary struct {
	// ID is the stable database identifier.
	ID int64

	// ContractID links to the summarised contract.
	ContractID ContractID

	// Type is contract_overview or role_specific.
	Type string

	// Role is the perspective the summary was written for.
	Role SummaryRole

	// Content is the structured summary body.
	Content SummaryContent

	// CreatedAt is when the summary was stored.
	CreatedAt time.Time
}
