package model

import "time"

// ScanType selects how much of the risk surface a single analysis covers.
type ScanType string

const (
	// ScanQuick covers the five critical factors only.
	ScanQuick ScanType = "quick"
	// ScanFull covers all fourteen factors plus compliance and recommendations.
	ScanFull ScanType = "full"
)

func (t ScanType) Valid() bool {
	return t == ScanQuick || t == ScanFull
}

// Provider selects the intelligence backend used for analysis.
type Provider string

const (
	// ProviderGemini is the hosted, live-search-grounded backend.
	ProviderGemini Provider = "gemini"
	// ProviderOllama is the offline, locally served backend.
	ProviderOllama Provider = "ollama"
)

type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// RiskFactor is a single scored dimension of a vendor's risk surface.
// Score runs 0-100 where 100 is the lowest risk.
type RiskFactor struct {
	Name       string   `json:"name"`
	Score      float64  `json:"score"`
	Summary    string   `json:"summary"`
	References []string `json:"references,omitempty"`
}

// ComplianceInfo is only produced by full scans. URL fields hold either an
// absolute URL or the sentinel "Not Found".
type ComplianceInfo struct {
	PrivacyPolicyURL string   `json:"privacyPolicyUrl,omitempty"`
	DPAURL           string   `json:"dpaUrl,omitempty"`
	Certifications   []string `json:"certifications,omitempty"`
	Laws             []string `json:"laws,omitempty"`
}

type ContractAnalysisResult struct {
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	OverallAssessment string   `json:"overallAssessment"`
}

// AnalysisResult is the canonical, validated form of a backend response.
// OverallScore is always computed locally, never backend-supplied.
type AnalysisResult struct {
	VendorName           string          `json:"vendorName"`
	OverallScore         float64         `json:"overallScore"`
	SecurityPostureScore float64         `json:"securityPostureScore"`
	ThreatExposureScore  float64         `json:"threatExposureScore"`
	Summary              string          `json:"summary"`
	RiskFactors          []RiskFactor    `json:"riskFactors"`
	Compliance           *ComplianceInfo `json:"compliance,omitempty"`
	Recommendations      []string        `json:"recommendations,omitempty"`
}

// Source is a grounding citation. The offline backend never produces any.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Report is the persisted unit of analysis, owned by one user.
// Timestamp is the creation instant in milliseconds.
type Report struct {
	ID               int64                   `json:"id"`
	UserID           int64                   `json:"userId"`
	Domain           string                  `json:"domain"`
	VendorName       string                  `json:"vendorName"`
	Result           AnalysisResult          `json:"result"`
	Sources          []Source                `json:"sources"`
	Timestamp        int64                   `json:"timestamp"`
	ScanType         ScanType                `json:"scanType"`
	ContractAnalysis *ContractAnalysisResult `json:"contractAnalysis,omitempty"`
}

// Time returns the report's creation instant.
func (r *Report) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// VendorKey is the vendor identity used for per-vendor grouping, falling
// back to the domain when no vendor name was recorded.
func (r *Report) VendorKey() string {
	if r.VendorName != "" {
		return r.VendorName
	}
	return r.Domain
}

// Settings is per-user analysis configuration. The weights need not sum
// to 100; they are normalized at scoring time.
type Settings struct {
	Provider       Provider `json:"provider"`
	OllamaModel    string   `json:"ollamaModel"`
	OllamaURL      string   `json:"ollamaUrl"`
	PostureWeight  float64  `json:"postureWeight"`
	ExposureWeight float64  `json:"exposureWeight"`
}
