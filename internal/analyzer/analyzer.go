// Package analyzer runs the full inspection pipeline over a packaged
// extension: container decode, manifest resolution, source scan,
// vulnerability matching, and scoring.
package analyzer

import (
	"time"

	"github.com/crxaudit/crxaudit-cli/internal/crx"
	"github.com/crxaudit/crxaudit-cli/internal/manifest"
	"github.com/crxaudit/crxaudit-cli/internal/permissions"
	"github.com/crxaudit/crxaudit-cli/internal/risk"
	"github.com/crxaudit/crxaudit-cli/internal/scanner"
	"github.com/crxaudit/crxaudit-cli/internal/scoring"
	"github.com/crxaudit/crxaudit-cli/internal/vulndb"
)

// Result is the immutable outcome of one analysis. Reputation fields are
// present only when the caller supplied store metadata.
type Result struct {
	Name             string                  `json:"name"`
	Version          string                  `json:"version"`
	Icon             string                  `json:"icon,omitempty"`
	ManifestVersion  int                     `json:"manifest_version"`
	Permissions      []permissions.Finding   `json:"permissions"`
	APICalls         []string                `json:"api_calls"`
	Secrets          []string                `json:"secrets"`
	Dependencies     []string                `json:"dependencies"`
	Vulnerabilities  []vulndb.Vulnerability  `json:"vulnerabilities"`
	RiskScore        int                     `json:"risk_score"`
	RiskLevel        risk.Tier               `json:"risk_level"`
	RiskEquation     string                  `json:"risk_equation"`
	IsObfuscated     bool                    `json:"is_obfuscated"`
	ObfuscationScore int                     `json:"obfuscation_score"`
	Reputation       *scoring.ReputationData `json:"reputation,omitempty"`
	ReputationScore  *int                    `json:"reputation_score,omitempty"`
	AnalyzedAt       time.Time               `json:"analyzed_at"`
}

// Analyze inspects a packaged extension (CRX or bare ZIP bytes) and
// produces a risk assessment without executing any of its code. The
// optional reputation record is scored independently and merged in.
// Analysis is all-or-nothing: on error no partial result is returned.
func Analyze(pkg []byte, rep *scoring.ReputationData) (*Result, error) {
	ar, err := crx.OpenArchive(crx.Unwrap(pkg))
	if err != nil {
		return nil, err
	}

	m, err := manifest.Resolve(ar)
	if err != nil {
		return nil, err
	}

	findings := permissions.Classify(m.Permissions, m.HostPermissions)
	scan := scanner.Scan(ar)
	vulns := vulndb.Match(scan.Dependencies)
	assessment := scoring.CalculateRisk(findings, vulns, m.ManifestVersion, scan.ObfuscationScore)

	result := &Result{
		Name:             m.Name,
		Version:          m.Version,
		Icon:             m.Icon,
		ManifestVersion:  m.ManifestVersion,
		Permissions:      findings,
		APICalls:         scan.APICalls,
		Secrets:          scan.Secrets,
		Dependencies:     scan.Dependencies,
		Vulnerabilities:  vulns,
		RiskScore:        assessment.Score,
		RiskLevel:        assessment.Level,
		RiskEquation:     assessment.Equation,
		IsObfuscated:     scan.IsObfuscated,
		ObfuscationScore: scan.ObfuscationScore,
		AnalyzedAt:       time.Now().UTC(),
	}

	if rep != nil {
		repCopy := *rep
		score := scoring.CalculateReputation(repCopy)
		result.Reputation = &repCopy
		result.ReputationScore = &score
	}
	return result, nil
}
