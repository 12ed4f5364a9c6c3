// Package scoring turns classified findings into the final numeric risk
// and reputation scores.
package scoring

import (
	"fmt"
	"math"

	"github.com/crxaudit/crxaudit-cli/internal/permissions"
	"github.com/crxaudit/crxaudit-cli/internal/risk"
	"github.com/crxaudit/crxaudit-cli/internal/vulndb"
)

// Per-tier weights for the permission term.
var permissionWeights = map[risk.Tier]float64{
	risk.Critical: 10,
	risk.High:     5,
	risk.Medium:   2,
	risk.Low:      0.5,
}

const (
	permissionTermCap = 40
	cveCountTermCap   = 20
	cvssTermCap       = 25
	cvePointsPerMatch = 4
	manifestV2Penalty = 5
)

// RiskAssessment is the combined, auditable score. Every term in
// Equation can be recomputed from the inputs by hand.
type RiskAssessment struct {
	Score    int       `json:"score"`
	Level    risk.Tier `json:"level"`
	Equation string    `json:"equation"`
}

// CalculateRisk combines permission findings, matched vulnerabilities,
// the manifest version, and the obfuscation score into a 0-100 risk
// score with an explanatory equation.
func CalculateRisk(findings []permissions.Finding, vulns []vulndb.Vulnerability, manifestVersion, obfuscationScore int) RiskAssessment {
	permTerm := 0.0
	for _, f := range findings {
		permTerm += permissionWeights[f.Risk]
	}
	permTerm = math.Min(permissionTermCap, permTerm)

	cveTerm := math.Min(cveCountTermCap, float64(cvePointsPerMatch*len(vulns)))

	highestCVSS := 0.0
	for _, v := range vulns {
		if v.Score > highestCVSS {
			highestCVSS = v.Score
		}
	}
	cvssTerm := 0.0
	if highestCVSS > 0 {
		cvssTerm = cvssTermCap * math.Log10(highestCVSS+1) / math.Log10(11)
	}

	mvTerm := 0.0
	if manifestVersion == 2 {
		mvTerm = manifestV2Penalty
	}

	obfTerm := float64(obfuscationScore)

	total := int(math.Round(math.Min(100, permTerm+cveTerm+cvssTerm+mvTerm+obfTerm)))

	equation := fmt.Sprintf("Risk = Permissions(%d) + CVEs(%d) + CVSS(%d) + MV%d(%d) + Obf(%d)",
		int(math.Round(permTerm)),
		int(math.Round(cveTerm)),
		int(math.Round(cvssTerm)),
		manifestVersion,
		int(math.Round(mvTerm)),
		int(math.Round(obfTerm)),
	)

	return RiskAssessment{
		Score:    total,
		Level:    risk.LevelFor(total),
		Equation: equation,
	}
}
