// Package vulndb maps fingerprinted third-party libraries to a small
// curated table of known vulnerabilities.
package vulndb

import (
	"strings"

	"github.com/crxaudit/crxaudit-cli/internal/risk"
)

// Vulnerability is one known CVE matched against a bundled library.
type Vulnerability struct {
	ID          string    `json:"id"`
	Severity    risk.Tier `json:"severity"`
	Description string    `json:"description"`
	Score       float64   `json:"score,omitempty"` // CVSS, 0 when unknown
}

type libraryRule struct {
	Substring string
	Vuln      Vulnerability
}

// knownVulnerabilities is the static matching table. Keys match
// case-insensitively against dependency file names.
var knownVulnerabilities = []libraryRule{
	{
		Substring: "jquery",
		Vuln: Vulnerability{
			ID:          "CVE-2020-11022",
			Severity:    risk.Medium,
			Description: "jQuery before 3.5.0 allows XSS via HTML containing <option> elements passed to jQuery's DOM manipulation methods.",
			Score:       6.1,
		},
	},
	{
		Substring: "lodash",
		Vuln: Vulnerability{
			ID:          "CVE-2020-8203",
			Severity:    risk.High,
			Description: "Lodash before 4.17.19 is vulnerable to prototype pollution via zipObjectDeep.",
			Score:       7.4,
		},
	},
}

// Match returns the vulnerabilities triggered by the given dependency
// file names, deduplicated by CVE ID. Order follows the table, so output
// is stable regardless of dependency order.
func Match(dependencies []string) []Vulnerability {
	var matched []Vulnerability
	seen := make(map[string]struct{})

	for _, rule := range knownVulnerabilities {
		for _, dep := range dependencies {
			if !strings.Contains(strings.ToLower(dep), rule.Substring) {
				continue
			}
			if _, dup := seen[rule.Vuln.ID]; dup {
				continue
			}
			seen[rule.Vuln.ID] = struct{}{}
			matched = append(matched, rule.Vuln)
		}
	}
	return matched
}
