// Package scanner walks an extension archive's text-bearing entries once,
// collecting sensitive API usage, secret indicators, bundled third-party
// libraries, and obfuscation signals.
package scanner

import (
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/crxaudit/crxaudit-cli/internal/crx"
	"github.com/crxaudit/crxaudit-cli/internal/shared/constants"
)

// Report aggregates everything one scan pass extracted. The string
// slices are deduplicated and sorted so two scans of the same archive
// compare equal regardless of worker scheduling.
type Report struct {
	APICalls         []string `json:"api_calls"`
	Secrets          []string `json:"secrets"`
	Dependencies     []string `json:"dependencies"`
	IsObfuscated     bool     `json:"is_obfuscated"`
	ObfuscationScore int      `json:"obfuscation_score"`
}

var scannableSuffixes = []string{".js", ".html", ".json"}

func scannable(entry string) bool {
	lower := strings.ToLower(entry)
	for _, suffix := range scannableSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// entryFindings is what scanning a single entry yields before merging.
type entryFindings struct {
	apiCalls   []string
	secret     bool
	dependency string
	js         bool
	signals    jsSignals
}

// Scan reads every .js/.html/.json entry once, through a bounded worker
// pool, and merges the per-entry findings into one Report. Entries that
// fail to read are skipped; scanning itself never fails.
func Scan(ar crx.Archive) Report {
	sem := make(chan struct{}, constants.ScanConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	apiSet := make(map[string]struct{})
	secretSet := make(map[string]struct{})
	depSet := make(map[string]struct{})

	jsFiles := 0
	entropySum := 0.0
	longLineFiles := 0
	suspiciousFiles := 0
	marker := false

	for _, entry := range ar.Entries() {
		if !scannable(entry) {
			continue
		}

		wg.Add(1)
		go func(entry string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			content, err := ar.ReadText(entry)
			if err != nil {
				return
			}
			found := scanEntry(entry, content)

			mu.Lock()
			defer mu.Unlock()

			for _, call := range found.apiCalls {
				apiSet[call] = struct{}{}
			}
			if found.secret {
				secretSet["potential secret found in "+entry] = struct{}{}
			}
			if found.dependency != "" {
				depSet[found.dependency] = struct{}{}
			}
			if found.js {
				jsFiles++
				entropySum += found.signals.entropy
				if found.signals.longLines {
					longLineFiles++
				}
				if found.signals.suspiciousIDs {
					suspiciousFiles++
				}
				if found.signals.marker {
					marker = true
				}
			}
		}(entry)
	}
	wg.Wait()

	obfuscated, score := obfuscationVerdict(jsFiles, entropySum, longLineFiles, suspiciousFiles, marker)

	return Report{
		APICalls:         sortedSet(apiSet),
		Secrets:          sortedSet(secretSet),
		Dependencies:     sortedSet(depSet),
		IsObfuscated:     obfuscated,
		ObfuscationScore: score,
	}
}

func scanEntry(entry, content string) entryFindings {
	found := entryFindings{}

	for _, pattern := range apiCallPatterns {
		for _, match := range pattern.FindAllString(content, -1) {
			found.apiCalls = append(found.apiCalls, strings.TrimSpace(match))
		}
	}

	for _, pattern := range secretPatterns {
		if pattern.MatchString(content) {
			found.secret = true
			break
		}
	}

	if base := path.Base(entry); dependencyFilePattern.MatchString(base) {
		found.dependency = base
	}

	if strings.HasSuffix(strings.ToLower(entry), ".js") {
		found.js = true
		found.signals = analyzeJS(content)
	}
	return found
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
