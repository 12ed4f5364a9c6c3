package scanner

import (
	"math"
	"strings"
)

// Shared thresholds for the per-file obfuscation heuristics.
const (
	longLineChars       = 500
	longLineFileRatio   = 0.1
	minIdentifiers      = 100
	suspiciousNameRatio = 0.3
	avgEntropySignal    = 5.5
	flaggedFilesSignal  = 0.2
)

// Entropy returns the base-2 Shannon entropy of the content's byte
// frequency distribution. A single repeated character yields exactly 0.
func Entropy(content string) float64 {
	if len(content) == 0 {
		return 0
	}

	var counts [256]int
	for i := 0; i < len(content); i++ {
		counts[content[i]]++
	}

	total := float64(len(content))
	entropy := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// jsSignals are the per-file obfuscation measurements taken from one
// JavaScript entry.
type jsSignals struct {
	entropy       float64
	longLines     bool
	suspiciousIDs bool
	marker        bool
}

func analyzeJS(content string) jsSignals {
	return jsSignals{
		entropy:       Entropy(content),
		longLines:     hasLongLines(content),
		suspiciousIDs: hasSuspiciousIdentifiers(content),
		marker:        hasObfuscatorMarker(content),
	}
}

func hasLongLines(content string) bool {
	lines := strings.Split(content, "\n")
	long := 0
	for _, line := range lines {
		if len(line) > longLineChars {
			long++
		}
	}
	return float64(long)/float64(len(lines)) > longLineFileRatio
}

// hasSuspiciousIdentifiers flags a file when, among more than 100
// identifiers, over 30% are single characters or hex-renamed (_0x...).
func hasSuspiciousIdentifiers(content string) bool {
	identifiers := identifierPattern.FindAllString(content, -1)
	if len(identifiers) <= minIdentifiers {
		return false
	}

	suspicious := 0
	for _, id := range identifiers {
		if len(id) == 1 || suspiciousIdentifierPattern.MatchString(id) {
			suspicious++
		}
	}
	return float64(suspicious)/float64(len(identifiers)) > suspiciousNameRatio
}

func hasObfuscatorMarker(content string) bool {
	return strings.Contains(content, obfuscatorBanner) || obfuscatorArrayPattern.MatchString(content)
}

// obfuscationVerdict folds the accumulated per-file signals into the
// archive-wide obfuscation flag and score. The known-marker case and the
// two-or-more-signals case deliberately score the same 10 points.
func obfuscationVerdict(jsFiles int, entropySum float64, longLineFiles, suspiciousFiles int, marker bool) (bool, int) {
	if jsFiles == 0 && !marker {
		return false, 0
	}

	signals := 0
	if jsFiles > 0 {
		if entropySum/float64(jsFiles) > avgEntropySignal {
			signals++
		}
		if float64(longLineFiles)/float64(jsFiles) > flaggedFilesSignal {
			signals++
		}
		if float64(suspiciousFiles)/float64(jsFiles) > flaggedFilesSignal {
			signals++
		}
	}

	obfuscated := marker || signals >= 2

	score := 0
	switch {
	case marker:
		score = 10
	case signals >= 2:
		score = 10
	case signals == 1:
		score = 5
	}
	return obfuscated, score
}
