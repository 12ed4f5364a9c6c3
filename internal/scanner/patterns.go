package scanner

import "regexp"

// apiCallPatterns are the sensitive-API signatures collected from source
// entries. Every distinct matched substring becomes one api-call finding.
var apiCallPatterns = []*regexp.Regexp{
	// Extension namespaces: the match stops at the namespace so
	// chrome.cookies.get and chrome.cookies.remove collapse into one finding.
	regexp.MustCompile(`chrome\.[a-zA-Z]+`),
	regexp.MustCompile(`browser\.[a-zA-Z]+`),

	// Dynamic execution primitives.
	regexp.MustCompile(`\beval\s*\(`),
	regexp.MustCompile(`new\s+Function\s*\(`),
	regexp.MustCompile(`document\.write\s*\(`),
	regexp.MustCompile(`setTimeout\s*\(\s*["']`),
	regexp.MustCompile(`setInterval\s*\(\s*["']`),
	regexp.MustCompile(`executeScript`),

	// Network primitives.
	regexp.MustCompile(`\bfetch\s*\(`),
	regexp.MustCompile(`XMLHttpRequest`),
	regexp.MustCompile(`new\s+WebSocket\s*\(`),
	regexp.MustCompile(`navigator\.sendBeacon`),

	// Storage primitives.
	regexp.MustCompile(`localStorage`),
	regexp.MustCompile(`sessionStorage`),
	regexp.MustCompile(`indexedDB`),

	// Messaging primitives.
	regexp.MustCompile(`postMessage\s*\(`),
	regexp.MustCompile(`sendMessage\s*\(`),
	regexp.MustCompile(`onMessage\.addListener`),
}

// secretPatterns flag credential-shaped assignments and known vendor key
// formats. A match records a per-file marker, never the secret itself.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:api[_-]?key|apikey|secret|token|passwd|password|auth)["']?\s*[:=]\s*["'][A-Za-z0-9_\-]{16,}["']`),
	regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`),        // Google API key
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),              // AWS access key ID
	regexp.MustCompile(`sk_live_[0-9a-zA-Z]{24,}`),      // Stripe live key
	regexp.MustCompile(`ghp_[0-9A-Za-z]{36}`),           // GitHub token
	regexp.MustCompile(`xox[baprs]-[0-9A-Za-z\-]{10,}`), // Slack token
	regexp.MustCompile(`-----BEGIN (?:RSA |EC |DSA |OPENSSH )?PRIVATE KEY-----`),
}

// dependencyFilePattern fingerprints bundled third-party libraries by
// their conventional file names, optionally versioned or minified
// (jquery-3.4.1.min.js, lodash.min.js, vue.js, ...).
var dependencyFilePattern = regexp.MustCompile(`(?i)^(jquery|react|vue|angular|lodash|moment|bootstrap)(?:[.-][0-9A-Za-z.]+)?\.js$`)

// Obfuscation markers: the banner every javascript-obfuscator build
// carries, and the hex-named string array it emits.
var obfuscatorArrayPattern = regexp.MustCompile(`_0x[0-9a-fA-F]{4,6}\s*=\s*\[`)

const obfuscatorBanner = "javascript-obfuscator"

// identifierPattern tokenizes JavaScript identifiers for the
// suspicious-name heuristic.
var identifierPattern = regexp.MustCompile(`[a-zA-Z_$][a-zA-Z0-9_$]*`)

// suspiciousIdentifierPattern matches the renamed-identifier shape hex
// obfuscators produce.
var suspiciousIdentifierPattern = regexp.MustCompile(`^_0x[0-9a-fA-F]+`)
