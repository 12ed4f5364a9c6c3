package cmd

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crxaudit/crxaudit-cli/internal/analyzer"
	"github.com/crxaudit/crxaudit-cli/internal/scoring"
	"github.com/crxaudit/crxaudit-cli/internal/shared/constants"
	"github.com/crxaudit/crxaudit-cli/internal/store"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [package-file]",
	Short: "Analyze a packaged extension from a local file or a vendor store",
	Long: `Analyze a packaged browser extension (.crx or .zip) without running it.

Provide either a local package file:
  crxaudit analyze ./extension.crx

or an extension ID to download from a vendor store:
  crxaudit analyze --id cfhdojbkjhnklbpkdaibdccddilifddb --store chrome --reputation`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		extensionID, _ := cmd.Flags().GetString("id")
		jsonOnly, _ := cmd.Flags().GetBool("json")

		storeName := stringFlagOrConfig(cmd.Flags(), "store", cliConfig.Analyze.Store)
		withReputation := boolFlagOrConfig(cmd.Flags(), "reputation", cliConfig.Analyze.FetchReputation)

		pkg, label, rep, err := loadPackage(cmd.Context(), args, extensionID, storeName, withReputation)
		if err != nil {
			return err
		}

		result, err := analyzer.Analyze(pkg, rep)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		resultsPath, resultsHash, err := saveAnalysis(resultsDir, label, result)
		if err != nil {
			return err
		}
		logger.Infow("analysis complete",
			"package", label,
			"risk_score", result.RiskScore,
			"risk_level", result.RiskLevel.String(),
			"results", resultsPath,
		)

		if jsonOnly {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
		}

		printSummary(result)
		fmt.Printf("%s %s\n", colorInfo("Results:"), resultsPath)
		fmt.Printf("%s %s\n", colorInfo("SHA-256:"), resultsHash)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("id", "", "extension ID to download from a vendor store")
	analyzeCmd.Flags().String("store", "chrome", "vendor store for --id (chrome|edge)")
	analyzeCmd.Flags().Bool("reputation", false, "also scrape store reputation metadata (requires --id)")
	analyzeCmd.Flags().Bool("json", false, "print the full result as JSON instead of a summary")
}

// loadPackage resolves the package bytes from a local file or a store
// download, plus the optional reputation record.
func loadPackage(ctx context.Context, args []string, extensionID, storeName string, withReputation bool) ([]byte, string, *scoring.ReputationData, error) {
	if len(args) == 1 && extensionID != "" {
		return nil, "", nil, fmt.Errorf("provide either a package file or --id, not both")
	}

	if len(args) == 1 {
		if withReputation {
			// Reputation metadata lives on the store detail page, so a
			// local file has nothing to scrape.
			fmt.Fprintln(os.Stderr, "Warning: --reputation requires --id; skipping reputation scrape")
		}
		pkg, err := os.ReadFile(args[0])
		if err != nil {
			return nil, "", nil, fmt.Errorf("read package file: %w", err)
		}
		return pkg, strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])), nil, nil
	}

	if extensionID == "" {
		return nil, "", nil, fmt.Errorf("a package file argument or --id is required")
	}

	st, err := store.ParseStore(storeName)
	if err != nil {
		return nil, "", nil, err
	}

	client := store.NewClient(
		time.Duration(cliConfig.Analyze.FetchTimeoutSecs)*time.Second,
		cliConfig.Analyze.StoreRateLimit,
	)

	logger.Infow("downloading package", "id", extensionID, "store", st)
	pkg, err := client.FetchCRX(ctx, st, extensionID)
	if err != nil {
		return nil, "", nil, err
	}

	var rep *scoring.ReputationData
	if withReputation {
		rep, err = client.FetchReputation(ctx, st, extensionID)
		if err != nil {
			// Reputation is an optional enrichment; its absence never
			// blocks the code-level analysis.
			logger.Warnw("reputation scrape failed", "id", extensionID, "error", err)
			rep = nil
		}
	}
	return pkg, extensionID, rep, nil
}

func printSummary(result *analyzer.Result) {
	fmt.Println(colorSuccess("Analysis complete."))
	fmt.Printf("%s %s (version %s, manifest v%d)\n", colorInfo("Extension:"), result.Name, result.Version, result.ManifestVersion)
	fmt.Printf("%s %d/100 [%s]\n", colorInfo("Risk score:"), result.RiskScore, formatRiskLevel(result.RiskLevel.String()))
	fmt.Printf("%s %s\n", colorInfo("Equation:"), result.RiskEquation)

	if len(result.Permissions) > 0 {
		fmt.Println(colorInfo("Permissions:"))
		for _, f := range result.Permissions {
			fmt.Printf("  [%s] %s - %s\n", formatRiskLevel(f.Risk.String()), f.Permission, f.Description)
		}
	}
	if len(result.Vulnerabilities) > 0 {
		fmt.Println(colorWarn("Known vulnerabilities:"))
		for _, v := range result.Vulnerabilities {
			fmt.Printf("  [%s] %s (CVSS %.1f)\n", formatRiskLevel(v.Severity.String()), v.ID, v.Score)
		}
	}
	if len(result.Secrets) > 0 {
		fmt.Println(colorError("Secrets:"))
		for _, s := range result.Secrets {
			fmt.Printf("  %s\n", s)
		}
	}
	if result.IsObfuscated {
		fmt.Println(colorError("Code appears deliberately obfuscated."))
	}
	if result.ReputationScore != nil {
		fmt.Printf("%s %d/100\n", colorInfo("Reputation score:"), *result.ReputationScore)
	}
}

// saveAnalysis persists the result JSON under the results directory with
// a SHA-256 sidecar for later integrity verification.
func saveAnalysis(dir, label string, result *analyzer.Result) (string, string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", "", err
	}

	name := sanitizeLabel(label) + "_analysis.json"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, constants.DefaultFilePerm); err != nil {
		return "", "", fmt.Errorf("write results: %w", err)
	}

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	if err := os.WriteFile(path+".sha256", []byte(digest+"  "+name+"\n"), constants.DefaultFilePerm); err != nil {
		return "", "", fmt.Errorf("write results hash: %w", err)
	}
	return path, digest, nil
}

// sanitizeLabel keeps result filenames shell- and path-safe.
func sanitizeLabel(label string) string {
	var b strings.Builder
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "package"
	}
	return b.String()
}
