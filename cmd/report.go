package cmd

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/crxaudit/crxaudit-cli/internal/analyzer"
	"github.com/crxaudit/crxaudit-cli/internal/risk"
	"github.com/crxaudit/crxaudit-cli/internal/shared/constants"
	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/cobra"
)

const (
	htmlTemplatePath     = "templates/report.html"
	markdownTemplatePath = "templates/report.md"
)

//go:embed templates/report.html templates/report.md
var reportTemplateFS embed.FS

var reportTemplateFuncs = template.FuncMap{
	"riskBadgeClass": riskBadgeClass,
	"tierTitle":      tierTitle,
}

var (
	htmlReportTemplate = template.Must(
		template.New("report.html").Funcs(reportTemplateFuncs).ParseFS(reportTemplateFS, htmlTemplatePath),
	)
	markdownReportTemplate = template.Must(
		template.New("report.md").Funcs(reportTemplateFuncs).ParseFS(reportTemplateFS, markdownTemplatePath),
	)
)

var reportCmd = &cobra.Command{
	Use:   "report <analysis.json>",
	Short: "Render a saved analysis as markdown, HTML or PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		format = strings.ToLower(format)
		if format != "md" && format != "html" && format != "pdf" {
			return fmt.Errorf("invalid format: %s (must be md, html, or pdf)", format)
		}

		result, err := loadSavedAnalysis(args[0])
		if err != nil {
			return err
		}

		var content []byte
		switch format {
		case "md":
			content, err = renderTemplateReport(markdownReportTemplate, result)
		case "html":
			content, err = renderTemplateReport(htmlReportTemplate, result)
		case "pdf":
			content, err = generatePDFReportBytes(result)
		}
		if err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		reportPath := reportOutputPath(args[0], format)
		if err := os.WriteFile(reportPath, content, constants.DefaultFilePerm); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}

		fmt.Printf("Report generated: %s\n", reportPath)
		fmt.Printf("Format: %s\n", format)
		fmt.Printf("Risk: %d/100 [%s]\n", result.RiskScore, formatRiskLevel(result.RiskLevel.String()))
		return nil
	},
}

func init() {
	reportCmd.Flags().String("format", "md", "report format (md|html|pdf)")
}

// loadSavedAnalysis reads a persisted result and, when the sha256 sidecar
// exists, verifies the file has not been altered since it was written.
func loadSavedAnalysis(path string) (*analyzer.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis: %w", err)
	}

	if sidecar, err := os.ReadFile(path + ".sha256"); err == nil {
		want := strings.Fields(string(sidecar))
		sum := sha256.Sum256(data)
		if len(want) == 0 || want[0] != hex.EncodeToString(sum[:]) {
			return nil, fmt.Errorf("analysis file %s does not match its sha256 sidecar", path)
		}
	}

	var result analyzer.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}
	return &result, nil
}

// reportOutputPath places the report next to its source analysis file.
func reportOutputPath(analysisPath, format string) string {
	base := strings.TrimSuffix(filepath.Base(analysisPath), ".json")
	base = strings.TrimSuffix(base, "_analysis")
	return filepath.Join(filepath.Dir(analysisPath), base+"_report."+format)
}

func renderTemplateReport(tmpl *template.Template, result *analyzer.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func riskBadgeClass(level string) string {
	return "badge-" + strings.ToLower(level)
}

// tierTitle renders a tier name in the report's prose register
// (Medium, not medium).
func tierTitle(t risk.Tier) string {
	name := t.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

func generatePDFReportBytes(result *analyzer.Result) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, fmt.Sprintf("Extension Risk Report: %s", result.Name), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Metadata section
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Version: %s", result.Version), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Manifest version: %d", result.ManifestVersion), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Analyzed: %s", result.AnalyzedAt.Format("2006-01-02 15:04:05 MST")), "", 1, "", false, 0, "")
	pdf.Ln(5)

	// Risk section
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Risk Assessment", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Score: %d/100 (%s)", result.RiskScore, tierTitle(result.RiskLevel)), "", 1, "", false, 0, "")
	pdf.CellFormat(0, 6, result.RiskEquation, "", 1, "", false, 0, "")
	if result.IsObfuscated {
		pdf.CellFormat(0, 6, "Bundled code appears deliberately obfuscated.", "", 1, "", false, 0, "")
	}
	if result.ReputationScore != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Store reputation: %d/100", *result.ReputationScore), "", 1, "", false, 0, "")
	}
	pdf.Ln(5)

	// Permissions section
	if len(result.Permissions) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Permissions", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, f := range result.Permissions {
			pdf.MultiCell(0, 5, fmt.Sprintf("[%s] %s - %s", tierTitle(f.Risk), f.Permission, f.Description), "", "", false)
		}
		pdf.Ln(3)
	}

	// Vulnerabilities section
	if len(result.Vulnerabilities) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Known Vulnerabilities", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, v := range result.Vulnerabilities {
			pdf.MultiCell(0, 5, fmt.Sprintf("[%s] %s (CVSS %.1f) - %s", tierTitle(v.Severity), v.ID, v.Score, v.Description), "", "", false)
		}
		pdf.Ln(3)
	}

	// Secrets section
	if len(result.Secrets) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Secrets", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		for _, s := range result.Secrets {
			pdf.MultiCell(0, 5, s, "", "", false)
		}
		pdf.Ln(3)
	}

	// API usage section
	if len(result.APICalls) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, "Sensitive API Usage", "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, strings.Join(result.APICalls, ", "), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
