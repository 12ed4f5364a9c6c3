package cmd

import (
	"strings"

	"github.com/fatih/color"
)

var (
	colorSuccess  = color.New(color.FgGreen).SprintFunc()
	colorInfo     = color.New(color.FgCyan).SprintFunc()
	colorWarn     = color.New(color.FgYellow).SprintFunc()
	colorError    = color.New(color.FgRed).SprintFunc()
	colorCritical = color.New(color.FgRed, color.Bold).SprintFunc()
)

// formatRiskLevel colors a risk level name by severity.
func formatRiskLevel(level string) string {
	switch strings.ToLower(level) {
	case "low":
		return colorSuccess(level)
	case "medium":
		return colorWarn(level)
	case "high":
		return colorError(level)
	case "critical":
		return colorCritical(level)
	default:
		return level
	}
}
