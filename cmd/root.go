package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crxaudit/crxaudit-cli/internal/shared/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string
var logger *zap.SugaredLogger
var resultsDir string

var rootCmd = &cobra.Command{
	Use:   "crxaudit",
	Short: "Static risk analysis for packaged browser extensions (CRX/ZIP)",
	Long: `crxaudit inspects a packaged browser extension without executing any of
its code: it decodes the CRX container, resolves the manifest, classifies
declared permissions, scans bundled source for sensitive API usage,
hardcoded secrets and known-vulnerable libraries, and produces an
explainable 0-100 risk score.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".crxaudit")
			viper.SetConfigType("yaml")
		}

		_ = viper.ReadInConfig()
		resultsDir = viper.GetString("results_dir")
		if resultsDir == "" {
			resultsDir = "./results"
		}

		if err := os.MkdirAll(resultsDir, constants.DefaultDirPerm); err != nil {
			return fmt.Errorf("failed to create results directory: %s", err.Error())
		}

		// init logger
		l, _ := zap.NewProduction()
		logger = l.Sugar()

		if abs, err := filepath.Abs(resultsDir); err == nil {
			resultsDir = abs
		}

		loadConfig()

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.crxaudit.yaml)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
