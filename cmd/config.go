package cmd

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultFetchTimeoutSeconds = 30
	defaultStoreRateLimit      = 2
	defaultServeRateLimit      = 10
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Analyze AnalyzeRuntimeConfig
	Serve   ServeRuntimeConfig
}

// AnalyzeRuntimeConfig consolidates settings for the analyze command.
type AnalyzeRuntimeConfig struct {
	Store            string
	FetchTimeoutSecs int
	StoreRateLimit   int
	FetchReputation  bool
}

// ServeRuntimeConfig consolidates settings for the API server.
type ServeRuntimeConfig struct {
	Addr      string
	AuthToken string
	RateLimit int
	RateBurst int
}

var cliConfig CLIConfig

// loadConfig fills cliConfig from viper-managed defaults. Flag values
// registered with these names override config-file values.
func loadConfig() {
	viper.SetDefault("analyze.store", "chrome")
	viper.SetDefault("analyze.fetch_timeout_secs", defaultFetchTimeoutSeconds)
	viper.SetDefault("analyze.store_rate_limit", defaultStoreRateLimit)
	viper.SetDefault("serve.addr", ":8080")
	viper.SetDefault("serve.rate_limit", defaultServeRateLimit)
	viper.SetDefault("serve.rate_burst", defaultServeRateLimit*2)

	cliConfig = CLIConfig{
		Analyze: AnalyzeRuntimeConfig{
			Store:            viper.GetString("analyze.store"),
			FetchTimeoutSecs: viper.GetInt("analyze.fetch_timeout_secs"),
			StoreRateLimit:   viper.GetInt("analyze.store_rate_limit"),
			FetchReputation:  viper.GetBool("analyze.reputation"),
		},
		Serve: ServeRuntimeConfig{
			Addr:      viper.GetString("serve.addr"),
			AuthToken: viper.GetString("serve.auth_token"),
			RateLimit: viper.GetInt("serve.rate_limit"),
			RateBurst: viper.GetInt("serve.rate_burst"),
		},
	}
}

// stringFlagOrConfig prefers an explicitly set flag over the config value.
func stringFlagOrConfig(flags *pflag.FlagSet, name, configValue string) string {
	if flags.Changed(name) {
		v, _ := flags.GetString(name)
		return v
	}
	return configValue
}

func boolFlagOrConfig(flags *pflag.FlagSet, name string, configValue bool) bool {
	if flags.Changed(name) {
		v, _ := flags.GetBool(name)
		return v
	}
	return configValue
}

func intFlagOrConfig(flags *pflag.FlagSet, name string, configValue int) int {
	if flags.Changed(name) {
		v, _ := flags.GetInt(name)
		return v
	}
	return configValue
}
