package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "serve [root-dir]",
	Short:   "Serve a directory over HTTP",
	Long: `serve is a small HTTP file server. It streams the files below a root
directory, renders an index page for directories and never lets a request
reach outside the root. Access can be restricted with HTTP basic auth.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	// Assigned here rather than in the literal to break the rootCmd <-> loadConfig
	// initialization cycle.
	rootCmd.PersistentPreRunE = loadConfig

	flags := rootCmd.PersistentFlags()
	flags.StringSlice("config", nil, "config file path(s), merged left to right (default: ./serve.yaml)")
	flags.IntP("port", "p", 8000, "HTTP server port (env: SERVE_SERVER_PORT)")
	flags.String("bind", "0.0.0.0", "address to listen on (env: SERVE_SERVER_BIND)")
	flags.StringP("auth", "a", "", "require basic auth, as user:pass (env: SERVE_AUTH_CREDENTIALS)")
	flags.String("realm", "serve", "basic auth realm (env: SERVE_SERVER_REALM)")
	flags.String("log-level", "", "log level: debug, info, warn, error (env: SERVE_LOG_LEVEL)")
	flags.String("env", "", "environment: dev or prod (env: SERVE_ENV)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
