// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/seqcache/seqcache/envconfig"
	"github.com/seqcache/seqcache/logutil"
	"github.com/seqcache/seqcache/version"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "seqcache",
		Short:         "Continuous-cache language model evaluation",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Println(version.Version)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	// Commands erstellen
	evalCmd := newEvalCmd()
	sweepCmd := newSweepCmd()
	runsCmd := newRunsCmd()
	serveCmd := newServeCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()
	appendEnvDocs(evalCmd, []envconfig.EnvVar{envVars["SEQCACHE_CAPACITY"], envVars["SEQCACHE_DB"]})
	appendEnvDocs(sweepCmd, []envconfig.EnvVar{envVars["SEQCACHE_CAPACITY"], envVars["SEQCACHE_SWEEP_WORKERS"]})
	appendEnvDocs(runsCmd, []envconfig.EnvVar{envVars["SEQCACHE_DB"]})
	appendEnvDocs(serveCmd, []envconfig.EnvVar{envVars["SEQCACHE_HOST"], envVars["SEQCACHE_DB"]})

	rootCmd.AddCommand(
		evalCmd,
		sweepCmd,
		runsCmd,
		serveCmd,
	)

	return rootCmd
}
