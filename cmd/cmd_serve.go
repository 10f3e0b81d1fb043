// cmd_serve.go - Serve und Runs Commands
// Enthält: newServeCmd, newRunsCmd

package cmd

import (
	"fmt"
	"net"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/seqcache/seqcache/envconfig"
	"github.com/seqcache/seqcache/server"
	"github.com/seqcache/seqcache/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the seqcache evaluation server",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ln, err := net.Listen("tcp", envconfig.Host().Host)
			if err != nil {
				return err
			}

			return server.Serve(ln)
		},
	}
}

func newRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded evaluation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(envconfig.DBPath())
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.Runs(limit)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			table.SetHeader([]string{"ID", "MODE", "THETA", "ALPHA", "PPL", "TOKENS", "CREATED"})

			for _, run := range runs {
				table.Append([]string{
					run.ID,
					run.Mode,
					fmt.Sprintf("%.2f", run.Theta),
					fmt.Sprintf("%.2f", run.Alpha),
					fmt.Sprintf("%.4f", run.Perplexity),
					fmt.Sprintf("%d", run.Tokens),
					run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				})
			}
			table.Render()

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 = all)")

	return cmd
}
