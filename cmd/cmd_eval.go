// cmd_eval.go - Eval und Sweep Commands
// Enthält: evalOptions, loadSession, newEvalCmd, newSweepCmd

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/seqcache/seqcache/api"
	"github.com/seqcache/seqcache/data"
	"github.com/seqcache/seqcache/envconfig"
	"github.com/seqcache/seqcache/eval"
	"github.com/seqcache/seqcache/model"
	"github.com/seqcache/seqcache/store"
)

// evalOptions buendelt die gemeinsamen Flags von eval und sweep
type evalOptions struct {
	path    string
	level   string
	lower   bool
	hidDim  int
	seed    int64
	noStore bool
	cfg     api.Config
}

func (o *evalOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.path, "path", "", "Path to the evaluation corpus (required)")
	cmd.Flags().StringVar(&o.level, "level", string(data.LevelChar), "Tokenization level (word or char)")
	cmd.Flags().BoolVar(&o.lower, "lower", false, "Lowercase the corpus")
	cmd.Flags().IntVar(&o.hidDim, "hid-dim", 64, "Hidden size of the reference model")
	cmd.Flags().Int64Var(&o.seed, "seed", 0, "Seed for the reference model weights")
	cmd.Flags().BoolVar(&o.noStore, "no-store", false, "Do not record results in the run database")
	cmd.Flags().IntVar(&o.cfg.Capacity, "capacity", int(envconfig.CacheCapacity()), "Cache capacity per lane")
	cmd.Flags().IntVar(&o.cfg.Lanes, "batch-size", 50, "Number of batch lanes")
	cmd.Flags().IntVar(&o.cfg.BPTT, "bptt", 35, "Chunk length in time steps")
	_ = cmd.MarkFlagRequired("path")
}

// loadSession laedt das Korpus, baut Vokabular, Bloecke und Modell
func (o *evalOptions) loadSession() (api.Config, model.Stepper, []data.Chunk, error) {
	vocab := data.NewVocab()
	proc := data.Processor{Level: data.Level(o.level), Lower: o.lower}

	stream, err := data.LoadLines(o.path, proc, vocab)
	if err != nil {
		return api.Config{}, nil, nil, err
	}
	vocab.Freeze()

	cfg := o.cfg
	cfg.VocabSize = vocab.Len()
	cfg.KeyDim = o.hidDim

	m, err := model.NewRNN(cfg.VocabSize, o.hidDim, o.seed)
	if err != nil {
		return api.Config{}, nil, nil, err
	}

	blocks, err := data.NewBlocks(stream, cfg.Lanes, cfg.BPTT)
	if err != nil {
		return api.Config{}, nil, nil, err
	}

	slog.Info("corpus loaded", "path", o.path, "tokens", len(stream), "vocab", vocab.Len(), "chunks", len(blocks.Chunks()))
	return cfg, m, blocks.Chunks(), nil
}

// recordRun legt ein Ergebnis im Store ab, sofern gewuenscht
func (o *evalOptions) recordRun(mode string, theta, alpha, ppl float64, tokens int) error {
	if o.noStore {
		return nil
	}

	st, err := store.Open(envconfig.DBPath())
	if err != nil {
		return err
	}
	defer st.Close()

	_, err = st.AddRun(mode, theta, alpha, ppl, tokens)
	return err
}

func newEvalCmd() *cobra.Command {
	var opts evalOptions

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate cache-augmented perplexity for one (theta, alpha) pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, m, chunks, err := opts.loadSession()
			if err != nil {
				return err
			}

			ev, err := eval.New(cfg, m)
			if err != nil {
				return err
			}

			ppl, err := ev.Run(cmd.Context(), chunks)
			if err != nil {
				return err
			}

			if err := opts.recordRun(cfg.Mode, cfg.Theta, cfg.Alpha, ppl, ev.Tokens()); err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "mode=%s theta=%g alpha=%g ppl=%.4f tokens=%d\n",
				cfg.Mode, cfg.Theta, cfg.Alpha, ppl, ev.Tokens())
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().Float64Var(&opts.cfg.Alpha, "alpha", 0.1, "Cache weight in [0,1]")
	cmd.Flags().Float64Var(&opts.cfg.Theta, "theta", 0.1, "Score sharpening, > 0")
	cmd.Flags().StringVar(&opts.cfg.Mode, "mode", api.ModeLinear, "Interpolation mode (linear or global)")

	return cmd
}

func newSweepCmd() *cobra.Command {
	var opts evalOptions
	var mode string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Grid search over theta [0,1) x alpha [0,0.5)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.cfg.Mode = mode
			cfg, m, chunks, err := opts.loadSession()
			if err != nil {
				return err
			}

			results, err := eval.Sweep(cmd.Context(), cfg, m, chunks)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			table.SetHeader([]string{"THETA", "ALPHA", "PPL"})

			for _, res := range results {
				table.Append([]string{
					fmt.Sprintf("%.1f", res.Theta),
					fmt.Sprintf("%.2f", res.Alpha),
					fmt.Sprintf("%.4f", res.Perplexity),
				})
			}
			table.Render()

			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", api.ModeLinear, "Interpolation mode (linear or global)")

	return cmd
}
