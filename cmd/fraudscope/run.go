package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/fraudscope/internal/application/console"
	"github.com/bryanwahyu/fraudscope/internal/application/render"
	"github.com/bryanwahyu/fraudscope/internal/domain/analysis"
	"github.com/bryanwahyu/fraudscope/internal/infra/terminal"
)

var (
	runModel   string
	runNoCache bool
	runRaw     bool
	runJSON    bool
	plain      bool
)

var runCmd = &cobra.Command{
	Use:   "run <customer>",
	Short: "Run the analysis for one customer and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _ := newService()
		if err := svc.SetParams(console.RunParams{
			CustomerName: args[0],
			LLMModel:     analysis.LLMModel(runModel),
			UseCache:     !runNoCache,
		}); err != nil {
			return err
		}

		out := newTerminal()
		if err := svc.Run(cmd.Context()); err != nil {
			if errors.Is(err, analysis.ErrBlankCustomer) {
				return err
			}
			_ = out.Error(err)
			return err
		}

		page := render.Page(svc.Snapshot().Result, renderOptions())
		if runJSON {
			return out.RawJSON(page.Raw)
		}
		return out.Page(page, runRaw)
	},
}

var customersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List the customers known to the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _ := newService()
		out := newTerminal()
		if err := svc.RefreshCustomers(cmd.Context()); err != nil {
			_ = out.Error(err)
			return err
		}
		return out.Customers(svc.Snapshot().CustomerList)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runModel, "model", "m", string(analysis.DefaultModel), "LLM model (ollama or gpt5)")
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "ask the backend to skip its cache")
	runCmd.Flags().BoolVar(&runRaw, "raw", false, "append the original JSON")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print only the original JSON")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "disable colors and borders")
}

func newTerminal() *terminal.Renderer {
	styles := terminal.DefaultStyles()
	if plain {
		styles = terminal.PlainStyles()
	}
	return terminal.New(os.Stdout, styles)
}
