package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/bolinas/config"
	"github.com/dhamidi/bolinas/grammar"
)

func newCheckCmd(a *app) *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:           "check <grammar>",
		Short:         "Read and validate a grammar file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := a.cfg.Grammar
			if cmd.Flags().Changed("start") {
				settings.Start = start
			}
			out := cmd.OutOrStdout()

			g, err := readGrammar(args[0], settings)
			if err != nil {
				printErrors(out, err)
				return err
			}
			fmt.Fprintf(out, "%s: %d rules, %d nonterminals, start %s\n", args[0], g.Len(), len(g.Symbols()), g.Start)
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start symbol (overrides %start)")

	return cmd
}

// readGrammar reads a grammar file, applies the settings on top of its
// directives and validates it.
func readGrammar(path string, settings config.GrammarConfig) (*grammar.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	g, err := grammar.Parse(path, f)
	if err != nil {
		return nil, err
	}
	if settings.Start != "" {
		g.Start = settings.Start
	}
	if settings.NodeLabels {
		g.NodeLabels = true
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// printErrors prints each error of a syntax error list or of joined
// validation errors on its own line.
func printErrors(w io.Writer, err error) {
	switch e := err.(type) {
	case grammar.ErrorList:
		for _, se := range e {
			fmt.Fprintln(w, se)
		}
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			printErrors(w, inner)
		}
	default:
		fmt.Fprintln(w, err)
	}
}
