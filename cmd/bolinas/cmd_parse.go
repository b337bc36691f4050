package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/bolinas/config"
	"github.com/dhamidi/bolinas/format"
	"github.com/dhamidi/bolinas/grammar"
	"github.com/dhamidi/bolinas/parse"
	"github.com/dhamidi/bolinas/telemetry"
)

func newParseCmd(a *app) *cobra.Command {
	var (
		graphInput   bool
		graphsPath   string
		outFormat    string
		prefix       string
		workers      int
		timeout      time.Duration
		start        string
		nodeLabels   bool
		otlpEndpoint string
		metricsAddr  string
	)

	cmd := &cobra.Command{
		Use:   "parse [grammar] [input]",
		Short: "Parse sentences or graphs and write their derivation forests",
		Long: `Parse every input read from the input file (or stdin) and write one
derivation forest per input.

Inputs are sentences, one per line, unless --graph is given, in which case
they are graphs separated by blank lines. With --graphs, each sentence is
parsed together with the graph at the same position of that file using the
synchronous rules of the grammar.`,
		Args:          cobra.RangeArgs(0, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			flags := cmd.Flags()
			if len(args) > 0 {
				cfg.Grammar.Path = args[0]
			}
			if flags.Changed("start") {
				cfg.Grammar.Start = start
			}
			if flags.Changed("nodelabels") {
				cfg.Grammar.NodeLabels = nodeLabels
			}
			if flags.Changed("format") {
				cfg.Output.Format = outFormat
			}
			if flags.Changed("output") {
				cfg.Output.Prefix = prefix
			}
			if flags.Changed("workers") {
				cfg.Parse.Workers = workers
			}
			if flags.Changed("timeout") {
				cfg.Parse.Timeout = timeout
			}
			if flags.Changed("otel-endpoint") {
				cfg.Telemetry.OTLPEndpoint = otlpEndpoint
			}
			if flags.Changed("metrics-addr") {
				cfg.Telemetry.MetricsAddr = metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Grammar.Path == "" {
				return errors.New("no grammar given")
			}

			input := cmd.InOrStdin()
			name := "stdin"
			if len(args) > 1 {
				f, err := os.Open(args[1])
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				input, name = f, args[1]
			}

			return runParse(cmd.Context(), cfg, input, name, graphInput, graphsPath, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&graphInput, "graph", false, "the input holds graphs instead of sentences")
	cmd.Flags().StringVar(&graphsPath, "graphs", "", "parse each sentence together with the graph at the same position of this file")
	cmd.Flags().StringVarP(&outFormat, "format", "f", "line", "output format: json, line, tiburon, cdec or carmel")
	cmd.Flags().StringVarP(&prefix, "output", "o", "", "write forests to files starting with this prefix instead of stdout")
	cmd.Flags().IntVarP(&workers, "workers", "j", 1, "number of inputs parsed at the same time")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "time limit per input (0 means none)")
	cmd.Flags().StringVar(&start, "start", "", "start symbol (overrides %start)")
	cmd.Flags().BoolVar(&nodeLabels, "nodelabels", false, "match graph node labels (as if the grammar had %nodelabels)")
	cmd.Flags().StringVar(&otlpEndpoint, "otel-endpoint", "", "host:port of an OTLP/gRPC trace collector")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while parsing")

	return cmd
}

func runParse(ctx context.Context, cfg config.Config, input io.Reader, name string, graphInput bool, graphsPath string, stdout io.Writer) error {
	shutdown, err := telemetry.Setup(cfg.Telemetry.OTLPEndpoint, telemetry.ServiceName)
	if err != nil {
		return fmt.Errorf("set up tracing: %w", err)
	}
	defer shutdown(context.Background())

	if cfg.Telemetry.MetricsAddr != "" {
		stopMetrics, err := telemetry.ServeMetrics(ctx, cfg.Telemetry.MetricsAddr)
		if err != nil {
			return fmt.Errorf("serve metrics: %w", err)
		}
		defer stopMetrics(context.Background())
	}

	g, err := readGrammar(cfg.Grammar.Path, cfg.Grammar)
	if err != nil {
		printErrors(os.Stderr, err)
		return fmt.Errorf("grammar %s is invalid", cfg.Grammar.Path)
	}
	log.Infof("loaded %d rules from %s", g.Len(), cfg.Grammar.Path)

	in, err := newInputStream(input, name, graphInput, graphsPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := newSink(cfg.Output, g, stdout)
	if err != nil {
		return err
	}

	p := parse.New(g, parse.WithTimeout(cfg.Parse.Timeout))
	var st parseSummary
	if cfg.Parse.Workers > 1 {
		inputs := slices.Collect(in.All())
		if err := in.Err(); err != nil {
			return err
		}
		results, err := p.ParseBatch(ctx, inputs, cfg.Parse.Workers)
		if err != nil {
			return err
		}
		for i, res := range results {
			if err := st.record(out, i, res); err != nil {
				return err
			}
		}
	} else {
		i := 0
		for f, err := range in.Forests(ctx, p) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if err := st.record(out, i, parse.Result{Forest: f, Err: err}); err != nil {
				return err
			}
			i++
		}
		if err := in.Err(); err != nil {
			return err
		}
	}
	if err := out.Close(); err != nil {
		return err
	}

	total := st.parsed + st.failed + st.aborted
	log.Infof("parsed %d inputs: %d with derivations, %d without, %d aborted", total, st.parsed, st.failed, st.aborted)
	if st.aborted > 0 {
		return fmt.Errorf("%d of %d inputs aborted", st.aborted, total)
	}
	return nil
}

type parseSummary struct {
	parsed  int
	failed  int
	aborted int
}

func (st *parseSummary) record(out *sink, i int, res parse.Result) error {
	switch {
	case res.Err != nil:
		st.aborted++
		log.Errorf("input %d: %s", i, res.Err)
		return out.skip(i)
	case res.Forest.Empty():
		st.failed++
		log.Infof("input %d: no derivation", i)
	default:
		st.parsed++
		log.Debugf("input %d: %d nodes, %g derivations", i, res.Forest.Len(), res.Forest.Count())
	}
	return out.write(i, res.Forest)
}

// sink routes forests to their destination: stdout, one file per input,
// or for carmel a single charts file followed by a norm file.
type sink struct {
	cfg     config.OutputConfig
	grammar *grammar.Grammar
	shared  format.Encoder
	file    *os.File
}

func newSink(cfg config.OutputConfig, g *grammar.Grammar, stdout io.Writer) (*sink, error) {
	s := &sink{cfg: cfg, grammar: g}
	switch {
	case cfg.Prefix == "":
		enc, err := format.New(cfg.Format, stdout, g)
		if err != nil {
			return nil, err
		}
		s.shared = enc
	case cfg.Format == "carmel":
		f, err := os.Create(cfg.Prefix + ".carmel.charts")
		if err != nil {
			return nil, err
		}
		s.file = f
		s.shared = format.NewCarmelEncoder(f, g)
	}
	return s, nil
}

func (s *sink) write(i int, f *parse.Forest) error {
	if s.shared != nil {
		return s.shared.Encode(f)
	}
	path := fmt.Sprintf("%s%d.%s", s.cfg.Prefix, i, s.cfg.Format)
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	enc, err := format.New(s.cfg.Format, file, s.grammar)
	if err != nil {
		file.Close()
		return err
	}
	if err := enc.Encode(f); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

// skip keeps carmel charts aligned with the input when an input is
// aborted; other formats write nothing for it.
func (s *sink) skip(i int) error {
	if s.cfg.Format != "carmel" || s.shared == nil {
		return nil
	}
	return s.shared.Encode(nil)
}

func (s *sink) Close() error {
	if s.file == nil {
		return nil
	}
	if err := s.file.Close(); err != nil {
		return err
	}
	norm, err := os.Create(s.cfg.Prefix + ".carmel.norm")
	if err != nil {
		return err
	}
	if err := format.NewCarmelEncoder(norm, s.grammar).WriteNorm(norm); err != nil {
		norm.Close()
		return err
	}
	return norm.Close()
}
