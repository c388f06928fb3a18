package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/miro/pkg/parser"
	"github.com/lemonberrylabs/miro/pkg/runtime"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [expression...]",
		Short: "Evaluate expressions and print their values",
		Example: `  miro eval '10px + 5px'
  miro eval --var base=8px '$base * 2' 'percentage(0.25)'
  miro eval --file exprs.txt --format yaml`,
		RunE: runEval,
	}
	cmd.Flags().StringP("file", "f", "", "Read expressions from a file, one per line (- for stdin)")
	cmd.Flags().StringArray("var", nil, "Define a variable as name=expression (repeatable)")
	cmd.Flags().String("format", "text", "Output format: text or yaml")
	return cmd
}

type evalOutput struct {
	Expression string `yaml:"expression"`
	Result     string `yaml:"result,omitempty"`
	Kind       string `yaml:"kind,omitempty"`
	Deferred   bool   `yaml:"deferred,omitempty"`
	Error      string `yaml:"error,omitempty"`
}

func runEval(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "yaml" {
		return fmt.Errorf("unknown format %q", format)
	}

	exprs := args
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		lines, err := readExpressions(cmd, path)
		if err != nil {
			return err
		}
		exprs = append(exprs, lines...)
	}
	if len(exprs) == 0 {
		return fmt.Errorf("no expressions given")
	}

	cfg, log, engine, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	defs := append([]parser.Definition(nil), cfg.Variables...)
	vars, _ := cmd.Flags().GetStringArray("var")
	for _, v := range vars {
		name, source, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return fmt.Errorf("--var %q: expected name=expression", v)
		}
		defs = append(defs, parser.Definition{Name: strings.TrimPrefix(name, "$"), Source: source})
	}

	var (
		outputs []evalOutput
		failed  int
	)
	for _, src := range exprs {
		out := evalOutput{Expression: src}
		res, err := engine.Evaluate(cmd.Context(), runtime.Request{Expression: src, Variables: defs})
		if err != nil {
			out.Error = err.Error()
			failed++
		} else {
			out.Result = res.Value.String()
			out.Kind = res.Value.Kind().String()
			out.Deferred = res.Deferred()
		}
		outputs = append(outputs, out)
	}

	w := cmd.OutOrStdout()
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(outputs); err != nil {
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	} else {
		for _, out := range outputs {
			if out.Error != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", out.Expression, out.Error)
				continue
			}
			fmt.Fprintln(w, out.Result)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d expressions failed", failed, len(exprs))
	}
	return nil
}

// readExpressions returns the non-empty lines of path. Lines starting with
// "//" are comments.
func readExpressions(cmd *cobra.Command, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

func newFunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the built-in functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, log, engine, err := setup(cmd)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck
			for _, name := range engine.Functions() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
