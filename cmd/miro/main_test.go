package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--log-level", "none"))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestEval(t *testing.T) {
	out, _, err := execute(t, "eval", "10px + 5px", "50% - 1em", "'a' + b")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	want := "15px\ncalc(50% - 1em)\nab\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestEvalVariables(t *testing.T) {
	out, _, err := execute(t, "eval", "--var", "base=8px", "--var", "$gutter=$base * 2", "$gutter + 1px")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if out != "17px\n" {
		t.Errorf("output = %q", out)
	}

	if _, _, err := execute(t, "eval", "--var", "broken", "1"); err == nil {
		t.Error("expected error for malformed --var")
	}
}

func TestEvalFailures(t *testing.T) {
	out, errOut, err := execute(t, "eval", "1 + 1", "1 / 0")
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("expected failure count, got %v", err)
	}
	if out != "2\n" {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(errOut, "1 / 0") {
		t.Errorf("stderr %q does not name the failing expression", errOut)
	}

	if _, _, err := execute(t, "eval"); err == nil {
		t.Error("expected error without expressions")
	}
	if _, _, err := execute(t, "eval", "--format", "xml", "1"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestEvalFileAndYAML(t *testing.T) {
	dir := t.TempDir()
	exprs := filepath.Join(dir, "exprs.txt")
	if err := os.WriteFile(exprs, []byte("// sizes\n$base * 3\n\n100vw - $base\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	conf := filepath.Join(dir, "miro.yaml")
	if err := os.WriteFile(conf, []byte("variables:\n  base: 4px\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "eval", "--config", conf, "--file", exprs, "--format", "yaml")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	var got []evalOutput
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid YAML %q: %v", out, err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %v", got)
	}
	if got[0].Result != "12px" || got[0].Kind != "Numeric" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].Result != "calc(100vw - 4px)" || !got[1].Deferred {
		t.Errorf("second = %+v", got[1])
	}
}

func TestFunctions(t *testing.T) {
	out, _, err := execute(t, "functions")
	if err != nil {
		t.Fatalf("functions: %v", err)
	}
	names := strings.Fields(out)
	found := false
	for _, n := range names {
		if n == "percentage" {
			found = true
		}
	}
	if !found {
		t.Errorf("percentage missing from %v", names)
	}
}
