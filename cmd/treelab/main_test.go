package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/YuminosukeSato/treelab/datasets"
	"github.com/YuminosukeSato/treelab/pkg/errors"
	"github.com/YuminosukeSato/treelab/pkg/log"
	"github.com/YuminosukeSato/treelab/sklearn/tree"
)

// run executes treelab with args and returns what it printed on stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cliParser()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("treelab %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// fourPointsCSV is x = 1..4 labelled 0, 0, 1, 1.
const fourPointsCSV = "x,label\n1,0\n2,0\n3,1\n4,1\n"

func TestVersion(t *testing.T) {
	out := mustRun(t, "version")
	if out != "treelab v0.3.0\n" {
		t.Errorf("version = %q", out)
	}
}

func TestSplitCommand(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "four.csv", fourPointsCSV)

	t.Run("best split", func(t *testing.T) {
		out := mustRun(t, "split", "--csv", csvPath, "--header")
		var got tree.Split
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("output is not a split: %v\n%s", err, out)
		}
		want := tree.Split{Feature: 0, Threshold: 2.5, Gain: 0.5, NLeft: 2, NRight: 2}
		if got != want {
			t.Errorf("split = %+v, want %+v", got, want)
		}
	})

	t.Run("scored rule", func(t *testing.T) {
		out := mustRun(t, "split", "--csv", csvPath, "--header", "--feature", "0", "--threshold", "1.5")
		var got tree.SplitEvaluation
		if err := json.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("output is not an evaluation: %v\n%s", err, out)
		}
		if got.NLeft != 1 || got.NRight != 3 {
			t.Errorf("sides = %d/%d, want 1/3", got.NLeft, got.NRight)
		}
	})

	t.Run("pure dataset", func(t *testing.T) {
		pure := writeFile(t, dir, "pure.csv", "1,0\n2,0\n")
		out := mustRun(t, "split", "--csv", pure)
		if !strings.Contains(out, "no split improves impurity") {
			t.Errorf("output = %q", out)
		}
	})
}

func TestFitPredictFlow(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "four.csv", fourPointsCSV)
	treePath := filepath.Join(dir, "tree.json")

	out := mustRun(t, "fit", "--csv", csvPath, "--header", "-o", treePath, "--text")
	for _, want := range []string{
		"depth: 1, leaves: 2, nodes: 3",
		"training accuracy: 1.0000",
		"|--- x <= 2.50",
		"|   |--- class: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("fit output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "predict", "-t", treePath, "-p", "2.5", "-p", "3", "--path")
	for _, want := range []string{"[2.5] -> 0", "[3] -> 1", "X1 (2.50) <= 2.50 ? True"} {
		if !strings.Contains(out, want) {
			t.Errorf("predict output missing %q:\n%s", want, out)
		}
	}

	predPath := filepath.Join(dir, "pred.npy")
	out = mustRun(t, "predict", "-t", treePath, "--csv", csvPath, "--header", "-o", predPath)
	if !strings.Contains(out, "accuracy: 1.0000") {
		t.Errorf("predict output missing accuracy:\n%s", out)
	}
	pred, err := datasets.LoadNpy(predPath)
	if err != nil {
		t.Fatal(err)
	}
	if r, _ := pred.Dims(); r != 4 {
		t.Errorf("wrote %d predictions, want 4", r)
	}

	if _, err := run(t, "predict", "-t", treePath, "-p", "1,2"); err == nil {
		t.Error("expected an error for a point with two features")
	}
}

func TestFitConfigFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "four.csv", fourPointsCSV)
	cfgPath := writeFile(t, dir, "build.yaml", "max_depth: 0\ncriterion: entropy\n")
	treePath := filepath.Join(dir, "tree.gob")

	out := mustRun(t, "fit", "--csv", csvPath, "--header", "-c", cfgPath, "-o", treePath)
	if !strings.Contains(out, "depth: 0, leaves: 1, nodes: 1") {
		t.Errorf("config file ignored:\n%s", out)
	}
	got, err := loadTree(treePath)
	if err != nil {
		t.Fatal(err)
	}
	if got.Config.Criterion != "entropy" || got.Config.MaxDepth != 0 {
		t.Errorf("config = %+v", got.Config)
	}

	// flags override the file
	out = mustRun(t, "fit", "--csv", csvPath, "--header", "-c", cfgPath, "--max-depth=-1", "-o", treePath)
	if !strings.Contains(out, "depth: 1") {
		t.Errorf("max-depth flag did not override the file:\n%s", out)
	}

	bad := writeFile(t, dir, "bad.yaml", "max_dept: 3\n")
	if _, err := run(t, "fit", "--csv", csvPath, "-c", bad, "-o", treePath); err == nil {
		t.Error("expected an error for an unknown config key")
	}
}

func TestGenerateRenderBoundary(t *testing.T) {
	dir := t.TempDir()
	xPath := filepath.Join(dir, "X.npy")
	yPath := filepath.Join(dir, "y.npy")
	treePath := filepath.Join(dir, "tree.json")

	out := mustRun(t, "generate", "-n", "40", "--seed", "7", "--x-out", xPath, "--y-out", yPath)
	if !strings.Contains(out, "wrote 40 samples") {
		t.Errorf("generate output = %q", out)
	}
	mustRun(t, "fit", "--x", xPath, "--y", yPath, "--max-depth", "3", "-o", treePath)

	dotPath := filepath.Join(dir, "tree.dot")
	mustRun(t, "render", "-t", treePath, "-o", dotPath, "--class-names", "low,high")
	dot, err := os.ReadFile(dotPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), "class = high") {
		t.Errorf("dot output lacks the class names:\n%s", dot)
	}

	pngPath := filepath.Join(dir, "boundary.png")
	mustRun(t, "boundary", "-t", treePath, "--x", xPath, "--y", yPath, "-o", pngPath, "--step", "0.1")
	if info, err := os.Stat(pngPath); err != nil || info.Size() == 0 {
		t.Errorf("boundary image missing: %v", err)
	}

	plotPath := filepath.Join(dir, "split.png")
	mustRun(t, "split", "--x", xPath, "--y", yPath, "--plot", plotPath)
	if _, err := os.Stat(plotPath); err != nil {
		t.Errorf("split plot missing: %v", err)
	}
}

func TestIrisFeaturePair(t *testing.T) {
	dir := t.TempDir()
	treePath := filepath.Join(dir, "iris.json")

	out := mustRun(t, "fit", "--iris", "--features", "2,3", "--max-depth", "2", "-o", treePath, "--text")
	for _, want := range []string{"depth: 2", "|--- petal_length <= 2.45", "|   |--- class: 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("fit output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, "split", "--iris", "--features", "3,0")
	var got tree.Split
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not a split: %v\n%s", err, out)
	}
	if got.Feature != 0 || got.NLeft != 50 {
		t.Errorf("split = %+v, want petal_width isolating setosa", got)
	}

	pngPath := filepath.Join(dir, "iris.png")
	mustRun(t, "boundary", "-t", treePath, "--iris", "--features", "2,3", "-o", pngPath, "--step", "0.05")
	if info, err := os.Stat(pngPath); err != nil || info.Size() == 0 {
		t.Errorf("boundary image missing: %v", err)
	}

	if _, err := run(t, "boundary", "-t", treePath, "--iris", "-o", pngPath); err == nil {
		t.Error("expected an error for a four-feature boundary")
	}
}

func TestValidationErrors(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "four.csv", fourPointsCSV)

	tests := []struct {
		name string
		args []string
	}{
		{"fit without output", []string{"fit", "--csv", csvPath}},
		{"fit without data", []string{"fit", "-o", filepath.Join(dir, "t.json")}},
		{"fit x without y", []string{"fit", "--x", "X.npy", "-o", filepath.Join(dir, "t.json")}},
		{"csv and x", []string{"split", "--csv", csvPath, "--x", "X.npy"}},
		{"bad max depth", []string{"fit", "--csv", csvPath, "--max-depth=-2", "-o", filepath.Join(dir, "t.json")}},
		{"bad criterion", []string{"fit", "--csv", csvPath, "--criterion", "mse", "-o", filepath.Join(dir, "t.json")}},
		{"predict without tree", []string{"predict", "-p", "1"}},
		{"render unknown format", []string{"render", "-t", filepath.Join(dir, "missing.json"), "-o", "tree.bmp"}},
		{"generate without outputs", []string{"generate"}},
		{"bad log level", []string{"--log-level", "loud", "version"}},
		{"iris and csv", []string{"split", "--iris", "--csv", csvPath}},
		{"bad features", []string{"split", "--iris", "--features", "2,x"}},
		{"feature out of range", []string{"split", "--iris", "--features", "4"}},
		{"repeated feature", []string{"split", "--csv", csvPath, "--header", "--features", "0,0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Errorf("treelab %s: expected an error", strings.Join(tt.args, " "))
			}
		})
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.NewNotFittedError("DecisionTreeClassifier", "Predict"), log.ErrorNotFitted},
		{errors.Wrap(errors.NewDimensionError("Tree.Predict", 2, 3, 1), "row 0"), log.ErrorDimensionMismatch},
		{errors.NewInvalidRowError("tree.Build", 1, "ragged"), log.ErrorInvalidDataset},
		{errors.NewValidationError("max_depth", "must be >= 0", -2), log.ErrorInvalidConfig},
		{errors.New("disk full"), ""},
	}
	for _, tt := range tests {
		if got := errorCode(tt.err); got != tt.want {
			t.Errorf("errorCode(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestInjectedLoggers(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "four.csv", fourPointsCSV)

	tests := []struct {
		name    string
		flags   []string
		want    []string
		notWant []string
	}{
		{"default level", nil, nil, []string{"Tree grown", "Leaf emitted"}},
		{"verbose", []string{"-v"}, []string{"Tree grown", "Training set scored"}, []string{"Leaf emitted"}},
		{"debug", []string{"--log-level", "debug"}, []string{"Tree grown", "Leaf emitted", "Node split"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, logs := log.NewTestLoggerProvider(log.LevelWarn)
			cmd := newRootCmd(provider)
			args := append([]string{"fit", "--csv", csvPath, "--header", "-o", filepath.Join(dir, "tree.json")}, tt.flags...)
			cmd.SetArgs(args)
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			if err := cmd.Execute(); err != nil {
				t.Fatalf("treelab %s: %v", strings.Join(args, " "), err)
			}

			out := logs.String()
			for _, msg := range tt.want {
				if !strings.Contains(out, msg) {
					t.Errorf("log missing %q:\n%s", msg, out)
				}
			}
			for _, msg := range tt.notWant {
				if strings.Contains(out, msg) {
					t.Errorf("log unexpectedly holds %q:\n%s", msg, out)
				}
			}
		})
	}

	t.Run("bad level", func(t *testing.T) {
		provider, _ := log.NewTestLoggerProvider(log.LevelWarn)
		cmd := newRootCmd(provider)
		cmd.SetArgs([]string{"--log-level", "loud", "version"})
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		if err := cmd.Execute(); err == nil {
			t.Error("expected an error for an unknown log level")
		}
	})
}
