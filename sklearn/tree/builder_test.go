package tree

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/YuminosukeSato/treelab/pkg/errors"
	"github.com/YuminosukeSato/treelab/pkg/log"
)

func mustBuild(t *testing.T, ds *Dataset, cfg BuildConfig) *Tree {
	t.Helper()
	tr, err := Build(ds, cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return tr
}

func TestBuild_FourPoints(t *testing.T) {
	tr := mustBuild(t, fourPoints(t), DefaultBuildConfig())

	root := tr.Root
	if root.Leaf || root.Feature != 0 || root.Threshold != 2.5 {
		t.Fatalf("root = %+v, want split X[0] <= 2.5", root)
	}
	if root.Impurity != 0.5 || root.Gain != 0.5 || root.Samples != 4 {
		t.Errorf("root impurity/gain/samples = %v/%v/%d", root.Impurity, root.Gain, root.Samples)
	}
	if !root.Left.Leaf || root.Left.Label != 0 || root.Left.Impurity != 0 {
		t.Errorf("left = %+v, want pure leaf 0", root.Left)
	}
	if !root.Right.Leaf || root.Right.Label != 1 || root.Right.Impurity != 0 {
		t.Errorf("right = %+v, want pure leaf 1", root.Right)
	}
	if tr.NodeCount() != 3 || tr.NLeaves() != 2 || tr.Depth() != 1 {
		t.Errorf("shape = %d nodes, %d leaves, depth %d", tr.NodeCount(), tr.NLeaves(), tr.Depth())
	}
	if root.ID != 0 || root.Left.ID != 1 || root.Right.ID != 2 {
		t.Errorf("ids = %d/%d/%d, want pre-order 0/1/2", root.ID, root.Left.ID, root.Right.ID)
	}
}

func TestBuild_SingleLeaf(t *testing.T) {
	tests := []struct {
		name      string
		X         [][]float64
		y         []int
		cfg       func(*BuildConfig)
		wantLabel int
	}{
		{
			name:      "identical labels",
			X:         [][]float64{{1, 9}, {2, 8}, {3, 7}, {4, 6}},
			y:         []int{1, 1, 1, 1},
			wantLabel: 1,
		},
		{
			name:      "max depth zero takes the majority",
			X:         [][]float64{{1}, {2}, {3}, {4}, {5}},
			y:         []int{0, 0, 1, 1, 1},
			cfg:       func(c *BuildConfig) { c.MaxDepth = 0 },
			wantLabel: 1,
		},
		{
			name:      "majority tie goes to the lowest label",
			X:         [][]float64{{1}, {2}, {3}, {4}},
			y:         []int{1, 1, 0, 0},
			cfg:       func(c *BuildConfig) { c.MaxDepth = 0 },
			wantLabel: 0,
		},
		{
			name:      "gain must strictly exceed min_impurity_gain",
			X:         [][]float64{{1, 0}, {2, 0}, {3, 0}, {4, 0}},
			y:         []int{0, 0, 1, 1},
			cfg:       func(c *BuildConfig) { c.MinImpurityGain = 0.5 },
			wantLabel: 0,
		},
		{
			name:      "min_samples_split",
			X:         [][]float64{{1}, {2}, {3}},
			y:         []int{0, 1, 1},
			cfg:       func(c *BuildConfig) { c.MinSamplesSplit = 4 },
			wantLabel: 1,
		},
		{
			// the best split isolates one sample; the runner-up at 2.5 is not tried
			name:      "winning split violating min_samples_leaf is discarded",
			X:         [][]float64{{1}, {2}, {3}, {4}, {5}},
			y:         []int{0, 1, 1, 1, 1},
			cfg:       func(c *BuildConfig) { c.MinSamplesLeaf = 2 },
			wantLabel: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultBuildConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			tr := mustBuild(t, mustDataset(t, tt.X, tt.y, 2), cfg)
			if !tr.Root.Leaf {
				t.Fatalf("expected a single leaf, got split X[%d] <= %v", tr.Root.Feature, tr.Root.Threshold)
			}
			if tr.Root.Label != tt.wantLabel {
				t.Errorf("label = %d, want %d", tr.Root.Label, tt.wantLabel)
			}
		})
	}
}

func TestBuild_MinImpurityGainBelowGain(t *testing.T) {
	cfg := DefaultBuildConfig()
	cfg.MinImpurityGain = 0.49
	if tr := mustBuild(t, fourPoints(t), cfg); tr.Root.Leaf {
		t.Error("split with gain 0.5 should pass min_impurity_gain 0.49")
	}
}

func TestBuild_DuplicatePointsTerminate(t *testing.T) {
	// (1):0 and (1):1 cannot be separated
	ds := mustDataset(t, [][]float64{{1}, {1}, {2}}, []int{0, 1, 0}, 2)
	tr := mustBuild(t, ds, DefaultBuildConfig())

	if tr.Root.Leaf || tr.Root.Threshold != 1.5 {
		t.Fatalf("root = %+v, want split at 1.5", tr.Root)
	}
	left := tr.Root.Left
	if !left.Leaf || left.Samples != 2 || left.Impurity != 0.5 || left.Label != 0 {
		t.Errorf("left = %+v, want impure leaf of 2 predicting 0", left)
	}
}

func randomDataset(t *testing.T, rng *rand.Rand, n, nFeatures, nClasses int) *Dataset {
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		X[i] = make([]float64, nFeatures)
		for j := range X[i] {
			X[i][j] = float64(rng.IntN(10)) / 2
		}
		y[i] = rng.IntN(nClasses)
	}
	return mustDataset(t, X, y, nClasses)
}

func TestBuild_Idempotent(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for trial := 0; trial < 20; trial++ {
		ds := randomDataset(t, rng, 60, 3, 3)
		cfg := DefaultBuildConfig()
		cfg.Criterion = []string{"gini", "entropy"}[trial%2]

		a := mustBuild(t, ds, cfg)
		b := mustBuild(t, ds, cfg)
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("trial %d: two builds on the same data differ", trial)
		}
	}
}

func TestBuild_StoppingRulesHold(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 4))
	configs := []BuildConfig{
		{MaxDepth: 0, MinSamplesLeaf: 1, MinSamplesSplit: 2, Criterion: "gini"},
		{MaxDepth: 2, MinSamplesLeaf: 1, MinSamplesSplit: 2, Criterion: "gini"},
		{MaxDepth: 3, MinSamplesLeaf: 5, MinSamplesSplit: 2, Criterion: "gini"},
		{MaxDepth: Unbounded, MinSamplesLeaf: 3, MinSamplesSplit: 8, Criterion: "entropy"},
		{MaxDepth: Unbounded, MinSamplesLeaf: 1, MinSamplesSplit: 2, MinImpurityGain: 0.05, Criterion: "gini"},
	}

	for trial := 0; trial < 30; trial++ {
		ds := randomDataset(t, rng, 10+rng.IntN(80), 2, 2+rng.IntN(2))
		for _, cfg := range configs {
			tr := mustBuild(t, ds, cfg)

			if cfg.Bounded() && tr.Depth() > cfg.MaxDepth {
				t.Fatalf("depth %d exceeds max_depth %d", tr.Depth(), cfg.MaxDepth)
			}

			total := 0
			tr.Walk(func(n *Node) bool {
				if n.Leaf {
					total += n.Samples
					if n.Samples < cfg.MinSamplesLeaf && n != tr.Root {
						t.Fatalf("leaf %d keeps %d samples, min_samples_leaf %d", n.ID, n.Samples, cfg.MinSamplesLeaf)
					}
					return true
				}
				if n.Left.Samples+n.Right.Samples != n.Samples {
					t.Fatalf("node %d: children %d+%d != %d", n.ID, n.Left.Samples, n.Right.Samples, n.Samples)
				}
				if n.Left.Samples == 0 || n.Right.Samples == 0 {
					t.Fatalf("node %d has an empty child", n.ID)
				}
				if n.Gain <= cfg.MinImpurityGain {
					t.Fatalf("node %d split with gain %v <= %v", n.ID, n.Gain, cfg.MinImpurityGain)
				}
				return true
			})
			if total != ds.NSamples() {
				t.Fatalf("leaves hold %d samples, want %d", total, ds.NSamples())
			}

			// every training sample lands in a leaf whose counts include its label
			for i, row := range ds.X {
				leaf, _ := tr.Apply(row)
				if leaf.ClassCounts[ds.Y[i]] == 0 {
					t.Fatalf("sample %d reached leaf %d without its class", i, leaf.ID)
				}
			}
		}
	}
}

func TestBuildConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*BuildConfig)
		wantParam string
	}{
		{"min_samples_leaf zero", func(c *BuildConfig) { c.MinSamplesLeaf = 0 }, "min_samples_leaf"},
		{"max_depth below unbounded", func(c *BuildConfig) { c.MaxDepth = -2 }, "max_depth"},
		{"negative min_impurity_gain", func(c *BuildConfig) { c.MinImpurityGain = -0.1 }, "min_impurity_gain"},
		{"min_samples_split one", func(c *BuildConfig) { c.MinSamplesSplit = 1 }, "min_samples_split"},
		{"unknown criterion", func(c *BuildConfig) { c.Criterion = "mse" }, "criterion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultBuildConfig()
			tt.mutate(&cfg)

			_, err := Build(fourPoints(t), cfg)
			var valErr *errors.ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if valErr.ParamName != tt.wantParam {
				t.Errorf("param = %s, want %s", valErr.ParamName, tt.wantParam)
			}
		})
	}

	if err := DefaultBuildConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestBuild_InvalidDataset(t *testing.T) {
	tests := []struct {
		name    string
		ds      *Dataset
		wantRow int
	}{
		{"nil", nil, -1},
		{"zero samples", &Dataset{NClasses: 2}, -1},
		{"ragged rows", &Dataset{X: [][]float64{{1, 2}, {3}}, Y: []int{0, 1}, NClasses: 2}, 1},
		{"label out of range", &Dataset{X: [][]float64{{1}, {2}}, Y: []int{0, 2}, NClasses: 2}, 1},
		{"no classes", &Dataset{X: [][]float64{{1}}, Y: []int{0}}, -1},
		{"label count mismatch", &Dataset{X: [][]float64{{1}, {2}}, Y: []int{0}, NClasses: 2}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.ds, DefaultBuildConfig())
			var dsErr *errors.InvalidDatasetError
			if !errors.As(err, &dsErr) {
				t.Fatalf("expected InvalidDatasetError, got %v", err)
			}
			if dsErr.Row != tt.wantRow {
				t.Errorf("row = %d, want %d", dsErr.Row, tt.wantRow)
			}
		})
	}
}

func TestBuilder_LogsStopReasons(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	cfg := DefaultBuildConfig()
	cfg.MaxDepth = 1

	b, err := NewBuilder(cfg, logger)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	ds := mustDataset(t, [][]float64{{1}, {2}, {3}, {4}}, []int{0, 1, 0, 1}, 2)
	if _, err := b.Build(ds); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !logger.ContainsMessage("Node split") {
		t.Error("expected a split record")
	}
	if !logger.ContainsField(log.StopReasonKey, StopMaxDepth) {
		t.Error("expected a max_depth stop record")
	}

	quiet, buf := log.NewTestLogger(log.LevelInfo)
	b, _ = NewBuilder(cfg, quiet)
	if _, err := b.Build(ds); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("builder wrote at info level: %s", buf.String())
	}
}
