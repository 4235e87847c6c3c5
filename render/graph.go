// Package render draws fitted trees and the datasets they partition.
//
// Tree diagrams go through Graphviz (github.com/goccy/go-graphviz), plots
// through gonum/plot.
package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/YuminosukeSato/treelab/pkg/errors"
	"github.com/YuminosukeSato/treelab/sklearn/tree"
)

// GraphOptions controls node labels.
type GraphOptions struct {
	// FeatureNames defaults to X1, X2, ...
	FeatureNames []string
	// ClassNames defaults to the class index.
	ClassNames []string
	// Precision is the number of decimals printed for thresholds and
	// impurities; zero means 2.
	Precision int
}

var formats = map[string]graphviz.Format{
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
	"jpg": graphviz.JPG,
	"dot": graphviz.XDOT,
}

// ParseFormat maps a file extension or format name to a Graphviz format.
func ParseFormat(name string) (graphviz.Format, error) {
	f, ok := formats[strings.TrimPrefix(strings.ToLower(name), ".")]
	if !ok {
		return "", errors.NewValidationError("format", "must be one of png, svg, jpg, dot", name)
	}
	return f, nil
}

// Graph builds the diagram of t. Internal nodes read "X1 <= 2.50" with their
// impurity, sample count and class counts; the left edge is labelled True and
// the right edge False. The caller must Close both returned values.
func Graph(t *tree.Tree, opts GraphOptions) (*graphviz.Graphviz, *cgraph.Graph, error) {
	if opts.FeatureNames != nil && len(opts.FeatureNames) != t.NFeatures {
		return nil, nil, errors.NewDimensionError("render.Graph", t.NFeatures, len(opts.FeatureNames), 1)
	}
	if opts.ClassNames != nil && len(opts.ClassNames) != t.NClasses {
		return nil, nil, errors.NewDimensionError("render.Graph", t.NClasses, len(opts.ClassNames), 1)
	}

	gv := graphviz.New()
	graph, err := gv.Graph()
	if err != nil {
		gv.Close()
		return nil, nil, errors.Wrap(err, "create graph")
	}

	l := labeler{opts: opts, criterion: t.Config.Criterion}
	if err := drawNode(graph, t.Root, nil, "", l); err != nil {
		graph.Close()
		gv.Close()
		return nil, nil, err
	}
	return gv, graph, nil
}

func drawNode(g *cgraph.Graph, n *tree.Node, parent *cgraph.Node, edgeLabel string, l labeler) error {
	current, err := g.CreateNode(fmt.Sprint(n.ID))
	if err != nil {
		return errors.Wrapf(err, "create node %d", n.ID)
	}
	if parent != nil {
		e, err := g.CreateEdge("", parent, current)
		if err != nil {
			return errors.Wrapf(err, "create edge to node %d", n.ID)
		}
		e.SetLabel(edgeLabel)
	}

	current.Set("label", l.label(n))
	current.Set("shape", "box")
	current.Set("style", "rounded,filled")
	current.Set("fillcolor", hexColor(classColor(n.Label, n.Leaf)))
	if n.Leaf {
		return nil
	}
	if err := drawNode(g, n.Left, current, "True", l); err != nil {
		return err
	}
	return drawNode(g, n.Right, current, "False", l)
}

type labeler struct {
	opts      GraphOptions
	criterion string
}

func (l labeler) feature(f int) string {
	if l.opts.FeatureNames != nil {
		return l.opts.FeatureNames[f]
	}
	return fmt.Sprintf("X%d", f+1)
}

func (l labeler) class(k int) string {
	if l.opts.ClassNames != nil {
		return l.opts.ClassNames[k]
	}
	return fmt.Sprint(k)
}

func (l labeler) label(n *tree.Node) string {
	prec := l.opts.Precision
	if prec <= 0 {
		prec = 2
	}
	criterion := l.criterion
	if criterion == "" {
		criterion = "gini"
	}

	var lines []string
	if !n.Leaf {
		lines = append(lines, fmt.Sprintf("%s <= %.*f", l.feature(n.Feature), prec, n.Threshold))
	}
	lines = append(lines,
		fmt.Sprintf("%s = %.*f", criterion, prec, n.Impurity),
		fmt.Sprintf("samples = %d", n.Samples),
		fmt.Sprintf("value = %v", n.ClassCounts),
	)
	if n.Leaf {
		lines = append(lines, "class = "+l.class(n.Label))
	}
	return strings.Join(lines, "\n")
}

// RenderTree writes the diagram of t to w in format ("png", "svg", "jpg" or "dot").
func RenderTree(t *tree.Tree, opts GraphOptions, format string, w io.Writer) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	gv, graph, err := Graph(t, opts)
	if err != nil {
		return err
	}
	defer gv.Close()
	defer graph.Close()

	if err := gv.Render(graph, f, w); err != nil {
		return errors.Wrap(err, "render graph")
	}
	return nil
}

// RenderTreeFile writes the diagram of t to path, picking the format from
// the file extension.
func RenderTreeFile(t *tree.Tree, opts GraphOptions, path string) error {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	gv, graph, err := Graph(t, opts)
	if err != nil {
		return err
	}
	defer gv.Close()
	defer graph.Close()

	if err := gv.RenderFilename(graph, f, path); err != nil {
		return errors.Wrapf(err, "render %s", path)
	}
	return nil
}
