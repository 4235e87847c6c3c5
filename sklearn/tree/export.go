package tree

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/treelab/pkg/errors"
)

// ExportText renders t as an indented rule listing:
//
//	|--- X[0] <= 2.50
//	|   |--- class: 0
//	|--- X[0] >  2.50
//	|   |--- class: 1
//
// featureNames replaces the X[i] placeholders when non-nil.
func ExportText(t *Tree, featureNames []string) (string, error) {
	if featureNames != nil && len(featureNames) != t.NFeatures {
		return "", errors.NewDimensionError("ExportText", t.NFeatures, len(featureNames), 1)
	}
	name := func(f int) string {
		if featureNames != nil {
			return featureNames[f]
		}
		return fmt.Sprintf("X[%d]", f)
	}

	var sb strings.Builder
	var write func(n *Node, indent string)
	write = func(n *Node, indent string) {
		if n.Leaf {
			fmt.Fprintf(&sb, "%s|--- class: %d\n", indent, n.Label)
			return
		}
		fmt.Fprintf(&sb, "%s|--- %s <= %.2f\n", indent, name(n.Feature), n.Threshold)
		write(n.Left, indent+"|   ")
		fmt.Fprintf(&sb, "%s|--- %s >  %.2f\n", indent, name(n.Feature), n.Threshold)
		write(n.Right, indent+"|   ")
	}

	write(t.Root, "")
	return sb.String(), nil
}
