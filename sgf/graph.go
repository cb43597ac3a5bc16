package sgf

import (
	"fmt"
	"io"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"

	"github.com/fuego-go/fuego/board"
	"github.com/fuego-go/fuego/mcts"
)

// DumpGraph renders the search tree as a GraphViz digraph, one node per
// tree node with its move, visit count and mean, down to maxDepth plies
// and skipping nodes below minCount visits. Intended for offline
// inspection of what the search actually explored.
func DumpGraph(w io.Writer, s *mcts.Search, pos *board.Position, maxDepth int, minCount uint32) error {
	g := gographviz.NewGraph()
	if err := g.SetName("search"); err != nil {
		return errors.WithMessage(err, "sgf: graph name")
	}
	if err := g.SetDir(true); err != nil {
		return errors.WithMessage(err, "sgf: graph direction")
	}

	tree := s.Tree()
	root := tree.Root()
	if err := addNode(g, tree, pos, root, "n0", 0, maxDepth, minCount); err != nil {
		return err
	}
	_, err := io.WriteString(w, g.String())
	return errors.WithMessage(err, "sgf: writing graph")
}

func addNode(g *gographviz.Graph, tree *mcts.Tree, pos *board.Position, n mcts.Naughty, id string, depth, maxDepth int, minCount uint32) error {
	node := tree.Node(n)
	label := fmt.Sprintf("\"%s\\nn=%d v=%.2f\"", moveLabel(pos, node.Move()), node.Count(), node.Mean())
	if depth == 0 {
		label = fmt.Sprintf("\"root\\nn=%d v=%.2f\"", node.Count(), node.Mean())
	}
	if err := g.AddNode("search", id, map[string]string{"label": label, "shape": "box"}); err != nil {
		return errors.WithMessage(err, "sgf: adding node")
	}
	if depth >= maxDepth {
		return nil
	}
	for i, c := range tree.Children(n) {
		child := tree.Node(c)
		if child.Count() < minCount {
			continue
		}
		childID := fmt.Sprintf("%s_%d", id, i)
		if err := addNode(g, tree, pos, c, childID, depth+1, maxDepth, minCount); err != nil {
			return err
		}
		if err := g.AddEdge(id, childID, true, nil); err != nil {
			return errors.WithMessage(err, "sgf: adding edge")
		}
	}
	return nil
}

func moveLabel(pos *board.Position, encoded int32) string {
	pt := mcts.DecodeMove(encoded)
	if pt == board.PointPass {
		return "pass"
	}
	row, col := pos.RowCol(pt)
	return fmt.Sprintf("%c%d", colLetter(col), row+1)
}

// colLetter maps a zero-based column to its board letter, skipping I.
func colLetter(col int) byte {
	b := byte('A' + col)
	if b >= 'I' {
		b++
	}
	return b
}
