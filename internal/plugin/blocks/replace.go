package blocks

import (
	"github.com/dshills/blockstorm/internal/engine"
	"github.com/dshills/blockstorm/internal/engine/node"
	"github.com/dshills/blockstorm/internal/engine/path"
)

// ReplaceIDs gives the block at `at` a fresh blockId, gives its leading text
// leaf a fresh textId, and does the same for every block nested beneath it.
//
// If nothing exists at `at`, or the node there is not an element carrying a
// blockId, ReplaceIDs does nothing and returns nil.
func ReplaceIDs(tx *engine.Tx, at path.Path, gen IDGenerator) error {
	n, err := tx.Node(at)
	if err != nil {
		return nil
	}
	if _, ok := n.BlockID(); !ok || !n.IsElement() {
		return nil
	}
	if gen == nil {
		gen = UUIDGenerator{}
	}
	return tx.WithoutNormalizing(func() error {
		return replaceIDs(tx, at, n, gen)
	})
}

// replaceIDs walks the value copy n taken before any change. Attribute
// updates do not move nodes, so the child paths derived from it stay valid.
func replaceIDs(tx *engine.Tx, at path.Path, n *node.Node, gen IDGenerator) error {
	if _, ok := n.BlockID(); ok {
		if err := setAttr(tx, at, node.AttrBlockID, gen.NewID()); err != nil {
			return err
		}
		if len(n.Children) > 0 && n.Children[0].IsText() {
			if err := setAttr(tx, at.Child(0), node.AttrTextID, gen.NewID()); err != nil {
				return err
			}
		}
	}
	for i, c := range n.Children {
		if !c.IsElement() {
			continue
		}
		if err := replaceIDs(tx, at.Child(i), c, gen); err != nil {
			return err
		}
	}
	return nil
}

func setAttr(tx *engine.Tx, at path.Path, key, value string) error {
	return tx.SetNodes(node.Attrs{key: value}, engine.SetOptions{At: engine.AtPath(at)})
}
