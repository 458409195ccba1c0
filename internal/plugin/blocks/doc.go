// Package blocks provides the block-identity overrides for the engine's
// move and lift transforms.
//
// A block is an element carrying a blockId attribute; its first child is
// normally a text leaf carrying a textId. Downstream layers (sync, diffing)
// treat identifiers as the identity of a block, so a relocated block must
// not keep the identifiers of the block it came from.
//
// MoveHook wraps the engine's move transform. It delegates first and then
// regenerates identifiers on every moved block and on all blocks nested
// beneath it. The regeneration runs inside the move's transaction, so no
// reader observes a half re-identified subtree.
//
// LiftHook replaces the engine's lift transform. It promotes each matched
// block one level and keeps the parent valid using four cases:
//
//   - only child: the block moves after its parent, which is removed
//   - first child: the block moves before its parent
//   - last child: the block moves after its parent
//   - middle child: the siblings after the block move into it, in order,
//     and the block then moves after its parent
//
// Unlike the native lift, the middle case never splits the parent, so no
// block identifier is ever duplicated. Every move goes through the engine's
// move chain and therefore through MoveHook.
//
// Install both hooks with:
//
//	p := blocks.New(blocks.WithLogger(logger))
//	if err := p.Install(e); err != nil {
//	    return err
//	}
package blocks
