// Package node defines the document node model shared by the engine.
//
// A node is one of two variants:
//
//   - Text leaves hold inline text and attributes (such as the text identifier).
//   - Elements hold a type tag, attributes and ordered children.
//
// The Node struct is a plain value tree. It is used to build documents, to
// pass subtrees into insert operations and to hand out immutable snapshots.
// The live document is held by the tree package in an arena keyed by ID.
//
// Blocks are elements carrying AttrBlockID. By convention a block's first
// child is its text leaf (carrying AttrTextID) and any further children are
// nested blocks:
//
//	b := node.Block("paragraph", "b1", "t1", "hello",
//	    node.Block("paragraph", "b2", "t2", "nested"),
//	)
package node
