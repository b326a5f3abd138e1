// Package choice defines the typed selection-tree model shared by the
// entgen pipeline: templates made of alternating Selections and Options,
// the raw entity recording which options a user picked, the flattened
// path form of those picks, and the built entity produced by folding
// effects over a base value. Selections and Options are distinct structs
// rather than a single shape-sniffed node type, so traversal code can
// alternate between them without runtime checks. Algorithms over these
// types live in internal/{path,merge,resolve,effects} and are exposed
// through pkg/engine.
package choice
