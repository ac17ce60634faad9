// Package document defines the block-level document model used by the
// pagination engine, along with the pure split and merge operations that
// move block nodes between pages.
//
// A Document is an ordered sequence of BlockNodes. Order is semantically
// significant: splitting and merging always preserve it, and neither
// operation ever loses, duplicates, or re-identifies a node.
//
// Offsets follow a token model: every block node occupies an open token,
// one position per rune of text, and a close token. Cursor offsets are
// therefore comparable across split boundaries without consulting the
// rendered surface.
package document
