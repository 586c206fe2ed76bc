// Package extractor turns fetched HTML text into typed records.
//
// One extraction function exists per record variant: headings, links,
// images, table rows, and metadata. Each performs a single in-order
// traversal of the parsed tree, so the position of a record in the returned
// slice is its position in the source document.
//
// Design decision: Headings, links, and images use golang.org/x/net/html
// node walks because the walk makes document order explicit. Tables and meta
// tags use goquery because CSS selection over tr/th/td and meta[name]
// reads much better than hand-written node matching; goquery sits on top of
// the same parser, so order is preserved either way.
//
// Malformed or empty HTML is never an error here: the parser produces a
// best-effort tree and extraction yields zero records in the worst case.
package extractor
