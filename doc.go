/*
Package rowmutation provides the client-side model of a single write against
one row of a wide-column store: the cells to put, delete or increment,
grouped by column family, plus the metadata that travels with them.

A Mutation owns a row key, a default timestamp, a durability level, an
attribute bag and an ordered family-to-cells container. Families iterate in
unsigned byte order, so encodings and diagnostics are reproducible. Cells
within a family keep insertion order and are never deduplicated.

# Usage

	put, err := rowmutation.NewPut([]byte("r1"))
	if err != nil {
		return err
	}
	put.AddColumnAt([]byte("cf"), []byte("q1"), 1, []byte("v1")).
		SetDurability(rowmutation.SyncWAL)

	log.Printf("pending %s (%d bytes)", put.Fingerprint(), put.EstimateFootprint())

# Footprint

EstimateFootprint approximates the bytes of working memory a mutation
holds, using a CostModel of per-shape overheads and an alignment quantum.
FootprintTracker sums those estimates across pending mutations and reports
when a client should flush.

# Replication origins

SetOriginIDs and OriginIDs store the identifiers of replication sources that
already applied a mutation, in a fixed big-endian layout under the reserved
"_cs.id" attribute.

# Concurrency

A Mutation is not safe for concurrent modification: build it on one
goroutine, then hand it off. FootprintTracker is safe for concurrent use.
*/
package rowmutation
