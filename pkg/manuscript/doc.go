// Package manuscript defines the boundary contract of the inkdex search
// subsystem: the scene input model, the hit output model, and the
// Indexer/Searcher interfaces implemented by the internal engine.
//
// External collaborators (persistence, job relay, command dispatch) feed
// validated scene batches in and consume SearchHit records back; they
// never touch the index representation directly.
package manuscript
