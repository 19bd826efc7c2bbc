// Package collector reassembles encoded blobs from frames scanned in any
// order.
//
// A Collector owns a table of in-progress sessions keyed by session id.
// Each call to Consume is applied atomically, so frames decoded in
// parallel may be fed from several goroutines. Sessions that never
// complete stay in the table until the caller discards or evicts them;
// the collector applies no timeout of its own.
//
// Duplicate delivery of a data frame overwrites the stored chunk. Nothing
// is authenticated per frame: a reassembled blob is only trustworthy once
// it has been decrypted successfully.
package collector
