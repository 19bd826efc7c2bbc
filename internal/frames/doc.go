// Package frames splits an encoded backup blob into QR-sized frames and
// parses scanned frame text.
//
// # Wire Format
//
// Frames are pipe-delimited UTF-8 text:
//
//	TQR|sessionId|M|total             header frame
//	TQR|sessionId|index|total|chunk   data frame (index is 0-based)
//
// The chunk is always the last field and may contain further separators.
// Frames starting with BQR, as printed by the browser app, parse the same
// way.
//
// # Splitting
//
// A blob that fits in one frame after its prefix is emitted as a single
// data frame with index 0 and total 0; no header is needed. Larger blobs
// are cut into chunks of at most Capacity-Overhead characters, smaller
// when the frame count needs more digits than Overhead allows, and emitted
// as one header frame followed by the data frames in order. No frame text
// is longer than Capacity.
//
// This package is pure: it keeps no state between calls. Reassembly lives
// in the collector package.
package frames
