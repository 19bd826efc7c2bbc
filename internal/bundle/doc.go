// Package bundle defines the versioned plaintext backup exchanged between
// devices: one owner profile and that owner's records.
//
// Bundles are plain values. New stamps the current format version and
// normalises timestamps; Validate enforces the required fields and rejects
// format versions outside the supported 1.x range.
//
// Legacy reads the export document of the browser app and converts it to
// a Bundle.
package bundle
