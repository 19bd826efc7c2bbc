// Package audit records tact operations in a local audit trail.
//
// Exports, imports and profile changes are appended to a JSON Lines file
// in the data directory:
//
//	$TACT_DATA_DIR/audit.jsonl
//
// Each entry contains a UTC timestamp with microseconds, the local profile
// id, the operation name and operation-specific details such as the
// transfer session id, frame count and output path.
//
// # Failure Handling
//
// Audit logging is best-effort. If logging fails (permissions, disk full,
// etc.), the operation continues without error.
//
// ReadEntries parses the log. Malformed lines are skipped so a
// partial write never hides the entries around it.
package audit
