// Package cipher provides password-based authenticated encryption for tact
// backups.
//
// # Encryption Architecture
//
// A backup is protected by a single user-chosen password:
//
//  1. A random 16-byte salt and the password feed PBKDF2-HMAC-SHA256
//     (100,000 iterations) to produce a 256-bit key
//  2. The key seals the plaintext with AES-256-GCM under a random 12-byte nonce
//  3. The salt, nonce and sealed bytes are concatenated and base64 encoded
//
// The iteration count is fixed. It is not stored in the blob, so changing it
// would make existing backups unreadable.
//
// The resulting layout is:
//
//	base64( salt[16] || nonce[12] || ciphertext || tag[16] )
//
// Encryption is non-deterministic: the same plaintext and password never
// produce the same blob twice.
//
// # Failure Reporting
//
// Decrypt returns errors.ErrDecryptionFailed for every failure. A wrong
// password, a flipped bit and a truncated blob are indistinguishable to the
// caller.
package cipher
