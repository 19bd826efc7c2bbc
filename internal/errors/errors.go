package errors

import "errors"

// Cryptographic errors indicate failures during encryption or decryption operations.
var (
	// ErrDecryptionFailed indicates a blob could not be decrypted. A wrong
	// password and corrupted data are reported identically.
	ErrDecryptionFailed = errors.New("decryption failed: check your password")

	// ErrEncryptFailed indicates encryption could not be performed.
	ErrEncryptFailed = errors.New("encryption failed")

	// ErrEmptyPassword indicates no password was supplied.
	ErrEmptyPassword = errors.New("password must not be empty")
)

// Bundle errors indicate a decrypted payload is not a usable backup.
var (
	// ErrInvalidBundleFormat indicates required bundle fields are missing or malformed.
	ErrInvalidBundleFormat = errors.New("invalid backup bundle format")

	// ErrUnsupportedFormatVersion indicates the bundle was written by an incompatible version.
	ErrUnsupportedFormatVersion = errors.New("unsupported backup format version")
)

// Protocol errors indicate problems with scanned frames or reassembly.
var (
	// ErrMalformedFrame indicates a frame carried the protocol marker but could not be parsed.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrSessionTotalMismatch indicates frames of one session disagree on the frame count.
	ErrSessionTotalMismatch = errors.New("frames disagree on total frame count")

	// ErrInvalidCapacity indicates frame capacity options leave no room for payload.
	ErrInvalidCapacity = errors.New("invalid frame capacity")

	// ErrNoCodeFound indicates an image did not contain a readable QR code.
	ErrNoCodeFound = errors.New("no QR code found")

	// ErrIncompleteTransfer indicates the scanned codes did not complete any session.
	ErrIncompleteTransfer = errors.New("not all QR codes were captured")
)

// Store errors indicate issues with the local record store.
var (
	// ErrUserNotFound indicates the specified user could not be found.
	ErrUserNotFound = errors.New("user not found")

	// ErrRecordNotFound indicates the specified record could not be found.
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidEmail indicates the email format is invalid.
	ErrInvalidEmail = errors.New("invalid email format")
)

// File errors indicate issues with file discovery or access.
var (
	// ErrNoFilesFound indicates no usable files were found.
	ErrNoFilesFound = errors.New("no matching files found")

	// ErrFileNotFound indicates a specific file could not be located.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidFileType indicates the file is not of the expected type.
	ErrInvalidFileType = errors.New("invalid file type")

	// ErrInvalidArchive indicates the archive structure is invalid.
	ErrInvalidArchive = errors.New("invalid archive structure")
)

// Input errors indicate invalid command-line values.
var (
	// ErrInvalidDateFormat indicates a date was not in YYYY-MM-DD format.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrOutputExists indicates the export target already exists.
	ErrOutputExists = errors.New("output file already exists")
)
