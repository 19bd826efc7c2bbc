// Package configs manages tact's settings and configuration.
//
// # Settings
//
// UserTactSettings locates tact's directories and is resolved at startup:
//
//   - ConfigPath: $TACT_CONFIG_DIR, or the OS config dir plus "tact"
//   - DataPath: $TACT_DATA_DIR, or $XDG_DATA_HOME/tact
//     (default ~/.local/share/tact)
//
// The data directory holds the record database and the audit log.
//
// # Configuration
//
// config.toml in the config directory tunes transfers:
//
//	[transfer]
//	capacity = 350            # max characters per code
//	overhead = 60             # reserved for frame fields
//	image_size = 400          # rendered code edge in pixels
//	frame_interval_ms = 500   # animation frame time
//	format = "auto"           # auto, png, zip, pdf, gif or text
//
//	[import]
//	session_idle_timeout = "10m"
//
// A missing file means the defaults. Unknown keys and invalid values are
// rejected when the file is loaded.
package configs
