// Package config provides pted's configuration.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//	defaults < TOML file < PTED_ environment variables
//
// Command line flags are applied on top by the caller. A file looks like:
//
//	[editor]
//	line_ending = "lf"        # preserve, lf, crlf, cr
//	normalize = "nfc"         # none, nfc
//	max_undo = 1000
//	tab_width = 4
//	debug_assertions = false
//
//	[logging]
//	level = "info"
//	file = ""                 # empty logs to stderr
//
//	[script]
//	timeout = "5s"
//
// Environment variables name a section and a key:
// PTED_EDITOR_MAX_UNDO=50 sets editor.max_undo.
package config
