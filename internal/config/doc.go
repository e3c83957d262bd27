// Package config loads calimport settings.
//
// Settings come from a TOML file, then a .env file in the working
// directory, then the process environment, each overriding the previous.
// The file is looked up at the explicit --config path, ./calimport.toml and
// $XDG_CONFIG_HOME/calimport/config.toml in that order. A missing file is
// fine; defaults apply.
package config
