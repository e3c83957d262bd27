// Package cmd implements the command-line interface for calimport.
//
// This package provides the following commands:
//   - menu: Interactive numbered menu (default when no subcommand is given)
//   - add: Create one event from six prompted fields
//   - import: Import events from a CSV, YAML or ICS file, once or on a schedule
//   - upcoming: Print the next events of the calendar
//   - calendars: List the calendars visible to the account
//   - auth: Log in to Google and show the token status
//   - version: Display version information
//   - generate-docs: Generate markdown documentation for all commands
package cmd
