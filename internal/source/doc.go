// Package source reads candidate events from files.
//
// Three formats are supported, chosen by file extension:
//
//   - .csv with a header row naming the columns summary, description,
//     start_datetime, start_timezone, end_datetime, end_timezone and
//     optionally location
//   - .yaml / .yml with a list of events (or an "events" key holding one)
//   - .ics with VEVENT components
//
// A file that cannot be opened or has no usable header fails as a whole.
// Individual records that are malformed are collected in Batch.Rejected with
// their position and a reason, so the operator sees them; the remaining
// records still import.
package source
