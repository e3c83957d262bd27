// Package schedule repeats a batch import on a cron schedule.
//
// Runs never overlap: a tick that fires while the previous run is still
// going is skipped. Scheduled imports have no operator, so the importer
// must be built with a non-interactive conflict policy.
package schedule
