// Package console is the text-terminal operator interface.
//
// A Console reads line-based answers from an input stream and writes
// operator messages to an output stream. It implements the importer's
// Decider, Reporter and FieldPrompter, so the same core runs interactively
// here and unattended elsewhere. App ties a Console to a calendar gateway
// and drives the numbered menu.
package console
