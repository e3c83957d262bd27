// Package google provides OAuth2 authentication and token storage for the
// Google Calendar API.
//
// Tokens are kept per account name. Two stores are available: JSON files in
// the user cache directory, and a SQLite database with a single tokens
// table. Tokens refreshed while talking to the API are written back to the
// store they came from.
package google
