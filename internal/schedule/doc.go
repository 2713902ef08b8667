// Package schedule turns schedule descriptors into times of day and computes
// the next trigger instant for each of them.
//
// A descriptor is a comma-separated list of tokens. Each token is either an
// explicit time ("8:00 AM", "21:30") or a named slot (morning, afternoon,
// evening, night). Tokens that match neither are dropped without an error.
package schedule
