// Package server runs the reminder daemon: it arms reminders for the items
// file, keeps them in sync with edits, and serves the control API.
package server
