// Package history keeps a SQLite log of fired alarms.
package history
