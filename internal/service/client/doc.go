// Package client implements the reminderctl operations.
//
// A Session talks to a running reminder-server over gRPC and prints the
// results as tables. Parse works offline and only exercises the schedule parser.
package client
