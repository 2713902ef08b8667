// Package common holds helpers shared by several services.
//
// It provides a gRPC client wrapper for the reminder daemon with call timeouts
// and detects the current system actor (hostname/username) for audit logs.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
