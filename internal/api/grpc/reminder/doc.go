// Package reminder implements the gRPC transport for the reminder service.
//
// It adapts domain types to API messages and exposes a server that calls
// into a provided business-service interface.
package reminder
