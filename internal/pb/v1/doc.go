// Package v1 defines the ReminderService control API: its messages, the
// gRPC service descriptor, and the client and server bindings.
//
// Messages travel as google.protobuf.Struct values so the API needs no code
// generation step; every message is a plain Go struct mapped through JSON.
package v1
