// Package types defines the JSON wire shapes shared by the REST API, the
// gRPC service and the WebSocket stream. They are separate from the store's
// in-memory Record type.
package types
