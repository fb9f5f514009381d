// Package ws serves the live collection stream at /ws/stream.
//
// A Hub keeps the set of connected clients and, every interval, sends each of
// them the first page of the collection. A client also receives one snapshot
// immediately after connecting.
//
// Message format:
//
//	{
//	  "event": "snapshot",
//	  "seq":   42,
//	  "data":  { /* same schema as GET /pokemon */ }
//	}
//
// Clients that cannot keep up with the broadcast rate are disconnected.
package ws
