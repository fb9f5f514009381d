// Package api implements the HTTP REST API for pokedex-server.
//
// New(store, opts...) returns an http.Handler that serves:
//
//	GET    /pokemon?page=&limit=  one page: {total, limit, offset, pokemons}
//	POST   /pokemon               upsert a full record; echoes it back
//	GET    /pokemon/{id}          single record; 404 if absent
//	PATCH  /pokemon/{id}          partial merge; 404 if absent
//	DELETE /pokemon/{id}          204 on success; 404 if absent
//	GET    /healthz               {status, records}
//
// All endpoints:
//   - Respond with Content-Type: application/json (except the empty 204)
//   - Return 400 for an {id} that is not a non-negative int32
//   - Return 422 for a body "number" outside the int32 range
//   - Return 405 for methods a path does not serve
//   - Report failures as {"error": "..."}
//
// Every request gets an X-Request-Id, a server span (a child of the caller's
// span when a traceparent header arrives), a metrics observation and one
// access log line. Handler panics are recovered as 500.
//
// Wire types live in pkg/types. No external HTTP framework is used.
package api
