// Package metrics exposes Prometheus metrics for pokedex-server.
//
// New(counter) registers, on a private registry:
//
//	pokedex_http_requests_total{route,method,code}   requests served
//	pokedex_http_request_duration_seconds{route,method}
//	pokedex_grpc_requests_total{method,code}
//	pokedex_records                                  records currently stored
//	pokedex_stream_clients                           after TrackStreamClients
//
// plus the standard Go runtime and process collectors. Handler() serves the
// registry in the Prometheus exposition format.
package metrics
