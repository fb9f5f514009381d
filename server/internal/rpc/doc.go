// Package rpc serves the record store over gRPC as pokedex.v1.Pokedex.
//
// Messages travel as JSON using the "json" codec registered by this
// package, so clients must call with content subtype "json"
// (application/grpc+json). Client does that for Go callers.
//
//	List   ListRequest{page?, limit?}   -> PokemonList
//	Create PokemonPatch (all fields)    -> Pokemon
//	Get    GetRequest{number}           -> Pokemon
//	Update UpdateRequest{number, patch} -> Pokemon
//	Delete DeleteRequest{number}        -> Empty
//
// Store errors map to status codes: an absent record is NotFound, a bad
// request is InvalidArgument. The standard grpc.health.v1 service is
// registered on the same server.
package rpc
