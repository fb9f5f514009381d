// Package config loads the server configuration from the `server:` section
// of config.yaml.
//
// Config fields:
//   - Address / HTTPPort  listener bind address (default 127.0.0.1:3000)
//   - LogLevel            debug | info | warn | error (default info)
//   - Seed                load the two fixture records at startup (default true)
//   - ShutdownTimeout     graceful shutdown bound (default 10s)
//   - Pagination          default_limit (10) and max_limit (0 = unbounded)
//   - GRPC                optional gRPC listener on Address (off, port 50051)
//   - Stream              WebSocket snapshot stream toggle and interval (5s)
//   - Metrics             Prometheus endpoint toggle and path (/metrics)
//   - Tracing             OTLP/HTTP endpoint; empty disables tracing
//
// Load(path) applies defaults, then the YAML file, then POKEDEX_* environment
// overrides, then validates. A Watcher reloads the file after it changes and
// reports which changes can be applied live (log level, pagination through
// LivePagination) and which need a restart.
package config
