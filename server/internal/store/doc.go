// Package store holds the pokemon records in memory. It provides a
// thread-safe, copy-out record store with offset/limit pagination and
// field-level partial updates.
package store
