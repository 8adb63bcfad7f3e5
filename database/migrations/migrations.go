// Package migrations holds the schema migrations. Each file registers its
// migrations from init(); cmd/paintpos imports this package so they are
// all known at CLI startup.
package migrations
