// Package store implements the durable category and contact stores on bun
// and go-repository-bun, plus connection setup, schema creation and the
// embedded Postgres migrations.
package store
