// Package postgres implements the lesson, artifact, claim, progress and task
// stores on PostgreSQL through database/sql and the pgx driver. Schema
// changes live in the embedded goose migrations and are applied with Migrate.
//
// Driver errors are translated to the store sentinels by MapError so callers
// never see pgconn types or raw SQL.
package postgres
