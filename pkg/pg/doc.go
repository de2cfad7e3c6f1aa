// Package pg connects to PostgreSQL through a pgx pool and applies goose
// migrations.
//
// Connect retries until the database answers a ping. Migrate bridges the pool
// to database/sql for goose and reads migrations from an fs.FS, so schemas can
// be embedded next to the code that queries them. The error helpers classify
// server errors by SQLSTATE.
package pg
