package storage

import _ "embed"

// Schema is the PostgreSQL DDL used by the SQL backends.
//
//go:embed schema.sql
var Schema string
