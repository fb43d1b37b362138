// Package migration applies the domu schema files shipped inside the binary.
package migration

import "embed"

const migrationsDir = "migrations"

// Only forward migrations are embedded; the service never rolls a schema
// back in place.
//
//go:embed migrations/*.up.sql
var embeddedMigrations embed.FS
