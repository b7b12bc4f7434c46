// Package migrations embeds SQL migration files into the binary.
//
// The transmitter runs migrations at startup without needing the SQL
// files present on the filesystem.
package migrations

import (
	"embed"

	"github.com/stagecue/cuelight-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	// Register embedded migrations with the database package.
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // Files are at root of embedded FS
}
