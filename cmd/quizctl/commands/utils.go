package commands

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
)

// maskDatabaseURL hides the password of a database URL for display
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}

// getDatabaseInfo returns database connection information
func getDatabaseInfo(ctx context.Context, db *sql.DB) string {
	if db == nil {
		return "Not connected"
	}

	var dbName string
	if err := db.QueryRowContext(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		return "Connected (unknown database)"
	}

	var results int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM quiz_results").Scan(&results); err != nil {
		return fmt.Sprintf("Connected to %s", dbName)
	}
	return fmt.Sprintf("Connected to %s (%d quiz results)", dbName, results)
}
