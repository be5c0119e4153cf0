package repository

import (
	"context"
	"fmt"
)

// Supported driver names.
const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

// Open builds the store named by driver. location is the results directory
// for the JSON driver and the database file for SQLite.
func Open(ctx context.Context, driver, location string, opts ...Option) (Store, error) {
	switch driver {
	case DriverJSON, "":
		return NewJSONStore(location, opts...), nil
	case DriverSQLite:
		return OpenSQLiteStore(ctx, location, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, driver)
	}
}
