package cache

import "time"

// Export is one CSV file written by the exporter.
type Export struct {
	ID        string
	Path      string
	Rows      int
	CreatedAt time.Time
}
