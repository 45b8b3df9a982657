package domain

import "time"

// Cell is one addressed triangle of the grid.
type Cell struct {
	ReadableHash string     `json:"readable_hash"`
	NumericHash  uint64     `json:"numeric_hash"`
	Precision    int        `json:"precision"`
	Octant       int        `json:"octant"`
	Levels       []int      `json:"levels"`
	Center       GeoPoint   `json:"center"`
	Corners      []GeoPoint `json:"corners"` // 3, or 4 when a corner is a pole
	Bounds       Bounds     `json:"bounds"`
	Source       *GeoPoint  `json:"source,omitempty"` // coordinate that was hashed, if any
}

// CellEvent is published whenever a coordinate is hashed.
type CellEvent struct {
	Cell  Cell      `json:"cell"`
	JobID string    `json:"job_id,omitempty"`
	Time  time.Time `json:"time"`
}

// BatchJob is a bulk hashing request.
type BatchJob struct {
	ID        string     `json:"id"`
	Points    []GeoPoint `json:"points"`
	Precision int        `json:"precision"`
}
