package handlers

import "time"

const (
	// Run statistics window bounds
	defaultStatsWindow = 24 * time.Hour
	maxStatsWindow     = 30 * 24 * time.Hour
)
