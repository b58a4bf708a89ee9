package types

import "time"

// Chapter represents a chapter marker.
//
// Chapters come from ID3v2 CHAP frames and QuickTime Nero chpl atoms.
type Chapter struct {
	Source    string        `json:"source"`
	Index     int           `json:"index"`
	Title     string        `json:"title"`
	StartTime time.Duration `json:"start_time"`
	EndTime   time.Duration `json:"end_time,omitempty"`
}
