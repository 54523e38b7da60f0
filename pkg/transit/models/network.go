package models

import (
	"strings"
	"time"
)

// Network is a complete description of a transit network as plain data. It
// is what the batch reader, the GTFS importer and the snapshot store produce
// and what a catalogue is loaded from.
type Network struct {
	Stops     []Stop     `json:"stops"`
	Distances []Distance `json:"distances"`
	Buses     []Bus      `json:"buses"`
}

type Stop struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance is a directed road distance in meters.
type Distance struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Meters int    `json:"meters"`
}

// CompareDistances orders distances by origin, then destination.
func CompareDistances(a, b Distance) int {
	if c := strings.Compare(a.From, b.From); c != 0 {
		return c
	}
	return strings.Compare(a.To, b.To)
}

type Bus struct {
	Name        string   `json:"name"`
	Stops       []string `json:"stops"`
	IsRoundTrip bool     `json:"is_roundtrip"`
}

// SnapshotVersion describes one stored copy of a network.
type SnapshotVersion struct {
	VersionID   int
	VersionName string
	CreatedAt   time.Time
	IsActive    bool
	SourceURL   string
	Description string
}
