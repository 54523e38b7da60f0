package models

// Rows of a GTFS static feed that the importer turns into a network.

type FeedStop struct {
	StopID        string
	StopName      string
	StopLat       float64
	StopLon       float64
	LocationType  int
	ParentStation string
}

type FeedRoute struct {
	RouteID        string
	RouteShortName string
	RouteLongName  string
	RouteType      int
}

type FeedTrip struct {
	TripID      string
	RouteID     string
	ShapeID     string
	DirectionID int
}

type FeedStopTime struct {
	TripID            string
	StopID            string
	StopSequence      int
	ShapeDistTraveled float64
	// HasShapeDist is false when the column is missing or empty.
	HasShapeDist bool
}
