// Package importer turns a GTFS static feed into a transit network.
//
// Stops are identified by name, so platforms sharing a name collapse into a
// single stop. Every route becomes one bus following its longest trip.
package importer

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/transport-catalogue/internal/common/logger"
	"github.com/transport-catalogue/internal/gtfs-static/parser"
	"github.com/transport-catalogue/pkg/transit/models"
)

type Importer struct {
	parser *parser.Parser
	logger logger.Logger
	// DistanceScale converts shape_dist_traveled units to meters.
	DistanceScale float64
}

func NewImporter(p *parser.Parser, logger logger.Logger) *Importer {
	return &Importer{
		parser:        p,
		logger:        logger,
		DistanceScale: 1,
	}
}

// feed accumulates parsed rows until the whole archive has been read.
type feed struct {
	stopNames  map[string]string // stop_id -> stop_name
	stops      map[string]models.Stop
	routeOrder []string
	routeNames map[string]string
	tripRoute  map[string]string
	stopTimes  map[string][]models.FeedStopTime
	skipped    int
}

func newFeed() *feed {
	return &feed{
		stopNames:  make(map[string]string),
		stops:      make(map[string]models.Stop),
		routeNames: make(map[string]string),
		tripRoute:  make(map[string]string),
		stopTimes:  make(map[string][]models.FeedStopTime),
	}
}

func (i *Importer) callbacks(f *feed) parser.ParseCallbacks {
	return parser.ParseCallbacks{
		OnStop: func(stop *models.FeedStop) error {
			if stop.StopName == "" {
				f.skipped++
				return nil
			}
			f.stopNames[stop.StopID] = stop.StopName
			if _, exists := f.stops[stop.StopName]; exists {
				i.logger.Debug("Stop name already seen, keeping first coordinates",
					"stop_id", stop.StopID, "stop_name", stop.StopName)
				return nil
			}
			f.stops[stop.StopName] = models.Stop{Name: stop.StopName, Latitude: stop.StopLat, Longitude: stop.StopLon}
			return nil
		},
		OnRoute: func(route *models.FeedRoute) error {
			name := route.RouteShortName
			if name == "" {
				name = route.RouteID
			}
			f.routeOrder = append(f.routeOrder, route.RouteID)
			f.routeNames[route.RouteID] = name
			return nil
		},
		OnTrip: func(trip *models.FeedTrip) error {
			f.tripRoute[trip.TripID] = trip.RouteID
			return nil
		},
		OnStopTime: func(stopTime *models.FeedStopTime) error {
			if _, ok := f.tripRoute[stopTime.TripID]; !ok {
				f.skipped++
				return nil
			}
			f.stopTimes[stopTime.TripID] = append(f.stopTimes[stopTime.TripID], *stopTime)
			return nil
		},
	}
}

// Import parses the zip at zipPath.
func (i *Importer) Import(ctx context.Context, zipPath string) (*models.Network, error) {
	f := newFeed()
	if err := i.parser.ParseZip(ctx, zipPath, i.callbacks(f)); err != nil {
		return nil, fmt.Errorf("parsing zip: %w", err)
	}
	return i.build(f)
}

// ImportBytes parses a zip held in memory.
func (i *Importer) ImportBytes(ctx context.Context, data []byte) (*models.Network, error) {
	f := newFeed()
	if err := i.parser.ParseBytes(ctx, data, i.callbacks(f)); err != nil {
		return nil, fmt.Errorf("parsing zip: %w", err)
	}
	return i.build(f)
}

func (i *Importer) build(f *feed) (*models.Network, error) {
	n := &models.Network{}
	for _, stop := range f.stops {
		n.Stops = append(n.Stops, stop)
	}
	slices.SortFunc(n.Stops, func(a, b models.Stop) int { return strings.Compare(a.Name, b.Name) })

	longest := i.longestTrips(f)
	distances := make(map[[2]string]int)
	usedNames := make(map[string]string)

	for _, routeID := range f.routeOrder {
		tripID, ok := longest[routeID]
		if !ok {
			i.logger.Debug("Route has no trips with stop times", "route_id", routeID)
			continue
		}

		name := f.routeNames[routeID]
		if other, taken := usedNames[name]; taken && other != routeID {
			name = fmt.Sprintf("%s (%s)", name, routeID)
		}
		usedNames[name] = routeID

		stopTimes := f.stopTimes[tripID]
		slices.SortStableFunc(stopTimes, func(a, b models.FeedStopTime) int { return a.StopSequence - b.StopSequence })

		var stops []string
		var prev *models.FeedStopTime
		for idx := range stopTimes {
			st := &stopTimes[idx]
			stopName, ok := f.stopNames[st.StopID]
			if !ok {
				return nil, fmt.Errorf("trip %s references unknown stop_id %s", tripID, st.StopID)
			}
			if len(stops) > 0 && stops[len(stops)-1] == stopName {
				prev = st
				continue
			}
			if prev != nil {
				i.recordDistance(distances, f.stopNames[prev.StopID], stopName, prev, st)
			}
			stops = append(stops, stopName)
			prev = st
		}

		isRoundTrip := len(stops) > 1 && stops[0] == stops[len(stops)-1]
		n.Buses = append(n.Buses, models.Bus{Name: name, Stops: stops, IsRoundTrip: isRoundTrip})
	}
	slices.SortFunc(n.Buses, func(a, b models.Bus) int { return strings.Compare(a.Name, b.Name) })

	for pair, meters := range distances {
		n.Distances = append(n.Distances, models.Distance{From: pair[0], To: pair[1], Meters: meters})
	}
	slices.SortFunc(n.Distances, models.CompareDistances)

	i.logger.Info("GTFS feed converted",
		"stops", len(n.Stops),
		"distances", len(n.Distances),
		"buses", len(n.Buses),
		"skipped_rows", f.skipped)
	return n, nil
}

// longestTrips picks, for every route, the trip with the most stop times.
// Ties go to the smallest trip id.
func (i *Importer) longestTrips(f *feed) map[string]string {
	longest := make(map[string]string)
	for tripID, stopTimes := range f.stopTimes {
		routeID := f.tripRoute[tripID]
		best, ok := longest[routeID]
		if !ok {
			longest[routeID] = tripID
			continue
		}
		bestLen := len(f.stopTimes[best])
		if len(stopTimes) > bestLen || (len(stopTimes) == bestLen && tripID < best) {
			longest[routeID] = tripID
		}
	}
	return longest
}

// recordDistance keeps the first measurement seen for a direction.
func (i *Importer) recordDistance(distances map[[2]string]int, from, to string, prev, curr *models.FeedStopTime) {
	if !prev.HasShapeDist || !curr.HasShapeDist {
		return
	}
	delta := curr.ShapeDistTraveled - prev.ShapeDistTraveled
	if delta <= 0 {
		return
	}
	key := [2]string{from, to}
	if _, exists := distances[key]; exists {
		return
	}
	distances[key] = int(math.Round(delta * i.DistanceScale))
}
