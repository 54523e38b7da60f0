// Package catalogue stores the transit network: stops, buses and measured
// road distances between stops. It is populated once (stops, then
// distances, then buses) and read afterwards.
package catalogue

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/transport-catalogue/internal/common/logger"
	"github.com/transport-catalogue/internal/geo"
)

// Stop is a named location. The set of buses serving it is derived from
// AddBus and is never set directly.
type Stop struct {
	Name        string
	Coordinates geo.Coordinates
	buses       map[string]struct{}
}

// Bus is a named route over stops that already exist in the catalogue.
type Bus struct {
	Name        string
	Stops       []*Stop
	IsRoundTrip bool
}

// PhysicalPath returns the stops in the order the vehicle visits them.
// A there-and-back route is followed by its reverse without repeating the
// turnaround stop.
func (b *Bus) PhysicalPath() []*Stop {
	if b.IsRoundTrip || len(b.Stops) < 2 {
		return b.Stops
	}
	path := make([]*Stop, 0, 2*len(b.Stops)-1)
	path = append(path, b.Stops...)
	for i := len(b.Stops) - 2; i >= 0; i-- {
		path = append(path, b.Stops[i])
	}
	return path
}

// BusStats is recomputed on every call to Stats.
type BusStats struct {
	StopCount        int
	UniqueStopCount  int
	RouteLength      int
	GeographicLength float64
	// Curvature is RouteLength / GeographicLength, or 0 for a degenerate route.
	Curvature float64
}

// Degenerate reports whether the route has zero geographic length.
func (s BusStats) Degenerate() bool {
	return s.GeographicLength == 0
}

type stopPair struct {
	from, to string
}

// Catalogue is not safe for concurrent mutation. Once populated, concurrent
// reads are fine.
type Catalogue struct {
	stops       []*Stop
	stopsByName map[string]*Stop
	buses       []*Bus
	busesByName map[string]*Bus
	distances   map[stopPair]int
	log         logger.Logger
}

// New creates an empty catalogue.
func New(log logger.Logger) *Catalogue {
	if log == nil {
		log = logger.Nop()
	}
	return &Catalogue{
		stopsByName: make(map[string]*Stop),
		busesByName: make(map[string]*Bus),
		distances:   make(map[stopPair]int),
		log:         log,
	}
}

// AddStop inserts a stop. A second stop with the same name is rejected.
func (c *Catalogue) AddStop(name string, coords geo.Coordinates) error {
	if _, exists := c.stopsByName[name]; exists {
		return fmt.Errorf("adding stop %q: %w", name, ErrDuplicateStop)
	}
	stop := &Stop{
		Name:        name,
		Coordinates: coords,
		buses:       make(map[string]struct{}),
	}
	c.stops = append(c.stops, stop)
	c.stopsByName[name] = stop
	c.log.Debug("Stop added", "stop", name, "lat", coords.Lat, "lng", coords.Lng)
	return nil
}

// AddDistance records the road distance from one stop to another. Recording
// the same direction twice keeps the last value.
func (c *Catalogue) AddDistance(fromName, toName string, meters int) error {
	if _, ok := c.stopsByName[fromName]; !ok {
		return fmt.Errorf("adding distance %q -> %q: %w: %q", fromName, toName, ErrUnknownStop, fromName)
	}
	if _, ok := c.stopsByName[toName]; !ok {
		return fmt.Errorf("adding distance %q -> %q: %w: %q", fromName, toName, ErrUnknownStop, toName)
	}
	c.distances[stopPair{from: fromName, to: toName}] = meters
	return nil
}

// AddBus resolves every stop name, stores the route and adds the bus to each
// referenced stop's service set.
func (c *Catalogue) AddBus(name string, stopNames []string, isRoundTrip bool) error {
	stops := make([]*Stop, 0, len(stopNames))
	for _, stopName := range stopNames {
		stop, ok := c.stopsByName[stopName]
		if !ok {
			return fmt.Errorf("adding bus %q: %w: %q", name, ErrUnknownStop, stopName)
		}
		stops = append(stops, stop)
	}

	bus := &Bus{Name: name, Stops: stops, IsRoundTrip: isRoundTrip}
	if prev, exists := c.busesByName[name]; exists {
		c.log.Warn("Bus redefined, replacing previous route", "bus", name)
		for _, stop := range prev.Stops {
			delete(stop.buses, name)
		}
		for i, b := range c.buses {
			if b == prev {
				c.buses[i] = bus
				break
			}
		}
	} else {
		c.buses = append(c.buses, bus)
	}
	c.busesByName[name] = bus

	for _, stop := range stops {
		stop.buses[name] = struct{}{}
	}
	c.log.Debug("Bus added", "bus", name, "stops", len(stops), "roundtrip", isRoundTrip)
	return nil
}

// FindStop looks a stop up by name.
func (c *Catalogue) FindStop(name string) (*Stop, bool) {
	stop, ok := c.stopsByName[name]
	return stop, ok
}

// FindBus looks a bus up by name.
func (c *Catalogue) FindBus(name string) (*Bus, bool) {
	bus, ok := c.busesByName[name]
	return bus, ok
}

// BusesForStop returns the names of the buses serving stop, sorted.
func (c *Catalogue) BusesForStop(stop *Stop) []string {
	if stop == nil {
		return nil
	}
	names := maps.Keys(stop.buses)
	slices.Sort(names)
	return names
}

// Distance returns the recorded road distance from one stop to another,
// falling back to the reverse direction and then to zero.
func (c *Catalogue) Distance(from, to *Stop) int {
	if d, ok := c.distances[stopPair{from: from.Name, to: to.Name}]; ok {
		return d
	}
	if d, ok := c.distances[stopPair{from: to.Name, to: from.Name}]; ok {
		return d
	}
	return 0
}

// Stats computes the statistics of the named bus.
func (c *Catalogue) Stats(busName string) (BusStats, error) {
	bus, ok := c.busesByName[busName]
	if !ok {
		return BusStats{}, fmt.Errorf("stats for bus %q: %w", busName, ErrUnknownBus)
	}
	if len(bus.Stops) == 0 {
		return BusStats{}, nil
	}

	unique := make(map[string]struct{}, len(bus.Stops))
	for _, stop := range bus.Stops {
		unique[stop.Name] = struct{}{}
	}

	path := bus.PhysicalPath()
	stats := BusStats{
		StopCount:       len(path),
		UniqueStopCount: len(unique),
	}
	for i := 1; i < len(path); i++ {
		stats.RouteLength += c.Distance(path[i-1], path[i])
		stats.GeographicLength += geo.ComputeDistance(path[i-1].Coordinates, path[i].Coordinates)
	}
	if !stats.Degenerate() {
		stats.Curvature = float64(stats.RouteLength) / stats.GeographicLength
	}
	return stats, nil
}

// Curvature is Stats(busName).Curvature, but reports ErrDegenerateRoute
// instead of zero when the route has no geographic length.
func (c *Catalogue) Curvature(busName string) (float64, error) {
	stats, err := c.Stats(busName)
	if err != nil {
		return 0, err
	}
	if stats.Degenerate() {
		return 0, fmt.Errorf("curvature for bus %q: %w", busName, ErrDegenerateRoute)
	}
	return stats.Curvature, nil
}

// AllStops returns every stop ordered by name.
func (c *Catalogue) AllStops() []*Stop {
	stops := slices.Clone(c.stops)
	slices.SortFunc(stops, func(a, b *Stop) int { return strings.Compare(a.Name, b.Name) })
	return stops
}

// AllBuses returns every bus ordered by name.
func (c *Catalogue) AllBuses() []*Bus {
	buses := slices.Clone(c.buses)
	slices.SortFunc(buses, func(a, b *Bus) int { return strings.Compare(a.Name, b.Name) })
	return buses
}

// StopCount returns the number of stops.
func (c *Catalogue) StopCount() int { return len(c.stops) }

// BusCount returns the number of buses.
func (c *Catalogue) BusCount() int { return len(c.buses) }

// Distances calls fn for every recorded directed distance.
func (c *Catalogue) Distances(fn func(from, to string, meters int)) {
	for pair, meters := range c.distances {
		fn(pair.from, pair.to, meters)
	}
}
