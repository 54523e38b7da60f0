// Package router builds the routing graph of a finished catalogue and answers
// fastest-itinerary queries over it.
//
// Every edge means "board a bus at one stop and ride it, without changing,
// to a later stop on its physical path". The edge weight is the boarding wait
// plus the riding time, so a single shortest-path search picks boarding and
// alighting points on its own.
package router

import (
	"errors"
	"fmt"

	"github.com/transport-catalogue/internal/catalogue"
	"github.com/transport-catalogue/internal/common/logger"
	"github.com/transport-catalogue/internal/graph"
)

// ErrInvalidSettings is returned by New for a negative wait or a non-positive speed.
var ErrInvalidSettings = errors.New("invalid routing settings")

const metersPerKm = 1000.0
const minutesPerHour = 60.0

// RoutingSettings is fixed for the lifetime of a router.
type RoutingSettings struct {
	// BusWaitTime is the wait at every boarding, in minutes.
	BusWaitTime float64 `json:"bus_wait_time" yaml:"bus_wait_time" validate:"gte=0"`
	// BusVelocity is in km/h.
	BusVelocity float64 `json:"bus_velocity" yaml:"bus_velocity" validate:"gt=0"`
}

func (s RoutingSettings) metersPerMinute() float64 {
	return s.BusVelocity * metersPerKm / minutesPerHour
}

// ItemType tells a waiting segment from a riding one.
type ItemType string

const (
	ItemWait ItemType = "Wait"
	ItemBus  ItemType = "Bus"
)

// Item is one segment of an itinerary. Wait items carry StopName, Bus items
// carry Bus and SpanCount. Time is in minutes.
type Item struct {
	Type      ItemType
	StopName  string
	Bus       string
	SpanCount int
	Time      float64
}

// Itinerary alternates Wait and Bus items. An empty itinerary with zero total
// time is the answer for a trip from a stop to itself.
type Itinerary struct {
	TotalTime float64
	Items     []Item
}

type edgeLabel struct {
	bus  string
	span int
}

// TransportRouter is immutable after New and safe for concurrent queries.
type TransportRouter struct {
	settings RoutingSettings
	graph    *graph.DirectedWeightedGraph
	router   *graph.Router
	vertices map[string]graph.VertexID
	stops    []string
	labels   []edgeLabel
}

// New builds the routing graph for cat. cat must not change afterwards.
func New(cat *catalogue.Catalogue, settings RoutingSettings, log logger.Logger) (*TransportRouter, error) {
	if log == nil {
		log = logger.Nop()
	}
	if settings.BusWaitTime < 0 || settings.BusVelocity <= 0 {
		return nil, fmt.Errorf("wait %v min, velocity %v km/h: %w", settings.BusWaitTime, settings.BusVelocity, ErrInvalidSettings)
	}

	r := &TransportRouter{
		settings: settings,
		vertices: make(map[string]graph.VertexID, cat.StopCount()),
	}

	for _, stop := range cat.AllStops() {
		r.vertices[stop.Name] = graph.VertexID(len(r.stops))
		r.stops = append(r.stops, stop.Name)
	}
	r.graph = graph.New(len(r.stops))

	for _, bus := range cat.AllBuses() {
		if len(bus.Stops) == 0 {
			log.Debug("Skipping bus without stops", "bus", bus.Name)
			continue
		}
		if err := r.addBusEdges(cat, bus); err != nil {
			return nil, fmt.Errorf("building edges for bus %q: %w", bus.Name, err)
		}
	}

	r.router = graph.NewRouter(r.graph)
	log.Info("Routing graph built",
		"vertices", r.graph.VertexCount(),
		"edges", r.graph.EdgeCount(),
		"wait_minutes", settings.BusWaitTime,
		"velocity_kmh", settings.BusVelocity)
	return r, nil
}

// addBusEdges adds one edge for every pair i < j of positions on the
// bus's physical path.
func (r *TransportRouter) addBusEdges(cat *catalogue.Catalogue, bus *catalogue.Bus) error {
	path := bus.PhysicalPath()
	speed := r.settings.metersPerMinute()

	for i := 0; i < len(path); i++ {
		meters := 0
		for j := i + 1; j < len(path); j++ {
			meters += cat.Distance(path[j-1], path[j])
			_, err := r.graph.AddEdge(graph.Edge{
				From:   r.vertices[path[i].Name],
				To:     r.vertices[path[j].Name],
				Weight: r.settings.BusWaitTime + float64(meters)/speed,
			})
			if err != nil {
				return err
			}
			r.labels = append(r.labels, edgeLabel{bus: bus.Name, span: j - i})
		}
	}
	return nil
}

// FindRoute returns the fastest itinerary between two stops of the
// catalogue the router was built from. ok is false when no route exists.
func (r *TransportRouter) FindRoute(from, to *catalogue.Stop) (Itinerary, bool) {
	if from == nil || to == nil {
		return Itinerary{}, false
	}
	fromID, ok := r.vertices[from.Name]
	if !ok {
		return Itinerary{}, false
	}
	toID, ok := r.vertices[to.Name]
	if !ok {
		return Itinerary{}, false
	}

	route, ok := r.router.BuildRoute(fromID, toID)
	if !ok {
		return Itinerary{}, false
	}

	itinerary := Itinerary{
		TotalTime: route.Weight,
		Items:     make([]Item, 0, 2*len(route.Edges)),
	}
	for _, edgeID := range route.Edges {
		edge := r.graph.Edge(edgeID)
		label := r.labels[edgeID]
		itinerary.Items = append(itinerary.Items,
			Item{
				Type:     ItemWait,
				StopName: r.stops[edge.From],
				Time:     r.settings.BusWaitTime,
			},
			Item{
				Type:      ItemBus,
				Bus:       label.bus,
				SpanCount: label.span,
				Time:      edge.Weight - r.settings.BusWaitTime,
			})
	}
	return itinerary, true
}

// Settings returns the settings the router was built with.
func (r *TransportRouter) Settings() RoutingSettings { return r.settings }

// VertexCount is the number of stops in the graph.
func (r *TransportRouter) VertexCount() int { return r.graph.VertexCount() }

// EdgeCount is the number of synthesized ride edges, one per ordered pair of
// positions along each bus's path.
func (r *TransportRouter) EdgeCount() int { return r.graph.EdgeCount() }
