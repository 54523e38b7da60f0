// Package requests reads a JSON request batch, loads the network it
// describes and answers its stat requests.
package requests

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/transport-catalogue/internal/renderer"
	"github.com/transport-catalogue/internal/router"
	"github.com/transport-catalogue/pkg/transit/models"
)

// Request types, shared by base and stat requests where they overlap.
const (
	TypeStop  = "Stop"
	TypeBus   = "Bus"
	TypeRoute = "Route"
	TypeMap   = "Map"
)

var ErrMalformedRequest = errors.New("malformed request")

// Document is one input batch.
type Document struct {
	BaseRequests    []BaseRequest            `json:"base_requests"`
	StatRequests    []StatRequest            `json:"stat_requests"`
	RenderSettings  *renderer.RenderSettings `json:"render_settings,omitempty"`
	RoutingSettings *router.RoutingSettings  `json:"routing_settings,omitempty"`
}

// BaseRequest describes a stop or a bus. Fields that do not apply to the
// type are ignored.
type BaseRequest struct {
	Type          string         `json:"type"`
	Name          string         `json:"name"`
	Latitude      float64        `json:"latitude"`
	Longitude     float64        `json:"longitude"`
	RoadDistances map[string]int `json:"road_distances,omitempty"`
	Stops         []string       `json:"stops,omitempty"`
	IsRoundTrip   bool           `json:"is_roundtrip"`
}

// StatRequest is a query. Name is used by Stop and Bus, From and To by Route.
type StatRequest struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Decode reads and checks a document.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding request document: %w", err)
	}
	if err := doc.check(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) check() error {
	for i, req := range d.BaseRequests {
		switch req.Type {
		case TypeStop, TypeBus:
		default:
			return fmt.Errorf("base request %d: unknown type %q: %w", i, req.Type, ErrMalformedRequest)
		}
		if req.Name == "" {
			return fmt.Errorf("base request %d: missing name: %w", i, ErrMalformedRequest)
		}
	}
	for i, req := range d.StatRequests {
		switch req.Type {
		case TypeStop, TypeBus:
			if req.Name == "" {
				return fmt.Errorf("stat request %d (id %d): missing name: %w", i, req.ID, ErrMalformedRequest)
			}
		case TypeRoute:
			if req.From == "" || req.To == "" {
				return fmt.Errorf("stat request %d (id %d): missing from/to: %w", i, req.ID, ErrMalformedRequest)
			}
		case TypeMap:
		default:
			return fmt.Errorf("stat request %d (id %d): unknown type %q: %w", i, req.ID, req.Type, ErrMalformedRequest)
		}
	}
	return nil
}

// Network converts the base requests into a network. Distances of one stop
// are ordered by destination name.
func (d *Document) Network() *models.Network {
	n := &models.Network{}
	for _, req := range d.BaseRequests {
		if req.Type != TypeStop {
			continue
		}
		n.Stops = append(n.Stops, models.Stop{Name: req.Name, Latitude: req.Latitude, Longitude: req.Longitude})

		destinations := maps.Keys(req.RoadDistances)
		slices.Sort(destinations)
		for _, to := range destinations {
			n.Distances = append(n.Distances, models.Distance{From: req.Name, To: to, Meters: req.RoadDistances[to]})
		}
	}
	for _, req := range d.BaseRequests {
		if req.Type != TypeBus {
			continue
		}
		n.Buses = append(n.Buses, models.Bus{Name: req.Name, Stops: req.Stops, IsRoundTrip: req.IsRoundTrip})
	}
	return n
}

// NeedsMap reports whether any stat request asks for the map.
func (d *Document) NeedsMap() bool {
	for _, req := range d.StatRequests {
		if req.Type == TypeMap {
			return true
		}
	}
	return false
}
