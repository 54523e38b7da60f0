package catalogue

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/transport-catalogue/internal/common/logger"
	"github.com/transport-catalogue/internal/geo"
	"github.com/transport-catalogue/pkg/transit/models"
)

// Load builds a catalogue from n: all stops, then all distances, then all
// buses. The first integrity error aborts the load.
func Load(n *models.Network, log logger.Logger) (*Catalogue, error) {
	c := New(log)
	for _, s := range n.Stops {
		if err := c.AddStop(s.Name, geo.Coordinates{Lat: s.Latitude, Lng: s.Longitude}); err != nil {
			return nil, fmt.Errorf("loading network: %w", err)
		}
	}
	for _, d := range n.Distances {
		if err := c.AddDistance(d.From, d.To, d.Meters); err != nil {
			return nil, fmt.Errorf("loading network: %w", err)
		}
	}
	for _, b := range n.Buses {
		if err := c.AddBus(b.Name, b.Stops, b.IsRoundTrip); err != nil {
			return nil, fmt.Errorf("loading network: %w", err)
		}
	}
	c.log.Info("Catalogue loaded", "stops", c.StopCount(), "distances", len(c.distances), "buses", c.BusCount())
	return c, nil
}

// Export returns the catalogue as plain data, in name order, so that
// Load(Export()) reproduces it.
func (c *Catalogue) Export() *models.Network {
	n := &models.Network{}
	for _, s := range c.AllStops() {
		n.Stops = append(n.Stops, models.Stop{
			Name:      s.Name,
			Latitude:  s.Coordinates.Lat,
			Longitude: s.Coordinates.Lng,
		})
	}
	c.Distances(func(from, to string, meters int) {
		n.Distances = append(n.Distances, models.Distance{From: from, To: to, Meters: meters})
	})
	slices.SortFunc(n.Distances, models.CompareDistances)
	for _, b := range c.AllBuses() {
		names := make([]string, len(b.Stops))
		for i, s := range b.Stops {
			names[i] = s.Name
		}
		n.Buses = append(n.Buses, models.Bus{Name: b.Name, Stops: names, IsRoundTrip: b.IsRoundTrip})
	}
	return n
}
