package catalogue

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transport-catalogue/internal/common/logger"
	"github.com/transport-catalogue/internal/geo"
)

func newTestCatalogue(t *testing.T, names ...string) *Catalogue {
	t.Helper()
	cat := New(logger.Nop())
	for i, name := range names {
		require.NoError(t, cat.AddStop(name, geo.Coordinates{Lat: 55.6 + float64(i)*0.01, Lng: 37.2}))
	}
	return cat
}

func TestAddStopRejectsDuplicate(t *testing.T) {
	cat := newTestCatalogue(t, "A")

	err := cat.AddStop("A", geo.Coordinates{Lat: 1, Lng: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateStop))

	stop, ok := cat.FindStop("A")
	require.True(t, ok)
	assert.Equal(t, 55.6, stop.Coordinates.Lat, "coordinates must not be overwritten")
	assert.Equal(t, 1, cat.StopCount())
}

func TestAddDistanceUnknownStop(t *testing.T) {
	cat := newTestCatalogue(t, "A")

	err := cat.AddDistance("A", "Z", 100)
	assert.ErrorIs(t, err, ErrUnknownStop)

	err = cat.AddDistance("Z", "A", 100)
	assert.ErrorIs(t, err, ErrUnknownStop)
}

func TestAddBusUnknownStop(t *testing.T) {
	cat := newTestCatalogue(t, "A", "B")

	err := cat.AddBus("1", []string{"A", "X", "B"}, false)
	assert.ErrorIs(t, err, ErrUnknownStop)

	_, ok := cat.FindBus("1")
	assert.False(t, ok, "a failed AddBus must not store the bus")
	a, _ := cat.FindStop("A")
	assert.Empty(t, cat.BusesForStop(a))
}

func TestFindMissing(t *testing.T) {
	cat := newTestCatalogue(t)

	stop, ok := cat.FindStop("nowhere")
	assert.False(t, ok)
	assert.Nil(t, stop)

	bus, ok := cat.FindBus("nothing")
	assert.False(t, ok)
	assert.Nil(t, bus)
}

func TestDistanceFallback(t *testing.T) {
	tests := []struct {
		name    string
		forward int // 0 means not recorded
		reverse int
		wantAB  int
		wantBA  int
	}{
		{name: "both recorded", forward: 100, reverse: 250, wantAB: 100, wantBA: 250},
		{name: "forward only", forward: 100, wantAB: 100, wantBA: 100},
		{name: "reverse only", reverse: 250, wantAB: 250, wantBA: 250},
		{name: "neither", wantAB: 0, wantBA: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := newTestCatalogue(t, "A", "B")
			if tt.forward != 0 {
				require.NoError(t, cat.AddDistance("A", "B", tt.forward))
			}
			if tt.reverse != 0 {
				require.NoError(t, cat.AddDistance("B", "A", tt.reverse))
			}
			a, _ := cat.FindStop("A")
			b, _ := cat.FindStop("B")
			assert.Equal(t, tt.wantAB, cat.Distance(a, b))
			assert.Equal(t, tt.wantBA, cat.Distance(b, a))
		})
	}
}

func TestDistanceLastWriteWins(t *testing.T) {
	cat := newTestCatalogue(t, "A", "B")
	require.NoError(t, cat.AddDistance("A", "B", 100))
	require.NoError(t, cat.AddDistance("A", "B", 300))

	a, _ := cat.FindStop("A")
	b, _ := cat.FindStop("B")
	assert.Equal(t, 300, cat.Distance(a, b))
}

func TestStopCount(t *testing.T) {
	tests := []struct {
		stops     []string
		roundTrip bool
		want      int
	}{
		{stops: []string{"A", "B", "C", "A"}, roundTrip: true, want: 4},
		{stops: []string{"A", "B", "C"}, roundTrip: false, want: 5},
		{stops: []string{"A", "B"}, roundTrip: false, want: 3},
		{stops: []string{"A"}, roundTrip: false, want: 1},
		{stops: []string{"A"}, roundTrip: true, want: 1},
	}

	for _, tt := range tests {
		cat := newTestCatalogue(t, "A", "B", "C")
		require.NoError(t, cat.AddBus("bus", tt.stops, tt.roundTrip))

		stats, err := cat.Stats("bus")
		require.NoError(t, err)
		assert.Equal(t, tt.want, stats.StopCount, "stops=%v roundtrip=%v", tt.stops, tt.roundTrip)
	}
}

func TestStatsExample(t *testing.T) {
	cat := New(logger.Nop())
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, cat.AddStop(name, geo.Coordinates{}))
	}
	require.NoError(t, cat.AddDistance("A", "B", 1000))
	require.NoError(t, cat.AddDistance("B", "C", 1000))
	require.NoError(t, cat.AddBus("1", []string{"A", "B", "C"}, true))

	stats, err := cat.Stats("1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.StopCount)
	assert.Equal(t, 3, stats.UniqueStopCount)
	assert.Equal(t, 2000, stats.RouteLength)
	assert.True(t, stats.Degenerate())
	assert.Zero(t, stats.Curvature)

	_, err = cat.Curvature("1")
	assert.ErrorIs(t, err, ErrDegenerateRoute)
}

func TestStatsThereAndBack(t *testing.T) {
	cat := New(logger.Nop())
	require.NoError(t, cat.AddStop("A", geo.Coordinates{Lat: 0, Lng: 0}))
	require.NoError(t, cat.AddStop("B", geo.Coordinates{Lat: 0, Lng: 1}))
	require.NoError(t, cat.AddDistance("A", "B", 120000))
	require.NoError(t, cat.AddDistance("B", "A", 130000))
	require.NoError(t, cat.AddBus("750", []string{"A", "B"}, false))

	stats, err := cat.Stats("750")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.StopCount)
	assert.Equal(t, 2, stats.UniqueStopCount)
	assert.Equal(t, 250000, stats.RouteLength)

	oneWay := geo.ComputeDistance(geo.Coordinates{}, geo.Coordinates{Lng: 1})
	assert.InDelta(t, 2*oneWay, stats.GeographicLength, 1e-6)
	assert.InDelta(t, 250000/(2*oneWay), stats.Curvature, 1e-9)

	curvature, err := cat.Curvature("750")
	require.NoError(t, err)
	assert.Equal(t, stats.Curvature, curvature)
}

func TestStatsUnknownBus(t *testing.T) {
	cat := newTestCatalogue(t)
	_, err := cat.Stats("nope")
	assert.ErrorIs(t, err, ErrUnknownBus)

	_, err = cat.Curvature("nope")
	assert.ErrorIs(t, err, ErrUnknownBus)
}

func TestStatsEmptyBus(t *testing.T) {
	cat := newTestCatalogue(t)
	require.NoError(t, cat.AddBus("ghost", nil, false))

	stats, err := cat.Stats("ghost")
	require.NoError(t, err)
	assert.Equal(t, BusStats{}, stats)
}

func TestBusesForStopSorted(t *testing.T) {
	cat := newTestCatalogue(t, "A", "B", "C")
	require.NoError(t, cat.AddBus("828", []string{"A", "B"}, false))
	require.NoError(t, cat.AddBus("256", []string{"B", "C", "B"}, true))
	require.NoError(t, cat.AddBus("14", []string{"B"}, false))

	b, _ := cat.FindStop("B")
	assert.Equal(t, []string{"14", "256", "828"}, cat.BusesForStop(b))

	c, _ := cat.FindStop("C")
	assert.Equal(t, []string{"256"}, cat.BusesForStop(c))
}

func TestAddBusRedefinition(t *testing.T) {
	cat := newTestCatalogue(t, "A", "B", "C")
	require.NoError(t, cat.AddBus("1", []string{"A", "B"}, false))
	require.NoError(t, cat.AddBus("1", []string{"B", "C"}, false))

	assert.Equal(t, 1, cat.BusCount())
	a, _ := cat.FindStop("A")
	assert.Empty(t, cat.BusesForStop(a))
	c, _ := cat.FindStop("C")
	assert.Equal(t, []string{"1"}, cat.BusesForStop(c))
}

func TestAllStopsAndBusesOrdered(t *testing.T) {
	cat := newTestCatalogue(t, "Zoo", "Airport", "Museum")
	require.NoError(t, cat.AddBus("b", []string{"Zoo"}, true))
	require.NoError(t, cat.AddBus("a", []string{"Museum"}, true))

	var stopNames []string
	for _, s := range cat.AllStops() {
		stopNames = append(stopNames, s.Name)
	}
	assert.Equal(t, []string{"Airport", "Museum", "Zoo"}, stopNames)

	var busNames []string
	for _, b := range cat.AllBuses() {
		busNames = append(busNames, b.Name)
	}
	assert.Equal(t, []string{"a", "b"}, busNames)
}

func TestPhysicalPath(t *testing.T) {
	cat := newTestCatalogue(t, "A", "B", "C")
	require.NoError(t, cat.AddBus("line", []string{"A", "B", "C"}, false))
	require.NoError(t, cat.AddBus("loop", []string{"A", "B", "C", "A"}, true))

	names := func(stops []*Stop) []string {
		out := make([]string, len(stops))
		for i, s := range stops {
			out[i] = s.Name
		}
		return out
	}

	line, _ := cat.FindBus("line")
	assert.Equal(t, []string{"A", "B", "C", "B", "A"}, names(line.PhysicalPath()))
	loop, _ := cat.FindBus("loop")
	assert.Equal(t, []string{"A", "B", "C", "A"}, names(loop.PhysicalPath()))
}

func TestDistancesVisitsAll(t *testing.T) {
	cat := newTestCatalogue(t, "A", "B")
	require.NoError(t, cat.AddDistance("A", "B", 1))
	require.NoError(t, cat.AddDistance("B", "A", 2))

	got := map[string]int{}
	cat.Distances(func(from, to string, meters int) {
		got[from+">"+to] = meters
	})
	assert.Equal(t, map[string]int{"A>B": 1, "B>A": 2}, got)
}
