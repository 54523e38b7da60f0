package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transport-catalogue/internal/common/logger"
	"github.com/transport-catalogue/pkg/transit/models"
)

var feedFiles = map[string]string{
	"stops.txt": "\ufeffstop_id,stop_name,stop_lat,stop_lon\n" +
		"s1,Central,55.75,37.61\n" +
		"s2,Market,55.76,37.62\n",
	"routes.txt": "route_id,route_short_name,route_long_name,route_type\n" +
		"r1,10,Central - Market,3\n",
	"trips.txt": "route_id,service_id,trip_id,direction_id\n" +
		"r1,wk,t1,0\n",
	"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence,shape_dist_traveled\n" +
		"t1,08:00:00,08:00:00,s1,1,0\n" +
		"t1,08:05:00,08:05:00,s2,2,\n",
}

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

type collected struct {
	stops     []*models.FeedStop
	routes    []*models.FeedRoute
	trips     []*models.FeedTrip
	stopTimes []*models.FeedStopTime
	files     []string
}

func (c *collected) callbacks() ParseCallbacks {
	return ParseCallbacks{
		OnStop:         func(s *models.FeedStop) error { c.stops = append(c.stops, s); return nil },
		OnRoute:        func(r *models.FeedRoute) error { c.routes = append(c.routes, r); return nil },
		OnTrip:         func(tr *models.FeedTrip) error { c.trips = append(c.trips, tr); return nil },
		OnStopTime:     func(st *models.FeedStopTime) error { c.stopTimes = append(c.stopTimes, st); return nil },
		OnFileComplete: func(name string) error { c.files = append(c.files, name); return nil },
	}
}

func TestParseZipFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.zip")
	require.NoError(t, os.WriteFile(path, buildZip(t, feedFiles), 0o644))

	var got collected
	require.NoError(t, New(logger.Nop()).ParseZip(context.Background(), path, got.callbacks()))

	assert.Equal(t, []string{"stops.txt", "routes.txt", "trips.txt", "stop_times.txt"}, got.files)

	require.Len(t, got.stops, 2)
	assert.Equal(t, &models.FeedStop{StopID: "s1", StopName: "Central", StopLat: 55.75, StopLon: 37.61}, got.stops[0])

	require.Len(t, got.routes, 1)
	assert.Equal(t, "10", got.routes[0].RouteShortName)
	assert.Equal(t, 3, got.routes[0].RouteType)

	require.Len(t, got.trips, 1)
	assert.Equal(t, "r1", got.trips[0].RouteID)

	require.Len(t, got.stopTimes, 2)
	assert.True(t, got.stopTimes[0].HasShapeDist)
	assert.False(t, got.stopTimes[1].HasShapeDist)
	assert.Equal(t, 2, got.stopTimes[1].StopSequence)
}

func TestParseNestedArchive(t *testing.T) {
	inner := buildZip(t, feedFiles)
	outer := buildZip(t, map[string]string{
		"1/google_transit.zip": string(buildZip(t, map[string]string{"stops.txt": "stop_id\n"})),
		"2/google_transit.zip": string(inner),
	})

	p := New(logger.Nop())
	p.NestedFeed = "2/"

	var got collected
	require.NoError(t, p.ParseBytes(context.Background(), outer, got.callbacks()))
	assert.Len(t, got.stops, 2)
}

func TestParseMissingFile(t *testing.T) {
	files := map[string]string{"stops.txt": feedFiles["stops.txt"]}
	err := New(logger.Nop()).ParseBytes(context.Background(), buildZip(t, files), ParseCallbacks{})
	assert.ErrorContains(t, err, "routes.txt")
}

func TestParseCallbackErrorStops(t *testing.T) {
	boom := assert.AnError
	err := New(logger.Nop()).ParseBytes(context.Background(), buildZip(t, feedFiles), ParseCallbacks{
		OnRoute: func(*models.FeedRoute) error { return boom },
	})
	assert.ErrorIs(t, err, boom)
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(logger.Nop()).ParseBytes(ctx, buildZip(t, feedFiles), ParseCallbacks{})
	assert.ErrorIs(t, err, context.Canceled)
}
