package requests

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transport-catalogue/internal/common/logger"
	"github.com/transport-catalogue/internal/renderer"
	"github.com/transport-catalogue/internal/router"
)

const sampleBatch = `{
  "base_requests": [
    {"type": "Bus", "name": "297", "stops": ["Biryulyovo Zapadnoye", "Biryulyovo Tovarnaya", "Universam", "Biryulyovo Zapadnoye"], "is_roundtrip": true},
    {"type": "Bus", "name": "635", "stops": ["Biryulyovo Tovarnaya", "Universam", "Prazhskaya"], "is_roundtrip": false},
    {"type": "Stop", "name": "Biryulyovo Zapadnoye", "latitude": 55.574371, "longitude": 37.6517, "road_distances": {"Biryulyovo Tovarnaya": 2600}},
    {"type": "Stop", "name": "Universam", "latitude": 55.587655, "longitude": 37.645687, "road_distances": {"Biryulyovo Tovarnaya": 1380, "Biryulyovo Zapadnoye": 2500, "Prazhskaya": 4650}},
    {"type": "Stop", "name": "Biryulyovo Tovarnaya", "latitude": 55.592028, "longitude": 37.653656, "road_distances": {"Universam": 890}},
    {"type": "Stop", "name": "Prazhskaya", "latitude": 55.611717, "longitude": 37.603938, "road_distances": {}},
    {"type": "Stop", "name": "Lonely", "latitude": 55.6, "longitude": 37.6, "road_distances": {}}
  ],
  "routing_settings": {"bus_wait_time": 2, "bus_velocity": 30},
  "stat_requests": [
    {"id": 1, "type": "Bus", "name": "297"},
    {"id": 2, "type": "Bus", "name": "635"},
    {"id": 3, "type": "Stop", "name": "Universam"},
    {"id": 4, "type": "Route", "from": "Biryulyovo Zapadnoye", "to": "Universam"},
    {"id": 5, "type": "Route", "from": "Biryulyovo Zapadnoye", "to": "Prazhskaya"},
    {"id": 6, "type": "Stop", "name": "Lonely"},
    {"id": 7, "type": "Stop", "name": "Nowhere"},
    {"id": 8, "type": "Bus", "name": "999"},
    {"id": 9, "type": "Route", "from": "Lonely", "to": "Universam"},
    {"id": 10, "type": "Route", "from": "Universam", "to": "Universam"},
    {"id": 11, "type": "Map"}
  ]
}`

func runBatch(t *testing.T, input string) []map[string]interface{} {
	t.Helper()
	p := NewProcessor(Defaults{
		Routing: router.RoutingSettings{BusWaitTime: 6, BusVelocity: 40},
		Render:  renderer.DefaultRenderSettings(),
	}, logger.Nop())

	var out bytes.Buffer
	require.NoError(t, p.Process(strings.NewReader(input), &out))

	var responses []map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &responses))
	return responses
}

func TestProcessSampleBatch(t *testing.T) {
	responses := runBatch(t, sampleBatch)
	require.Len(t, responses, 11)

	for i, resp := range responses {
		assert.EqualValues(t, i+1, resp["request_id"], "responses keep request order")
	}

	bus297 := responses[0]
	assert.EqualValues(t, 4, bus297["stop_count"])
	assert.EqualValues(t, 3, bus297["unique_stop_count"])
	assert.EqualValues(t, 5990, bus297["route_length"])
	assert.InDelta(t, 1.42963, bus297["curvature"], 1e-5)

	bus635 := responses[1]
	assert.EqualValues(t, 5, bus635["stop_count"])
	assert.EqualValues(t, 3, bus635["unique_stop_count"])
	assert.EqualValues(t, 11570, bus635["route_length"])
	assert.InDelta(t, 1.30156, bus635["curvature"], 1e-5)

	assert.Equal(t, []interface{}{"297", "635"}, responses[2]["buses"])

	route := responses[3]
	assert.InDelta(t, 8.98, route["total_time"], 1e-9)
	items := route["items"].([]interface{})
	require.Len(t, items, 2)
	wait := items[0].(map[string]interface{})
	assert.Equal(t, "Wait", wait["type"])
	assert.Equal(t, "Biryulyovo Zapadnoye", wait["stop_name"])
	assert.EqualValues(t, 2, wait["time"])
	ride := items[1].(map[string]interface{})
	assert.Equal(t, "Bus", ride["type"])
	assert.Equal(t, "297", ride["bus"])
	assert.EqualValues(t, 2, ride["span_count"])
	assert.InDelta(t, 6.98, ride["time"], 1e-9)

	transfer := responses[4]
	assert.InDelta(t, 20.28, transfer["total_time"], 1e-9)
	assert.Len(t, transfer["items"], 4)

	// a stop with no buses is found, with an empty list
	assert.Equal(t, []interface{}{}, responses[5]["buses"])

	for _, i := range []int{6, 7, 8} {
		assert.Equal(t, NotFoundMessage, responses[i]["error_message"], "request %d", i+1)
	}

	same := responses[9]
	assert.NotContains(t, same, "error_message")
	assert.EqualValues(t, 0, same["total_time"])
	assert.Equal(t, []interface{}{}, same["items"])

	svg, ok := responses[10]["map"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
}

func TestProcessDegenerateCurvature(t *testing.T) {
	responses := runBatch(t, `{
	  "base_requests": [
	    {"type": "Stop", "name": "A", "latitude": 0, "longitude": 0},
	    {"type": "Bus", "name": "solo", "stops": ["A"], "is_roundtrip": false}
	  ],
	  "stat_requests": [{"id": 1, "type": "Bus", "name": "solo"}]
	}`)
	require.Len(t, responses, 1)
	assert.EqualValues(t, 0, responses[0]["curvature"])
	assert.EqualValues(t, 1, responses[0]["stop_count"])
}

func TestProcessUsesDefaultsWhenSettingsMissing(t *testing.T) {
	responses := runBatch(t, `{
	  "base_requests": [
	    {"type": "Stop", "name": "A", "latitude": 0, "longitude": 0, "road_distances": {"B": 1000}},
	    {"type": "Stop", "name": "B", "latitude": 0, "longitude": 0},
	    {"type": "Bus", "name": "1", "stops": ["A", "B"], "is_roundtrip": true}
	  ],
	  "stat_requests": [{"id": 1, "type": "Route", "from": "A", "to": "B"}]
	}`)
	require.Len(t, responses, 1)
	assert.InDelta(t, 7.5, responses[0]["total_time"], 1e-9)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := map[string]string{
		"bad json":          `{"base_requests": [`,
		"unknown base type": `{"base_requests": [{"type": "Tram", "name": "x"}]}`,
		"missing name":      `{"base_requests": [{"type": "Stop"}]}`,
		"unknown stat type": `{"stat_requests": [{"id": 1, "type": "Weather"}]}`,
		"route without to":  `{"stat_requests": [{"id": 1, "type": "Route", "from": "A"}]}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestProcessFailsOnUnknownStopInBus(t *testing.T) {
	p := NewProcessor(Defaults{Routing: router.RoutingSettings{BusWaitTime: 1, BusVelocity: 1}}, nil)
	err := p.Process(strings.NewReader(`{
	  "base_requests": [{"type": "Bus", "name": "1", "stops": ["ghost"], "is_roundtrip": true}],
	  "stat_requests": []
	}`), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNetworkOrdersLoad(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleBatch))
	require.NoError(t, err)

	n := doc.Network()
	assert.Len(t, n.Stops, 5)
	assert.Len(t, n.Buses, 2)
	require.Len(t, n.Distances, 5)
	assert.Equal(t, "Universam", n.Distances[1].From)
	assert.Equal(t, "Biryulyovo Tovarnaya", n.Distances[1].To)
	assert.Equal(t, "Prazhskaya", n.Distances[3].To)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(notFound(3)))
	assert.False(t, IsNotFound(StopResponse{}))
}

func TestDefaultsResolve(t *testing.T) {
	defaults := Defaults{
		Routing: router.RoutingSettings{BusWaitTime: 6, BusVelocity: 40},
		Render:  renderer.DefaultRenderSettings(),
	}

	resolved := defaults.Resolve(&Document{})
	assert.Equal(t, defaults.Routing, resolved.Routing)
	assert.Equal(t, defaults.Render.Width, resolved.Render.Width)

	custom := renderer.DefaultRenderSettings()
	custom.Width = 640
	resolved = defaults.Resolve(&Document{
		RoutingSettings: &router.RoutingSettings{BusWaitTime: 1, BusVelocity: 20},
		RenderSettings:  &custom,
	})
	assert.Equal(t, router.RoutingSettings{BusWaitTime: 1, BusVelocity: 20}, resolved.Routing)
	assert.Equal(t, 640.0, resolved.Render.Width)
	assert.Equal(t, 1200.0, defaults.Render.Width, "defaults are not modified")
}
