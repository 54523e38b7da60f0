package requests

import (
	"fmt"

	"github.com/transport-catalogue/internal/catalogue"
	"github.com/transport-catalogue/internal/renderer"
	"github.com/transport-catalogue/internal/router"
)

// NotFoundMessage is the error_message of every negative answer.
const NotFoundMessage = "not found"

type ErrorResponse struct {
	RequestID    int    `json:"request_id"`
	ErrorMessage string `json:"error_message"`
}

type StopResponse struct {
	RequestID int      `json:"request_id"`
	Buses     []string `json:"buses"`
}

type BusResponse struct {
	RequestID       int     `json:"request_id"`
	Curvature       float64 `json:"curvature"`
	RouteLength     int     `json:"route_length"`
	StopCount       int     `json:"stop_count"`
	UniqueStopCount int     `json:"unique_stop_count"`
}

type WaitItem struct {
	Type     string  `json:"type"`
	StopName string  `json:"stop_name"`
	Time     float64 `json:"time"`
}

type RideItem struct {
	Type      string  `json:"type"`
	Bus       string  `json:"bus"`
	SpanCount int     `json:"span_count"`
	Time      float64 `json:"time"`
}

type RouteResponse struct {
	RequestID int           `json:"request_id"`
	TotalTime float64       `json:"total_time"`
	Items     []interface{} `json:"items"`
}

type MapResponse struct {
	RequestID int    `json:"request_id"`
	Map       string `json:"map"`
}

// Handler answers stat requests against a loaded network. The router and
// renderer are optional; requests that need a missing one fail.
type Handler struct {
	cat      *catalogue.Catalogue
	router   *router.TransportRouter
	renderer *renderer.MapRenderer
}

func NewHandler(cat *catalogue.Catalogue, r *router.TransportRouter, m *renderer.MapRenderer) *Handler {
	return &Handler{cat: cat, router: r, renderer: m}
}

// Handle answers one request. Absent stops, buses and routes produce an
// ErrorResponse, not an error; errors are reserved for malformed requests
// and rendering failures.
func (h *Handler) Handle(req StatRequest) (interface{}, error) {
	switch req.Type {
	case TypeStop:
		return h.stop(req), nil
	case TypeBus:
		return h.bus(req)
	case TypeRoute:
		return h.route(req)
	case TypeMap:
		return h.drawMap(req)
	default:
		return nil, fmt.Errorf("request %d: unknown type %q: %w", req.ID, req.Type, ErrMalformedRequest)
	}
}

// HandleAll answers requests in order.
func (h *Handler) HandleAll(reqs []StatRequest) ([]interface{}, error) {
	responses := make([]interface{}, 0, len(reqs))
	for _, req := range reqs {
		resp, err := h.Handle(req)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// IsNotFound reports whether resp is a negative answer.
func IsNotFound(resp interface{}) bool {
	_, ok := resp.(ErrorResponse)
	return ok
}

func notFound(id int) ErrorResponse {
	return ErrorResponse{RequestID: id, ErrorMessage: NotFoundMessage}
}

func (h *Handler) stop(req StatRequest) interface{} {
	stop, ok := h.cat.FindStop(req.Name)
	if !ok {
		return notFound(req.ID)
	}
	buses := h.cat.BusesForStop(stop)
	if buses == nil {
		buses = []string{}
	}
	return StopResponse{RequestID: req.ID, Buses: buses}
}

func (h *Handler) bus(req StatRequest) (interface{}, error) {
	if _, ok := h.cat.FindBus(req.Name); !ok {
		return notFound(req.ID), nil
	}
	stats, err := h.cat.Stats(req.Name)
	if err != nil {
		return nil, fmt.Errorf("request %d: %w", req.ID, err)
	}
	return BusResponse{
		RequestID:       req.ID,
		Curvature:       stats.Curvature,
		RouteLength:     stats.RouteLength,
		StopCount:       stats.StopCount,
		UniqueStopCount: stats.UniqueStopCount,
	}, nil
}

func (h *Handler) route(req StatRequest) (interface{}, error) {
	if h.router == nil {
		return nil, fmt.Errorf("request %d: route requested without routing settings", req.ID)
	}
	from, ok := h.cat.FindStop(req.From)
	if !ok {
		return notFound(req.ID), nil
	}
	to, ok := h.cat.FindStop(req.To)
	if !ok {
		return notFound(req.ID), nil
	}
	itinerary, ok := h.router.FindRoute(from, to)
	if !ok {
		return notFound(req.ID), nil
	}

	resp := RouteResponse{
		RequestID: req.ID,
		TotalTime: itinerary.TotalTime,
		Items:     make([]interface{}, 0, len(itinerary.Items)),
	}
	for _, item := range itinerary.Items {
		switch item.Type {
		case router.ItemWait:
			resp.Items = append(resp.Items, WaitItem{Type: string(item.Type), StopName: item.StopName, Time: item.Time})
		case router.ItemBus:
			resp.Items = append(resp.Items, RideItem{Type: string(item.Type), Bus: item.Bus, SpanCount: item.SpanCount, Time: item.Time})
		}
	}
	return resp, nil
}

func (h *Handler) drawMap(req StatRequest) (interface{}, error) {
	if h.renderer == nil {
		return nil, fmt.Errorf("request %d: map requested without render settings", req.ID)
	}
	svg, err := h.renderer.Render(h.cat)
	if err != nil {
		return nil, fmt.Errorf("request %d: %w", req.ID, err)
	}
	return MapResponse{RequestID: req.ID, Map: svg}, nil
}

// Catalogue returns the network the handler answers for.
func (h *Handler) Catalogue() *catalogue.Catalogue {
	return h.cat
}

// Renderer returns the map renderer, or nil when maps are not served.
func (h *Handler) Renderer() *renderer.MapRenderer {
	return h.renderer
}
