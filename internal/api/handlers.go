package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"

	"github.com/transport-catalogue/internal/requests"
)

const internalErrorMessage = "internal server error"

type healthResponse struct {
	Status string `json:"status"`
	Stops  int    `json:"stops"`
	Buses  int    `json:"buses"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	cat := s.handler.Catalogue()
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Stops: cat.StopCount(), Buses: cat.BusCount()})
}

func (s *Server) stop(w http.ResponseWriter, r *http.Request) {
	s.answer(w, requests.StatRequest{ID: requestID(r), Type: requests.TypeStop, Name: mux.Vars(r)["name"]})
}

func (s *Server) bus(w http.ResponseWriter, r *http.Request) {
	s.answer(w, requests.StatRequest{ID: requestID(r), Type: requests.TypeBus, Name: mux.Vars(r)["name"]})
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	req := requests.StatRequest{ID: requestID(r), Type: requests.TypeRoute, From: vars["from"], To: vars["to"]}

	key := "route\x00" + req.From + "\x00" + req.To
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			resp := cached.(requests.RouteResponse)
			resp.RequestID = req.ID
			writeJSON(w, http.StatusOK, resp)
			return
		}
	}

	resp, err := s.handler.Handle(req)
	if err != nil {
		s.fail(w, err)
		return
	}
	if routeResp, ok := resp.(requests.RouteResponse); ok && s.cache != nil {
		s.cache.Set(key, routeResp, cache.DefaultExpiration)
	}
	s.write(w, resp)
}

func (s *Server) drawMap(w http.ResponseWriter, r *http.Request) {
	const key = "map"
	var svg string
	if cached, ok := s.cacheGet(key); ok {
		svg = cached.(string)
	} else {
		resp, err := s.handler.Handle(requests.StatRequest{ID: requestID(r), Type: requests.TypeMap})
		if err != nil {
			s.fail(w, err)
			return
		}
		svg = resp.(requests.MapResponse).Map
		if s.cache != nil {
			s.cache.Set(key, svg, cache.DefaultExpiration)
		}
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(svg))
}

func (s *Server) cacheGet(key string) (interface{}, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *Server) answer(w http.ResponseWriter, req requests.StatRequest) {
	resp, err := s.handler.Handle(req)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.write(w, resp)
}

func (s *Server) write(w http.ResponseWriter, resp interface{}) {
	if requests.IsNotFound(resp) {
		writeJSON(w, http.StatusNotFound, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// fail logs err and answers with a generic message; internal details stay
// in the log.
func (s *Server) fail(w http.ResponseWriter, err error) {
	s.log.Error("Request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, requests.ErrorResponse{ErrorMessage: internalErrorMessage})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, requests.ErrorResponse{ErrorMessage: requests.NotFoundMessage})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, requests.ErrorResponse{ErrorMessage: "method not allowed"})
}

// requestID echoes the optional ?id= parameter as request_id.
func requestID(r *http.Request) int {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil {
		return 0
	}
	return id
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
