package api

import (
	"net/http"

	"edgeaudit/internal/api/handler"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewProbeServer builds the router of a regional probe worker. A non-empty
// region pins every probe to that region regardless of the path.
func NewProbeServer(h *handler.Handler, region string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/probes/{region}", h.Auth.RequireBearer(func(w http.ResponseWriter, req *http.Request) {
		if region != "" {
			h.ProbeFixedRegion(region)(w, req)
			return
		}
		h.ProbeRegion(mux.Vars(req)["region"])(w, req)
	})).Methods("GET")
	r.HandleFunc("/healthz", handler.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return r
}
