package sqlproxy

import (
	"net/http"

	"query-proxy/pkg/req"
	"query-proxy/pkg/res"
)

type ControllerDeps struct {
	*Service
	Version      string
	MaxBodyBytes int64
}

type Controller struct {
	*Service
	version      string
	maxBodyBytes int64
}

func NewController(router *http.ServeMux, deps ControllerDeps) *Controller {
	c := &Controller{
		Service:      deps.Service,
		version:      deps.Version,
		maxBodyBytes: deps.MaxBodyBytes,
	}

	router.Handle("GET /info", c.Info())
	router.Handle("POST /query", c.Query())
	router.Handle("/", c.NotFound())
	return c
}

func (c *Controller) Info() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			c.NotFound()(w, r)
			return
		}
		res.Json(w, InfoResponse{Version: c.version}, http.StatusOK)
	}
}

func (c *Controller) Query() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := req.DecodeObject(w, r, c.maxBodyBytes)
		if err != nil {
			status, payload := BuildResponse(nil, err)
			res.Json(w, payload, status)
			return
		}

		execReq, err := ValidateRequest(body)
		if err != nil {
			status, payload := BuildResponse(nil, err)
			res.Json(w, payload, status)
			return
		}

		results, err := c.Service.Run(r.Context(), execReq)
		status, payload := BuildResponse(results, err)
		res.Json(w, payload, status)
	}
}

func (c *Controller) NotFound() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, payload := NotFoundResponse()
		res.Json(w, payload, status)
	}
}
