package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/twpayne/go-polyline"

	"osm_spt/pkg/routing"
	"osm_spt/pkg/style"
)

const maxBodyBytes = 1024

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	router   routing.Router
	stats    StatsResponse
	metrics  *Metrics
	validate *validator.Validate
	trans    ut.Translator
}

// NewHandlers creates handlers with the given router.
func NewHandlers(router routing.Router, stats StatsResponse, m *Metrics) *Handlers {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	return &Handlers{
		router:   router,
		stats:    stats,
		metrics:  m,
		validate: validate,
		trans:    trans,
	}
}

// bind decodes and validates the request body into data, writing the error
// response itself when it fails.
func (h *Handlers) bind(w http.ResponseWriter, r *http.Request, data render.Binder) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return false
	}
	if err := h.validate.Struct(data); err != nil {
		render.Render(w, r, ErrValidation(err, translateError(err, h.trans)))
		return false
	}
	return true
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	req := &RouteRequest{}
	if !h.bind(w, r, req) {
		return
	}

	result, err := h.router.Route(r.Context(), toLatLng(req.Start), toLatLng(req.End))
	h.metrics.observeQuery("route", h.router.Queue().String(), err)
	if err != nil {
		render.Render(w, r, queryError(err))
		return
	}

	geom := make([]LatLngJSON, len(result.Geometry))
	coords := make([][]float64, len(result.Geometry))
	for i, ll := range result.Geometry {
		geom[i] = LatLngJSON{Lat: ll.Lat, Lng: ll.Lng}
		coords[i] = []float64{ll.Lat, ll.Lng}
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RouteResponse{
		TotalDistanceMeters: result.TotalDistanceMeters,
		NumNodes:            len(result.Nodes),
		Polyline:            string(polyline.EncodeCoords(coords)),
		Geometry:            geom,
		Queue:               h.router.Queue().String(),
	})
}

// HandleTree handles POST /api/v1/tree. It answers with a GeoJSON
// FeatureCollection coloured by distance, or with the path to dest
// highlighted when dest is given.
func (h *Handlers) HandleTree(w http.ResponseWriter, r *http.Request) {
	req := &TreeRequest{}
	if !h.bind(w, r, req) {
		return
	}

	var dest uint32
	if req.Dest != nil {
		var err error
		if dest, err = h.router.Snap(toLatLng(req.Dest)); err != nil {
			render.Render(w, r, queryError(err))
			return
		}
	}

	tree, err := h.router.Tree(r.Context(), toLatLng(req.Origin))
	h.metrics.observeQuery("tree", h.router.Queue().String(), err)
	if err != nil {
		render.Render(w, r, queryError(err))
		return
	}

	g := h.router.Graph()
	s := style.Gradient(tree.Dist)
	if req.Dest != nil {
		if !tree.Reachable(dest) {
			render.Render(w, r, queryError(routing.ErrNoRoute))
			return
		}
		s = style.HighlightPath[uint32](g, tree.Parent, dest)
	}
	s.Vertices[tree.Root] = style.Red

	render.Status(r, http.StatusOK)
	render.JSON(w, r, style.FeatureCollection(g, s))
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.stats)
}

func toLatLng(ll *LatLngJSON) routing.LatLng {
	return routing.LatLng{Lat: ll.Lat, Lng: ll.Lng}
}

// queryError maps engine errors to HTTP responses.
func queryError(err error) render.Renderer {
	switch {
	case errors.Is(err, routing.ErrPointTooFar):
		return ErrQuery(err, http.StatusUnprocessableEntity, "point_too_far_from_road")
	case errors.Is(err, routing.ErrNoRoute):
		return ErrQuery(err, http.StatusNotFound, "no_route_found")
	case errors.Is(err, routing.ErrEmptyGraph):
		return ErrQuery(err, http.StatusServiceUnavailable, "graph_empty")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrQuery(err, http.StatusServiceUnavailable, "request_timeout")
	}
	return ErrQuery(err, http.StatusInternalServerError, "internal_error")
}

func translateError(err error, trans ut.Translator) []error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}
	errs := make([]error, 0, len(verrs))
	for _, e := range verrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}
