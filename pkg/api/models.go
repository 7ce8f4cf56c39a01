package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
)

var errMissingCoord = errors.New("missing coordinates")

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// RouteRequest is the JSON body for POST /api/v1/route.
type RouteRequest struct {
	Start *LatLngJSON `json:"start" validate:"required"`
	End   *LatLngJSON `json:"end" validate:"required"`
}

func (req *RouteRequest) Bind(r *http.Request) error {
	if req.Start == nil || req.End == nil {
		return errMissingCoord
	}
	return nil
}

// TreeRequest is the JSON body for POST /api/v1/tree. When Dest is set the
// response highlights the path to it instead of the distance gradient.
type TreeRequest struct {
	Origin *LatLngJSON `json:"origin" validate:"required"`
	Dest   *LatLngJSON `json:"dest,omitempty" validate:"omitempty"`
}

func (req *TreeRequest) Bind(r *http.Request) error {
	if req.Origin == nil {
		return errMissingCoord
	}
	return nil
}

// RouteResponse is the JSON response for a successful route query.
type RouteResponse struct {
	TotalDistanceMeters float64      `json:"total_distance_meters"`
	NumNodes            int          `json:"num_nodes"`
	Polyline            string       `json:"polyline"`
	Geometry            []LatLngJSON `json:"geometry"`
	Queue               string       `json:"queue"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes uint32 `json:"num_nodes"`
	NumEdges uint32 `json:"num_edges"`
	Queue    string `json:"queue"`
	Locator  string `json:"locator"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrResponse is the JSON response for errors.
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText    string   `json:"status"`
	ErrorText     string   `json:"error,omitempty"`
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      "invalid_request",
	}
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := make([]string, 0, len(errV))
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      "invalid_coordinates",
		ErrValidation:  vv,
	}
}

// ErrQuery builds the response for a failed route or tree query.
func ErrQuery(err error, status int, code string) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: status,
		StatusText:     http.StatusText(status),
		ErrorText:      code,
	}
}
