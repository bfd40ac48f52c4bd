package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/yegors/stdatmo/internal/airdata"
	"github.com/yegors/stdatmo/internal/atmosphere"
	"github.com/yegors/stdatmo/internal/config"
	"github.com/yegors/stdatmo/internal/gravity"
	"github.com/yegors/stdatmo/internal/observability"
	"github.com/yegors/stdatmo/internal/physics"
	"github.com/yegors/stdatmo/internal/profile"
	"github.com/yegors/stdatmo/internal/websocket"
	"github.com/yegors/stdatmo/pkg/logger"
)

// Endpoint labels used for metrics
const (
	endpointAtmosphere       = "atmosphere"
	endpointGravity          = "gravity"
	endpointAirData          = "airdata"
	endpointPressureAltitude = "pressure_altitude"
	endpointDensityAltitude  = "density_altitude"
	endpointProfile          = "profile"
	endpointStream           = "profile_stream"
)

var errBadParam = errors.New("invalid query parameter")

// Handler contains the API handlers
type Handler struct {
	config   *config.Config
	streamer *websocket.Streamer
	metrics  *observability.Metrics
	logger   *logger.Logger
}

// NewHandler creates a new API handler. metrics may be nil.
func NewHandler(config *config.Config, streamer *websocket.Streamer, metrics *observability.Metrics, logger *logger.Logger) *Handler {
	return &Handler{
		config:   config,
		streamer: streamer,
		metrics:  metrics,
		logger:   logger.Named("api-handler"),
	}
}

// AtmosphereResponse is the body of GET /api/v1/atmosphere
type AtmosphereResponse struct {
	atmosphere.State
	LayerKind    string `json:"layer_kind"`
	Extrapolated bool   `json:"extrapolated"`
}

// GravityResponse is the body of GET /api/v1/gravity
type GravityResponse struct {
	AltitudeM  float64 `json:"altitude_m"`
	GravityMs2 float64 `json:"gravity_ms2"`
}

// InverseAltitudeResponse is the body of the pressure and density altitude lookups
type InverseAltitudeResponse struct {
	Quantity   string  `json:"quantity"`
	Value      float64 `json:"value"`
	AltitudeM  float64 `json:"altitude_m"`
	AltitudeFt float64 `json:"altitude_ft"`
}

// ProfileResponse is the JSON body of GET /api/v1/profile
type ProfileResponse struct {
	Request websocket.StreamRequest `json:"request"`
	Summary profile.Summary         `json:"summary"`
	Samples []profile.Sample        `json:"samples"`
}

// LayerResponse describes one row of the layer table
type LayerResponse struct {
	atmosphere.Layer
	Index             int     `json:"index"`
	Kind              string  `json:"kind"`
	BaseGeometricAltM float64 `json:"base_geometric_altitude_m"`
}

// GetHealth returns the health status of the API
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := atmosphere.StandardLayers.Validate(); err != nil {
		status = "degraded"
		h.logger.Error("Layer table failed validation", logger.Error(err))
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":          status,
		"model":           "US Standard Atmosphere 1976",
		"ceiling_m":       h.config.Model.WarnAboveCeilingM,
		"min_altitude_m":  h.config.Model.FloorM(),
		"layer_count":     atmosphere.LayerCount,
		"metrics_enabled": h.config.Metrics.Enabled,
	})
}

// GetAtmosphere evaluates the atmosphere at ?altitude_m=
func (h *Handler) GetAtmosphere(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	alt, err := floatParam(r, "altitude_m", nil)
	if err != nil {
		h.fail(w, endpointAtmosphere, start, err)
		return
	}

	state, err := atmosphere.EvaluateChecked(alt, h.config.Model.FloorM())
	if err != nil {
		h.fail(w, endpointAtmosphere, start, err)
		return
	}

	if alt > h.config.Model.WarnAboveCeilingM {
		h.logger.Warn("Altitude above model ceiling, top layer extrapolated",
			logger.Float64("altitude_m", alt),
			logger.Float64("ceiling_m", h.config.Model.WarnAboveCeilingM))
	}
	if state.Extrapolated() && h.metrics != nil {
		h.metrics.Extrapolated.Inc()
	}

	h.observe(endpointAtmosphere, observability.OutcomeOK, start)
	WriteJSON(w, http.StatusOK, AtmosphereResponse{
		State:        state,
		LayerKind:    atmosphere.StandardLayers[state.Layer].Kind().String(),
		Extrapolated: state.Extrapolated(),
	})
}

// GetGravity evaluates gravity at ?altitude_m=
func (h *Handler) GetGravity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	alt, err := floatParam(r, "altitude_m", nil)
	if err != nil {
		h.fail(w, endpointGravity, start, err)
		return
	}

	g, err := gravity.GravityChecked(alt)
	if err != nil {
		h.fail(w, endpointGravity, start, err)
		return
	}

	h.observe(endpointGravity, observability.OutcomeOK, start)
	WriteJSON(w, http.StatusOK, GravityResponse{AltitudeM: alt, GravityMs2: g})
}

// GetAirData computes Mach, temperatures, dynamic pressure and CAS.
// Altitude is ?altitude_m= or ?altitude_ft=, airspeed is ?tas_ms= or ?tas_kt=.
func (h *Handler) GetAirData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	alt, err := unitParam(r, "altitude_m", "altitude_ft", physics.FeetToMeters)
	if err != nil {
		h.fail(w, endpointAirData, start, err)
		return
	}
	tas, err := unitParam(r, "tas_ms", "tas_kt", physics.KnotsToMs)
	if err != nil {
		h.fail(w, endpointAirData, start, err)
		return
	}

	report, err := airdata.Compute(alt, tas, h.config.Model.FloorM())
	if err != nil {
		h.fail(w, endpointAirData, start, err)
		return
	}

	h.observe(endpointAirData, observability.OutcomeOK, start)
	WriteJSON(w, http.StatusOK, report)
}

// GetPressureAltitude finds the standard altitude for ?pressure_pa=
func (h *Handler) GetPressureAltitude(w http.ResponseWriter, r *http.Request) {
	h.inverseAltitude(w, r, endpointPressureAltitude, "pressure_pa", airdata.PressureAltitude)
}

// GetDensityAltitude finds the standard altitude for ?density_kg_m3=
func (h *Handler) GetDensityAltitude(w http.ResponseWriter, r *http.Request) {
	h.inverseAltitude(w, r, endpointDensityAltitude, "density_kg_m3", airdata.DensityAltitude)
}

func (h *Handler) inverseAltitude(w http.ResponseWriter, r *http.Request, endpoint, param string, lookup func(float64) (float64, error)) {
	start := time.Now()

	v, err := floatParam(r, param, nil)
	if err != nil {
		h.fail(w, endpoint, start, err)
		return
	}
	alt, err := lookup(v)
	if err != nil {
		h.fail(w, endpoint, start, err)
		return
	}

	h.observe(endpoint, observability.OutcomeOK, start)
	WriteJSON(w, http.StatusOK, InverseAltitudeResponse{
		Quantity:   param,
		Value:      v,
		AltitudeM:  alt,
		AltitudeFt: alt * physics.MetersToFeet,
	})
}

// GetLayers returns the reference layer table
func (h *Handler) GetLayers(w http.ResponseWriter, r *http.Request) {
	layers := make([]LayerResponse, 0, atmosphere.LayerCount)
	for i, l := range atmosphere.StandardLayers {
		layers = append(layers, LayerResponse{
			Index:             i,
			Layer:             l,
			Kind:              l.Kind().String(),
			BaseGeometricAltM: atmosphere.GeometricAltitude(l.BaseHeightM),
		})
	}
	WriteJSON(w, http.StatusOK, layers)
}

// GetProfile sweeps ?from=&to=&step= and returns JSON or CSV (?format=csv)
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := h.parseProfileRequest(r)
	if err != nil {
		h.fail(w, endpointProfile, start, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		h.fail(w, endpointProfile, start, fmt.Errorf("%w: format must be json or csv", errBadParam))
		return
	}

	samples, err := profile.Sweep(r.Context(), req.FromM, req.ToM, req.StepM, h.config.Limits())
	if err != nil {
		h.fail(w, endpointProfile, start, err)
		return
	}

	summary, err := profile.Summarize(samples)
	if err != nil {
		h.fail(w, endpointProfile, start, err)
		return
	}

	h.observe(endpointProfile, observability.OutcomeOK, start)
	if h.metrics != nil {
		h.metrics.ProfileSamples.Observe(float64(len(samples)))
	}
	h.logger.Debug("Profile computed",
		logger.Int("samples", len(samples)),
		logger.Int("extrapolated", summary.ExtrapolatedSamples),
		logger.Duration("duration", time.Since(start)))

	if format == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="profile.csv"`)
		w.WriteHeader(http.StatusOK)
		if err := profile.WriteCSV(w, samples); err != nil {
			h.logger.Error("Failed to write profile CSV", logger.Error(err))
		}
		return
	}

	WriteJSON(w, http.StatusOK, ProfileResponse{Request: req, Summary: summary, Samples: samples})
}

// StreamProfile validates the sweep and hands the connection to the websocket streamer
func (h *Handler) StreamProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, err := h.parseProfileRequest(r)
	if err != nil {
		h.fail(w, endpointStream, start, err)
		return
	}

	conn, err := h.streamer.Upgrade(w, r)
	if err != nil {
		h.observe(endpointStream, observability.OutcomeBadRequest, start)
		return
	}

	h.observe(endpointStream, observability.OutcomeOK, start)
	h.streamer.Serve(r.Context(), conn, req)
}

func (h *Handler) parseProfileRequest(r *http.Request) (websocket.StreamRequest, error) {
	defaults := h.config.Profile

	from, err := floatParam(r, "from", &defaults.FromM)
	if err != nil {
		return websocket.StreamRequest{}, err
	}
	to, err := floatParam(r, "to", &defaults.ToM)
	if err != nil {
		return websocket.StreamRequest{}, err
	}
	step, err := floatParam(r, "step", &defaults.StepM)
	if err != nil {
		return websocket.StreamRequest{}, err
	}

	n, err := h.config.Limits().Check(from, to, step)
	if err != nil {
		return websocket.StreamRequest{}, err
	}
	return websocket.StreamRequest{FromM: from, ToM: to, StepM: step, Count: n}, nil
}

// floatParam parses a query parameter, falling back to def when it is absent
func floatParam(r *http.Request, name string, def *float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if def != nil {
			return *def, nil
		}
		return 0, fmt.Errorf("%w: %s is required", errBadParam, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a number", errBadParam, name, raw)
	}
	return v, nil
}

// unitParam reads a quantity given in SI units (si) or an alternative unit
// (alt) that is converted with factor. Exactly one of the two is required.
func unitParam(r *http.Request, si, alt string, factor float64) (float64, error) {
	q := r.URL.Query()
	hasSI, hasAlt := q.Get(si) != "", q.Get(alt) != ""
	switch {
	case hasSI && hasAlt:
		return 0, fmt.Errorf("%w: give only one of %s and %s", errBadParam, si, alt)
	case hasAlt:
		v, err := floatParam(r, alt, nil)
		if err != nil {
			return 0, err
		}
		return v * factor, nil
	case hasSI:
		return floatParam(r, si, nil)
	default:
		return 0, fmt.Errorf("%w: %s or %s is required", errBadParam, si, alt)
	}
}

func (h *Handler) fail(w http.ResponseWriter, endpoint string, start time.Time, err error) {
	status, outcome := http.StatusInternalServerError, "error"
	switch {
	case errors.Is(err, physics.ErrDomain), errors.Is(err, airdata.ErrNoSolution):
		status, outcome = http.StatusUnprocessableEntity, observability.OutcomeDomainError
	case errors.Is(err, errBadParam), errors.Is(err, profile.ErrInvalidRange):
		status, outcome = http.StatusBadRequest, observability.OutcomeBadRequest
	}

	h.observe(endpoint, outcome, start)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", logger.String("endpoint", endpoint), logger.Error(err))
	} else {
		h.logger.Debug("Request rejected", logger.String("endpoint", endpoint), logger.Error(err))
	}
	WriteJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) observe(endpoint, outcome string, start time.Time) {
	if h.metrics != nil {
		h.metrics.Observe(endpoint, outcome, time.Since(start).Seconds())
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
