package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/ibtopo/pkg/buildinfo"
	"github.com/matzehuels/ibtopo/pkg/errors"
	"github.com/matzehuels/ibtopo/pkg/pipeline"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

// handleRender runs the pipeline for a single format and returns the
// artifact bytes.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.optionsFromQuery(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		respondError(w, err)
		return
	}
	opts.Formats = []string{format}
	s.run(w, r, opts, format)
}

// handleTopology returns the filtered fabric model as JSON.
func (s *Server) handleTopology(w http.ResponseWriter, r *http.Request) {
	opts, err := s.optionsFromQuery(r.URL.Query())
	if err != nil {
		respondError(w, err)
		return
	}
	opts.Formats = []string{pipeline.FormatJSON}
	s.run(w, r, opts, pipeline.FormatJSON)
}

func (s *Server) run(w http.ResponseWriter, r *http.Request, opts pipeline.Options, format string) {
	opts.Logger = s.logger.With("id", RequestID(r.Context()))
	body := http.MaxBytesReader(w, r.Body, s.maxBody)

	result, err := s.runner.Execute(r.Context(), body, opts)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			respondStatus(w, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput,
				"dump exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		respondError(w, err)
		return
	}
	if ferr, failed := result.Failures[format]; failed {
		respondError(w, ferr)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("X-Fabric-Nodes", strconv.Itoa(result.Stats.ShownNodes))
	w.Header().Set("X-Fabric-Links", strconv.Itoa(result.Stats.ShownLinks))
	if len(result.CacheInfo.Hits) > 0 {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	if result.Stats.EmptyTopology {
		w.Header().Set("Warning", `199 ibtopo "no nodes or links recognized"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// optionsFromQuery overlays query parameters onto the server defaults.
//
// lid may be repeated or comma separated; boolean flags accept the
// strconv.ParseBool spellings.
func (s *Server) optionsFromQuery(q url.Values) (pipeline.Options, error) {
	opts := s.defaults
	opts.Formats = nil

	if vals, ok := q["lid"]; ok {
		opts.LIDs = nil
		for _, v := range vals {
			for _, tok := range strings.Split(v, ",") {
				lid, err := strconv.Atoi(strings.TrimSpace(tok))
				if err != nil {
					return opts, errors.New(errors.ErrCodeInvalidFilter, "invalid lid %q", tok)
				}
				opts.LIDs = append(opts.LIDs, lid)
			}
		}
	}
	if q.Has("host") {
		opts.Host = q.Get("host")
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"interconnect", &opts.Interconnect},
		{"hosts", &opts.HostsOnly},
		{"labels", &opts.Labels},
		{"guid", &opts.ShowGUID},
		{"no_color", &opts.NoColor},
	}
	for _, b := range bools {
		if !q.Has(b.key) {
			continue
		}
		v, err := strconv.ParseBool(q.Get(b.key))
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s value %q", b.key, q.Get(b.key))
		}
		*b.dst = v
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"layout", &opts.Layout},
		{"dialect", &opts.Dialect},
		{"switch_label", &opts.SwitchTemplate},
		{"host_label", &opts.EndpointTemplate},
	}
	for _, sv := range strs {
		if q.Has(sv.key) {
			*sv.dst = q.Get(sv.key)
		}
	}
	return opts, nil
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidFilter,
		errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidTemplate, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeRenderFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	respondStatus(w, statusFor(code), code, errors.UserMessage(err))
}

func respondStatus(w http.ResponseWriter, status int, code errors.Code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    string(code),
		Message: message,
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
