package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/towersets/pkg/buildinfo"
	"github.com/matzehuels/towersets/pkg/errors"
	"github.com/matzehuels/towersets/pkg/partition"
	"github.com/matzehuels/towersets/pkg/pipeline"
)

type sequenceResponse struct {
	pipeline.SequenceDoc
	CacheHit bool `json:"cache_hit"`
}

type valueResponse struct {
	N          int    `json:"n"`
	LevelSizes []int  `json:"level_sizes"`
	Value      string `json:"value"`
}

type verifyResponse struct {
	MaxN       int                  `json:"max_n"`
	LevelSizes []int                `json:"level_sizes"`
	OK         bool                 `json:"ok"`
	Values     []string             `json:"values"`
	Mismatches []partition.Mismatch `json:"mismatches,omitempty"`
	CacheHit   bool                 `json:"cache_hit"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r.URL.Query().Get("n"), r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Sequence(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sequenceResponse{SequenceDoc: res.Doc(), CacheHit: res.CacheHit})
}

func (s *Server) handleValue(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(chi.URLParam(r, "n"), r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Sequence(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, valueResponse{
		N:          res.MaxN,
		LevelSizes: res.LevelSizes,
		Value:      res.Values[res.MaxN].String(),
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r.URL.Query().Get("n"), r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if opts.MaxN > pipeline.MaxVerifyN {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidArgument,
			"verify is limited to n <= %d, got %d", pipeline.MaxVerifyN, opts.MaxN))
		return
	}
	res, err := s.runner.Verify(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{
		MaxN:       res.MaxN,
		LevelSizes: res.LevelSizes,
		OK:         res.OK(),
		Values:     pipeline.DecimalStrings(res.Values),
		Mismatches: res.Mismatches,
		CacheHit:   res.CacheHit,
	})
}

// options parses n and the sizes query parameter. An empty n means
// pipeline.DefaultMaxN.
func (s *Server) options(rawN string, r *http.Request) (pipeline.Options, error) {
	opts := pipeline.Options{
		MaxN:       pipeline.DefaultMaxN,
		LevelSizes: s.opts.LevelSizes,
		Workers:    s.opts.Workers,
	}
	if rawN = strings.TrimSpace(rawN); rawN != "" {
		n, err := strconv.Atoi(rawN)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidArgument, "n must be an integer, got %q", rawN)
		}
		opts.MaxN = n
	}
	if opts.MaxN > s.opts.MaxN {
		return opts, errors.New(errors.ErrCodeInvalidArgument,
			"n is limited to %d on this server, got %d", s.opts.MaxN, opts.MaxN)
	}
	if raw := r.URL.Query().Get("sizes"); raw != "" {
		sizes, err := errors.ParseLevelSizes(raw)
		if err != nil {
			return opts, err
		}
		opts.LevelSizes = sizes
	}
	return opts, nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		// The client is usually gone; nothing to report.
		s.opts.Logger.Debug("request cancelled", "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "err", err)
		writeError(w, http.StatusServiceUnavailable, codeCanceled, "request cancelled before the computation finished")
		return
	}
	status := statusFor(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	if status >= http.StatusInternalServerError {
		s.opts.Logger.Error("request failed", "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "err", err)
	}
	writeError(w, status, code, errors.UserMessage(err))
}

const codeCanceled = "CANCELED"

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidArgument, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
