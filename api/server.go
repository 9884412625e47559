package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/qbridge-team/qbridge-engine/backend"
	"github.com/qbridge-team/qbridge-engine/circuit"
	"github.com/qbridge-team/qbridge-engine/common"
	"github.com/qbridge-team/qbridge-engine/core"
)

const JobAPIServerName = "job_api"

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// submitRequest is the body of POST /jobs and POST /state. Circuit carries
// the serialized circuit JSON verbatim.
type submitRequest struct {
	Circuit         jx.Raw
	Shots           int
	Level           int
	Seed            *int64
	Postprocess     bool
	SimplifyInitial bool
	ValidCheck      bool
}

func decodeSubmitRequest(data []byte) (*submitRequest, error) {
	req := &submitRequest{}
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "circuit":
			raw, err := d.Raw()
			if err != nil {
				return err
			}
			req.Circuit = raw
		case "shots":
			v, err := d.Int()
			if err != nil {
				return err
			}
			req.Shots = v
		case "level":
			v, err := d.Int()
			if err != nil {
				return err
			}
			req.Level = v
		case "seed":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Int64()
			if err != nil {
				return err
			}
			req.Seed = &v
		case "postprocess":
			v, err := d.Bool()
			if err != nil {
				return err
			}
			req.Postprocess = v
		case "simplify_initial":
			v, err := d.Bool()
			if err != nil {
				return err
			}
			req.SimplifyInitial = v
		case "valid_check":
			v, err := d.Bool()
			if err != nil {
				return err
			}
			req.ValidCheck = v
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

type handlePayload struct {
	Tag         string `json:"tag"`
	PostProcess string `json:"post_process"`
}

type handleRequest struct {
	Handle handlePayload `json:"handle"`
}

type submitResponse struct {
	Handle handlePayload `json:"handle"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type resultResponse struct {
	Counts core.Counts `json:"counts"`
}

type stateResponse struct {
	State [][2]float64 `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// JobAPIServerImpl serves the JSON job API over HTTP. It owns the shot and
// state backends built from the system container.
type JobAPIServerImpl struct {
	Host string `toml:"host"`
	Port string `toml:"port"`

	shot   *backend.ShotBackend
	state  *backend.StateBackend
	sc     *core.SystemComponents
	server *http.Server
	done   chan struct{}
}

func (s *JobAPIServerImpl) GetEmptyParams() interface{} {
	return s
}

func (s *JobAPIServerImpl) SetParams(p interface{}) error {
	if p == nil {
		zap.L().Debug("no params for job api server")
		return nil
	}
	mp, ok := p.(map[string]interface{})
	if !ok {
		return fmt.Errorf("failed to set params for job api server/params:%v", p)
	}
	if host, ok := mp["host"].(string); ok {
		s.Host = host
	}
	if port, ok := mp["port"].(string); ok {
		s.Port = port
	}
	return nil
}

func (s *JobAPIServerImpl) Setup() error {
	if s.Host == "" {
		s.Host = "localhost"
	}
	if s.Port == "" {
		s.Port = "8088"
	}
	address, err := common.ValidAddress(s.Host, s.Port)
	if err != nil {
		return err
	}
	s.sc = core.GetSystemComponents()
	if s.sc == nil {
		return fmt.Errorf("system components are not set up")
	}
	err = s.sc.Invoke(
		func(shot core.ShotTarget, state core.StateTarget) error {
			s.shot = backend.NewShotBackend(shot)
			s.state = backend.NewStateBackend(state)
			return nil
		})
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /jobs", s.handleSubmit)
	mux.HandleFunc("POST /jobs/status", s.handleStatus)
	mux.HandleFunc("POST /jobs/result", s.handleResult)
	mux.HandleFunc("POST /state", s.handleState)
	mux.HandleFunc("GET /targets", s.handleTargets)
	s.server = &http.Server{
		Addr:    address,
		Handler: mux,
	}
	s.done = make(chan struct{})
	zap.L().Info(fmt.Sprintf("job api server is ready/address:%s", address))
	return nil
}

func (s *JobAPIServerImpl) Serve() error {
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *JobAPIServerImpl) Shutdown() {
	close(s.done)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		zap.L().Error(fmt.Sprintf("failed to shut down job api server/reason:%s", err))
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	blob, err := jsonIter.Marshal(body)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal response/reason:%s", err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(blob)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrHandleNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrResultUnavailable), errors.Is(err, core.ErrStatusUnavailable):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidConfig), errors.Is(err, circuit.ErrInvalidRegister):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *JobAPIServerImpl) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req, err := decodeSubmitRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c, err := circuit.Deserialize(string(req.Circuit))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if c == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("request carries no circuit"))
		return
	}
	if err := s.shot.Compile(c, req.Level); err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	opts := backend.SubmitOptions{
		Seed:            req.Seed,
		Postprocess:     req.Postprocess,
		SimplifyInitial: req.SimplifyInitial,
		ValidCheck:      req.ValidCheck,
	}
	handles, err := s.shot.Submit(r.Context(), []*circuit.Circuit{c}, req.Shots, opts)
	if err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	h := handles[0]
	s.watch(h)
	writeJSON(w, http.StatusOK, submitResponse{
		Handle: handlePayload{Tag: h.Tag.String(), PostProcess: h.PostProcess},
	})
}

// watch fetches the result in the background and reports completion on the
// cache channel for the result writer.
func (s *JobAPIServerImpl) watch(h core.ResultHandle) {
	go func() {
		r, err := s.shot.Result(context.Background(), h)
		s.publish(core.CacheUpdate{Handle: h, Result: r, Err: err})
	}()
}

// publish hands an update to the result writer. The send gives up once the
// server shuts down so a missing consumer cannot leak the goroutine.
func (s *JobAPIServerImpl) publish(u core.CacheUpdate) {
	select {
	case s.sc.CacheChan <- u:
	case <-s.done:
	}
}

func parseHandle(body *handleRequest) (core.ResultHandle, error) {
	tag, err := uuid.Parse(body.Handle.Tag)
	if err != nil {
		return core.ResultHandle{}, fmt.Errorf("malformed handle tag %q", body.Handle.Tag)
	}
	postProcess := body.Handle.PostProcess
	if postProcess == "" {
		postProcess = "null"
	}
	return core.ResultHandle{Tag: tag, PostProcess: postProcess}, nil
}

func (s *JobAPIServerImpl) handleStatus(w http.ResponseWriter, r *http.Request) {
	var req handleRequest
	if err := jsonIter.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h, err := parseHandle(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	status, err := s.shot.CircuitStatus(r.Context(), h)
	if err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: status.String()})
}

func (s *JobAPIServerImpl) handleResult(w http.ResponseWriter, r *http.Request) {
	var req handleRequest
	if err := jsonIter.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h, err := parseHandle(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.shot.Result(r.Context(), h)
	if err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Counts: result.Counts()})
}

func (s *JobAPIServerImpl) handleState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	req, err := decodeSubmitRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c, err := circuit.Deserialize(string(req.Circuit))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if c == nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("request carries no circuit"))
		return
	}
	if err := s.state.Compile(c, req.Level); err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	opts := backend.SubmitOptions{
		SimplifyInitial: req.SimplifyInitial,
		ValidCheck:      req.ValidCheck,
	}
	state, err := s.state.GetState(r.Context(), c, opts)
	if err != nil {
		writeError(w, errStatus(err), err)
		return
	}
	amplitudes := make([][2]float64, len(state))
	for i, a := range state {
		amplitudes[i] = [2]float64{real(a), imag(a)}
	}
	writeJSON(w, http.StatusOK, stateResponse{State: amplitudes})
}

func (s *JobAPIServerImpl) handleTargets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, backend.AvailableTargets(s.sc, nil))
}
