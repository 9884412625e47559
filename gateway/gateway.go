// Package gateway is the remote execution target: a JSON-over-HTTP client
// for an external QVM endpoint.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/qbridge-team/qbridge-engine/circuit"
	"github.com/qbridge-team/qbridge-engine/core"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultPollInterval = 500 * time.Millisecond

type Setting struct {
	Endpoint     string `toml:"endpoint"`
	APIKey       string `toml:"api_key"`
	PollInterval string `toml:"poll_interval"`
}

func NewSetting() Setting {
	return Setting{
		Endpoint: "http://localhost:5000",
	}
}

// Target submits programs to a remote QVM and polls for completion.
type Target struct {
	setting      Setting
	client       *http.Client
	pollInterval time.Duration

	lastDescriptor *core.TargetDescriptor
}

func NewTarget() *Target {
	return &Target{}
}

func (t *Target) Setup(conf *core.Conf) error {
	s, ok := core.GetComponentSetting("gateway")
	if !ok {
		zap.L().Debug("gateway setting is not found, using conf defaults")
		t.setting = NewSetting()
		if conf.GatewayEndpoint != "" {
			t.setting.Endpoint = conf.GatewayEndpoint
		}
		t.setting.APIKey = conf.GatewayAPIKey
	} else {
		mapped, ok := s.(map[string]interface{})
		if !ok {
			return fmt.Errorf("unexpected gateway setting format %v", s)
		}
		t.setting = NewSetting()
		if v, ok := mapped["endpoint"]; ok {
			t.setting.Endpoint = v.(string)
		}
		if v, ok := mapped["api_key"]; ok {
			t.setting.APIKey = v.(string)
		}
		if v, ok := mapped["poll_interval"]; ok {
			t.setting.PollInterval = v.(string)
		}
	}
	t.pollInterval = defaultPollInterval
	if t.setting.PollInterval != "" {
		d, err := time.ParseDuration(t.setting.PollInterval)
		if err != nil {
			return fmt.Errorf("bad poll_interval %q: %w", t.setting.PollInterval, err)
		}
		t.pollInterval = d
	}
	t.client = &http.Client{
		Transport: &loggingRoundTripper{next: http.DefaultTransport},
		Timeout:   30 * time.Second,
	}
	zap.L().Info(fmt.Sprintf("gateway target is ready/endpoint:%s", t.setting.Endpoint))
	return nil
}

type deviceResponse struct {
	Name       string             `json:"name"`
	NumQubits  int                `json:"num_qubits"`
	MaxShots   int                `json:"max_shots"`
	Edges      [][2]int           `json:"edges"`
	NodeErrors map[string]float64 `json:"node_errors"`
	EdgeErrors []edgeError        `json:"edge_errors"`
}

type edgeError struct {
	Edge  [2]int  `json:"edge"`
	Error float64 `json:"error"`
}

// Describe fetches the remote device descriptor. The last good answer is
// kept so a flaky endpoint does not wipe the target description mid-run.
func (t *Target) Describe() *core.TargetDescriptor {
	var dr deviceResponse
	if err := t.get(context.Background(), "/device", &dr); err != nil {
		zap.L().Error(fmt.Sprintf("failed to fetch device descriptor/reason:%s", err))
		if t.lastDescriptor != nil {
			return t.lastDescriptor
		}
		return &core.TargetDescriptor{Name: "gateway"}
	}
	nodes := make([]int, dr.NumQubits)
	for i := range nodes {
		nodes[i] = i
	}
	edges := make([]circuit.Edge, len(dr.Edges))
	for i, e := range dr.Edges {
		edges[i] = circuit.Edge{e[0], e[1]}
	}
	desc := &core.TargetDescriptor{
		Name:      dr.Name,
		NumQubits: dr.NumQubits,
		MaxShots:  dr.MaxShots,
		Arch:      circuit.NewArchitecture(nodes, edges),
	}
	if len(dr.NodeErrors) > 0 {
		desc.NodeErrors = make(map[int]float64, len(dr.NodeErrors))
		for k, v := range dr.NodeErrors {
			var n int
			if _, err := fmt.Sscanf(k, "%d", &n); err == nil {
				desc.NodeErrors[n] = v
			}
		}
	}
	if len(dr.EdgeErrors) > 0 {
		desc.EdgeErrors = make(map[circuit.Edge]float64, len(dr.EdgeErrors))
		for _, ee := range dr.EdgeErrors {
			desc.EdgeErrors[circuit.Edge{ee.Edge[0], ee.Edge[1]}.Normalize()] = ee.Error
		}
	}
	t.lastDescriptor = desc
	return desc
}

type submitRequest struct {
	Program string `json:"program"`
	Shots   int    `json:"shots"`
	Seed    *int64 `json:"seed,omitempty"`
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

func (t *Target) Submit(ctx context.Context, p *core.Program) (core.TargetJob, error) {
	req := submitRequest{
		Program: p.Text,
		Shots:   p.Shots,
		Seed:    p.Seed,
	}
	var res submitResponse
	if err := t.post(ctx, "/jobs", req, &res); err != nil {
		return nil, err
	}
	if res.JobID == "" {
		return nil, fmt.Errorf("gateway returned no job id")
	}
	zap.L().Debug(fmt.Sprintf("submitted job %s/shots:%d", res.JobID, p.Shots))
	return &remoteJob{target: t, id: res.JobID}, nil
}

type statusResponse struct {
	Status string `json:"status"`
}

type resultResponse struct {
	Readouts [][]int `json:"readouts"`
}

type remoteJob struct {
	target *Target
	id     string
}

func (j *remoteJob) ID() string { return j.id }

func (j *remoteJob) Status(ctx context.Context) (string, error) {
	var res statusResponse
	if err := j.target.get(ctx, "/jobs/"+j.id, &res); err != nil {
		return "", err
	}
	return res.Status, nil
}

// Readouts polls the remote status until the job finishes, then fetches the
// readout rows.
func (j *remoteJob) Readouts(ctx context.Context) ([][]int, error) {
	ticker := time.NewTicker(j.target.pollInterval)
	defer ticker.Stop()
	for {
		status, err := j.Status(ctx)
		if err != nil {
			return nil, err
		}
		switch status {
		case "done":
			var res resultResponse
			if err := j.target.get(ctx, "/jobs/"+j.id+"/result", &res); err != nil {
				return nil, err
			}
			return res.Readouts, nil
		case "failed", "cancelled":
			return nil, fmt.Errorf("job %s finished with status %s", j.id, status)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (t *Target) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := jsonIter.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.setting.Endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req, out)
}

func (t *Target) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		t.setting.Endpoint+path, nil)
	if err != nil {
		return err
	}
	return t.do(req, out)
}

func (t *Target) do(req *http.Request, out interface{}) error {
	if t.setting.APIKey != "" {
		req.Header.Set("X-Api-Key", t.setting.APIKey)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned %d for %s: %s",
			resp.StatusCode, req.URL.Path, string(body))
	}
	if out == nil {
		return nil
	}
	return jsonIter.Unmarshal(body, out)
}

type loggingRoundTripper struct {
	next http.RoundTripper
}

func (lrt *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := lrt.next.RoundTrip(req)
	if err != nil {
		zap.L().Error("gateway roundtrip failed", zap.String("url", req.URL.String()), zap.Error(err))
		return nil, err
	}

	bodyBytes, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		zap.L().Error("Failed to read gateway response body", zap.Error(readErr),
			zap.Int("statusCode", resp.StatusCode), zap.String("url", req.URL.String()))
		resp.Body.Close()
		return resp, nil
	}
	resp.Body.Close()

	zap.L().Debug("Received gateway response",
		zap.String("url", req.URL.String()),
		zap.Int("statusCode", resp.StatusCode),
		zap.ByteString("responseBody", bodyBytes),
	)

	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	return resp, nil
}
