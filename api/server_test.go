//go:build unit
// +build unit

package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbridge-team/qbridge-engine/circuit"
	"github.com/qbridge-team/qbridge-engine/core"
	"github.com/qbridge-team/qbridge-engine/qvm"
)

type apiFixture struct {
	ts     *httptest.Server
	writer *ResultWriterImpl
}

func setupAPI(t *testing.T) *apiFixture {
	t.Helper()
	core.ResetSetting()

	shotTarget := qvm.NewTarget()
	stateTarget := qvm.NewTarget()
	sc := core.SCWithTargets(shotTarget, stateTarget)
	t.Cleanup(func() {
		sc.TearDown()
		shotTarget.TearDown()
		stateTarget.TearDown()
	})

	writer := &ResultWriterImpl{}
	require.NoError(t, writer.Setup())
	require.NoError(t, writer.Start())

	s := &JobAPIServerImpl{}
	require.NoError(t, s.Setup())
	ts := httptest.NewServer(s.server.Handler)
	t.Cleanup(ts.Close)
	return &apiFixture{ts: ts, writer: writer}
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	decoded := make(map[string]interface{})
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func serialize(t *testing.T, c *circuit.Circuit) string {
	t.Helper()
	s, err := circuit.Serialize(c)
	require.NoError(t, err)
	return s
}

func TestJobAPISubmitAndResult(t *testing.T) {
	f := setupAPI(t)

	c := circuit.New(2).H(0).CX(0, 1).Measure(0, 0).Measure(1, 1)
	body := fmt.Sprintf(`{"circuit":%s,"shots":16,"level":1,"seed":7}`, serialize(t, c))
	resp, decoded := postJSON(t, f.ts.URL+"/jobs", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	handle, ok := decoded["handle"].(map[string]interface{})
	require.True(t, ok)
	handleBody := fmt.Sprintf(`{"handle":{"tag":%q,"post_process":%q}}`,
		handle["tag"], handle["post_process"])

	resp, decoded = postJSON(t, f.ts.URL+"/jobs/result", handleBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	counts, ok := decoded["counts"].(map[string]interface{})
	require.True(t, ok)
	total := 0.0
	for key, n := range counts {
		assert.Contains(t, []string{"00", "11"}, key)
		total += n.(float64)
	}
	assert.Equal(t, 16.0, total)

	resp, decoded = postJSON(t, f.ts.URL+"/jobs/status", handleBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", decoded["status"])

	// the background watcher reports the same completion to the writer
	assert.Eventually(t, func() bool {
		completed, failed := f.writer.Stats()
		return completed == 1 && failed == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestJobAPIUnknownHandle(t *testing.T) {
	f := setupAPI(t)

	body := `{"handle":{"tag":"00000000-0000-0000-0000-000000000000","post_process":"null"}}`
	resp, _ := postJSON(t, f.ts.URL+"/jobs/result", body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = postJSON(t, f.ts.URL+"/jobs/status", body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestJobAPIPublishStopsOnShutdown(t *testing.T) {
	core.ResetSetting()
	shotTarget := qvm.NewTarget()
	stateTarget := qvm.NewTarget()
	sc := core.SCWithTargets(shotTarget, stateTarget)
	t.Cleanup(func() {
		sc.TearDown()
		shotTarget.TearDown()
		stateTarget.TearDown()
	})

	s := &JobAPIServerImpl{}
	require.NoError(t, s.Setup())

	// no result writer drains the cache channel here, so the send can
	// only finish through the shutdown path
	returned := make(chan struct{})
	go func() {
		s.publish(core.CacheUpdate{})
		close(returned)
	}()
	s.Shutdown()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("publish kept blocking after shutdown")
	}
}

func TestJobAPIBadRequests(t *testing.T) {
	f := setupAPI(t)

	resp, _ := postJSON(t, f.ts.URL+"/jobs", `{"shots":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, f.ts.URL+"/jobs/status", `{"handle":{"tag":"not-a-uuid"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	c := circuit.New(1).Measure(0, 0)
	body := fmt.Sprintf(`{"circuit":%s,"shots":1,"level":9}`, serialize(t, c))
	resp, _ = postJSON(t, f.ts.URL+"/jobs", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestJobAPIState(t *testing.T) {
	f := setupAPI(t)

	c := circuit.New(1).H(0)
	body := fmt.Sprintf(`{"circuit":%s,"level":0}`, serialize(t, c))
	resp, decoded := postJSON(t, f.ts.URL+"/state", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	state, ok := decoded["state"].([]interface{})
	require.True(t, ok)
	require.Len(t, state, 2)
	first := state[0].([]interface{})
	assert.InDelta(t, 1/1.4142135623730951, first[0].(float64), 1e-9)
}

func TestJobAPITargets(t *testing.T) {
	f := setupAPI(t)

	resp, err := http.Get(f.ts.URL + "/targets")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var descs []map[string]interface{}
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(resp.Body).Decode(&descs))
	require.Len(t, descs, 1)
	assert.Equal(t, "qvm", descs[0]["name"])
}

func TestDecodeSubmitRequest(t *testing.T) {
	data := []byte(`{"circuit":{"qubits":[]},"shots":5,"level":2,"seed":null,` +
		`"postprocess":true,"simplify_initial":true,"valid_check":true,"unknown":[1,2]}`)
	req, err := decodeSubmitRequest(data)
	require.NoError(t, err)
	assert.Equal(t, 5, req.Shots)
	assert.Equal(t, 2, req.Level)
	assert.Nil(t, req.Seed)
	assert.True(t, req.Postprocess)
	assert.True(t, req.SimplifyInitial)
	assert.True(t, req.ValidCheck)
	assert.JSONEq(t, `{"qubits":[]}`, string(req.Circuit))
}
