package router

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jihwan-dase/dase-core/internal/kernelloader"
	"github.com/jihwan-dase/dase-core/internal/manager"
	"github.com/jihwan-dase/dase-core/internal/satp"
)

func newTestRouter() *Router {
	return New(manager.New())
}

func dispatch(t *testing.T, r *Router, command string, params interface{}) Response {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	return r.Dispatch(Request{Command: command, Params: raw})
}

func resultMap(t *testing.T, resp Response) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestDispatchLineParseErrorReportsCode(t *testing.T) {
	r := newTestRouter()
	resp := r.DispatchLine([]byte("{not json"))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeParseError, resp.ErrorCode)
}

func TestDispatchUnknownCommand(t *testing.T) {
	r := newTestRouter()
	resp := r.Dispatch(Request{Command: "not_a_command"})
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeUnknownCommand, resp.ErrorCode)
}

func TestCreateEngineMissingEngineType(t *testing.T) {
	r := newTestRouter()
	resp := dispatch(t, r, "create_engine", map[string]interface{}{})
	assert.Equal(t, CodeMissingParameter, resp.ErrorCode)
}

func TestCreateEngineInvalidPhysicsParameterIsRejected(t *testing.T) {
	r := newTestRouter()
	rc := -1.0
	resp := dispatch(t, r, "create_engine", map[string]interface{}{
		"engine_type": "igsoa_complex", "num_nodes": 8, "r_c": rc,
	})
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeInvalidParameter, resp.ErrorCode)

	list := dispatch(t, r, "list_engines", map[string]interface{}{})
	engines := resultMap(t, list)["engines"].([]interface{})
	assert.Empty(t, engines)
}

func TestCreateEngineOutOfDomainCellCountRejected(t *testing.T) {
	r := newTestRouter()
	resp := dispatch(t, r, "create_engine", map[string]interface{}{
		"engine_type": "igsoa_complex_3d", "n_x": 200, "n_y": 200, "n_z": 200,
	})
	assert.Equal(t, CodeInvalidParameter, resp.ErrorCode)
}

func TestGetUnknownEngineReturnsEngineNotFound(t *testing.T) {
	r := newTestRouter()
	resp := dispatch(t, r, "get_metrics", map[string]interface{}{"engine_id": "engine_999"})
	assert.Equal(t, CodeEngineNotFound, resp.ErrorCode)
}

func TestWrongEngineTypeReportsDedicatedCode(t *testing.T) {
	r := newTestRouter()
	created := dispatch(t, r, "create_engine", map[string]interface{}{
		"engine_type": "sid_ternary", "length": 4, "capacity": 1.0,
	})
	id := resultMap(t, created)["engine_id"].(string)

	resp := dispatch(t, r, "get_state", map[string]interface{}{"engine_id": id})
	assert.Equal(t, CodeWrongEngineType, resp.ErrorCode)
}

// Property: the n-th successful create_engine returns engine_{n:03d}.
func TestEngineIDMonotonicityAcrossRouter(t *testing.T) {
	r := newTestRouter()
	r1 := dispatch(t, r, "create_engine", map[string]interface{}{"engine_type": "sid_ternary", "length": 1, "capacity": 1.0})
	r2 := dispatch(t, r, "create_engine", map[string]interface{}{"engine_type": "sid_ternary", "length": 1, "capacity": 1.0})
	assert.Equal(t, "engine_001", resultMap(t, r1)["engine_id"])
	assert.Equal(t, "engine_002", resultMap(t, r2)["engine_id"])
}

// Property: destroy_engine on an unknown id never crashes the router.
func TestDoubleDestroyThroughRouter(t *testing.T) {
	r := newTestRouter()
	created := dispatch(t, r, "create_engine", map[string]interface{}{"engine_type": "sid_ternary", "length": 1, "capacity": 1.0})
	id := resultMap(t, created)["engine_id"].(string)

	first := dispatch(t, r, "destroy_engine", map[string]interface{}{"engine_id": id})
	assert.Equal(t, "success", first.Status)

	second := dispatch(t, r, "destroy_engine", map[string]interface{}{"engine_id": id})
	assert.Equal(t, CodeEngineNotFound, second.ErrorCode)
}

func TestGetCapabilitiesReturnsClosedSet(t *testing.T) {
	r := newTestRouter()
	resp := dispatch(t, r, "get_capabilities", map[string]interface{}{})
	require.Equal(t, "success", resp.Status)
	m := resultMap(t, resp)
	types := m["engine_types"].([]interface{})
	assert.Contains(t, types, "igsoa_gw")
	assert.Contains(t, types, "phase4b")
	commands := m["commands"].([]interface{})
	assert.Contains(t, commands, "benchmark")
	assert.Contains(t, commands, "sid_rewrite_events")
}

func TestBenchmarkStubNeverFabricatesMetrics(t *testing.T) {
	r := newTestRouter()
	resp := dispatch(t, r, "benchmark", map[string]interface{}{})
	m := resultMap(t, resp)
	assert.Equal(t, "stub", m["status"])
	assert.NotContains(t, m, "ns_per_op")
}

func TestDescribeUnknownEngineTypeIsInvalidParameter(t *testing.T) {
	r := newTestRouter()
	resp := dispatch(t, r, "describe_engine", map[string]interface{}{"engine_type": "not_a_type"})
	assert.Equal(t, CodeInvalidParameter, resp.ErrorCode)
}

// S2: a circular Gaussian centroid on a 64x64 2D IGSOA lattice lands
// within 0.5 of the geometric center, and the dimensions block echoes
// the creation parameters (property 8).
func TestScenarioS2CircularGaussianCentroid(t *testing.T) {
	r := newTestRouter()
	created := dispatch(t, r, "create_engine", map[string]interface{}{
		"engine_type": "igsoa_complex_2d", "n_x": 64, "n_y": 64,
	})
	require.Equal(t, "success", created.Status)
	id := resultMap(t, created)["engine_id"].(string)

	setState := dispatch(t, r, "set_igsoa_state", map[string]interface{}{
		"engine_id": id, "profile": "circular_gaussian", "amplitude": 1.0,
		"center_x": 32.0, "center_y": 32.0, "sigma": 8.0, "mode": "overwrite",
	})
	require.Equal(t, "success", setState.Status)

	com := dispatch(t, r, "get_center_of_mass", map[string]interface{}{"engine_id": id})
	require.Equal(t, "success", com.Status)
	m := resultMap(t, com)
	centroid := m["center_of_mass"].(map[string]interface{})
	assert.InDelta(t, 32.0, centroid["x"].(float64), 0.5)
	assert.InDelta(t, 32.0, centroid["y"].(float64), 0.5)
	dims := m["dimensions"].(map[string]interface{})
	assert.Equal(t, float64(64), dims["n_x"])
	assert.Equal(t, float64(64), dims["n_y"])
}

// S3: an 8x8x8 IGSOA cube echoes its shape through get_state.
func TestScenarioS3CubeStateShapeEcho(t *testing.T) {
	r := newTestRouter()
	created := dispatch(t, r, "create_engine", map[string]interface{}{
		"engine_type": "igsoa_complex_3d", "n_x": 8, "n_y": 8, "n_z": 8,
	})
	id := resultMap(t, created)["engine_id"].(string)

	state := dispatch(t, r, "get_state", map[string]interface{}{"engine_id": id})
	require.Equal(t, "success", state.Status)
	m := resultMap(t, state)
	psiReal := m["psi_real"].([]interface{})
	assert.Len(t, psiReal, 512)
	dims := m["dimensions"].(map[string]interface{})
	assert.Equal(t, float64(8), dims["n_x"])
	assert.Equal(t, float64(8), dims["n_z"])
}

// S4: a vacuum-profile SATP engine reports phi_rms == 0 and
// h_rms == h_vev to within 1e-12.
func TestScenarioS4SATPVacuum(t *testing.T) {
	r := newTestRouter()
	created := dispatch(t, r, "create_engine", map[string]interface{}{
		"engine_type": "satp_higgs_1d", "num_nodes": 1024,
	})
	id := resultMap(t, created)["engine_id"].(string)

	setState := dispatch(t, r, "set_satp_state", map[string]interface{}{"engine_id": id, "profile": "vacuum"})
	require.Equal(t, "success", setState.Status)

	state := dispatch(t, r, "get_satp_state", map[string]interface{}{"engine_id": id})
	require.Equal(t, "success", state.Status)
	m := resultMap(t, state)
	assert.InDelta(t, 0.0, m["phi_rms"].(float64), 1e-12)
	assert.InDelta(t, satp.DefaultParams().HVev(), m["h_rms"].(float64), 1e-12)
}

// S5: a uniform collapse on U followed by a committed step preserves
// conservation and does not yet report transport_ready.
func TestScenarioS5SIDConservationUnderCollapse(t *testing.T) {
	r := newTestRouter()
	created := dispatch(t, r, "create_engine", map[string]interface{}{
		"engine_type": "sid_ternary", "length": 4, "capacity": 1.0,
	})
	id := resultMap(t, created)["engine_id"].(string)

	collapse := dispatch(t, r, "sid_collapse", map[string]interface{}{"engine_id": id, "alpha": 0.1})
	require.Equal(t, "success", collapse.Status)

	step := dispatch(t, r, "sid_step", map[string]interface{}{"engine_id": id, "alpha": 0.1})
	require.Equal(t, "success", step.Status)
	m := resultMap(t, step)
	assert.True(t, m["conserved"].(bool))
	assert.False(t, m["transport_ready"].(bool))
}

// S6: a rejected rewrite (here one whose pattern matches nothing) leaves
// the diagram bitwise unchanged, reported as applied=false rather than an
// error. The cycle-rollback path is tested in internal/sid/rewrite.
func TestScenarioS6RewriteRejectionLeavesDiagramUnchanged(t *testing.T) {
	r := newTestRouter()
	created := dispatch(t, r, "create_engine", map[string]interface{}{
		"engine_type": "sid_ternary", "length": 1, "capacity": 1.0,
	})
	id := resultMap(t, created)["engine_id"].(string)

	setExpr := dispatch(t, r, "sid_set_diagram_expr", map[string]interface{}{
		"engine_id": id, "expr": "O(x)", "rule_id": "seed",
	})
	require.Equal(t, "success", setExpr.Status)

	before := dispatch(t, r, "sid_get_diagram_json", map[string]interface{}{"engine_id": id})
	require.Equal(t, "success", before.Status)

	rewrite := dispatch(t, r, "sid_apply_rewrite", map[string]interface{}{
		"engine_id": id, "pattern": "C(x, y)", "replacement": "T(x)", "rule_id": "r1",
	})
	require.Equal(t, "success", rewrite.Status)
	assert.False(t, resultMap(t, rewrite)["applied"].(bool))

	after := dispatch(t, r, "sid_get_diagram_json", map[string]interface{}{"engine_id": id})
	require.Equal(t, "success", after.Status)
	assert.Equal(t, before.Result, after.Result)
}

// S1: a phase4b mission over a mocked kernel reports the exact
// total_operations the scenario specifies.
func TestScenarioS1Phase4BTotalOperations(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoader := kernelloader.NewMockLoader(ctrl)
	mockLoader.EXPECT().CreateEngine(int64(2048)).Return(int64(1))
	mockLoader.EXPECT().RunMission(int64(1), gomock.Any(), gomock.Any(), int64(2000), int64(20)).Return(int32(0))
	mockLoader.EXPECT().GetMetrics(int64(1)).Return(5.0, 2e8, 3100.0, int64(2000*2048*20))

	mgr := manager.New()
	mgr.AttachKernel(mockLoader)
	r := New(mgr)

	created := dispatch(t, r, "create_engine", map[string]interface{}{"engine_type": "phase4b", "num_nodes": 2048})
	id := resultMap(t, created)["engine_id"].(string)

	mission := dispatch(t, r, "run_mission", map[string]interface{}{
		"engine_id": id, "num_steps": 2000, "iterations_per_node": 20,
	})
	require.Equal(t, "success", mission.Status)
	m := resultMap(t, mission)
	assert.Equal(t, float64(2000*2048*20), m["total_ops"])
}

func TestRouterRecoversHandlerPanicIntoInternalError(t *testing.T) {
	r := newTestRouter()
	handlers["__test_panic"] = func(r *Router, _ json.RawMessage) (interface{}, error) {
		panic("boom")
	}
	defer delete(handlers, "__test_panic")

	resp := r.Dispatch(Request{Command: "__test_panic"})
	assert.Equal(t, CodeInternalError, resp.ErrorCode)
}
