package router

import (
	"encoding/json"
	"errors"

	"github.com/jihwan-dase/dase-core/internal/cellular"
	"github.com/jihwan-dase/dase-core/internal/igsoa"
	"github.com/jihwan-dase/dase-core/internal/manager"
	"github.com/jihwan-dase/dase-core/internal/satp"
	"github.com/jihwan-dase/dase-core/internal/sid"
)

// decodeParams unmarshals raw into v. An empty/missing params object is
// left as v's zero value rather than an error — callers that require
// specific fields check for zero values themselves and report
// MISSING_PARAMETER with the field name.
func decodeParams(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

type engineIDParams struct {
	EngineID string `json:"engine_id"`
}

// requireEngineID decodes params looking only for engine_id, the one
// field every non-introspection command shares.
func requireEngineID(raw json.RawMessage) (string, error) {
	var p engineIDParams
	if err := decodeParams(raw, &p); err != nil {
		return "", newError(CodeInvalidParameter, "params: %s", err)
	}
	if p.EngineID == "" {
		return "", newError(CodeMissingParameter, "missing required parameter %q", "engine_id")
	}
	return p.EngineID, nil
}

func dimsBlock(dim, nx, ny, nz int) map[string]interface{} {
	d := map[string]interface{}{"n_x": nx}
	if dim >= 2 {
		d["n_y"] = ny
	}
	if dim >= 3 {
		d["n_z"] = nz
	}
	return d
}

func metricsDTO(m cellular.Metrics) map[string]interface{} {
	return map[string]interface{}{
		"ns_per_op":   m.NsPerOp,
		"ops_per_sec": m.OpsPerSec,
		"speedup":     m.Speedup,
		"total_ops":   m.TotalOps,
	}
}

func igsoaMetrics(m igsoa.Metrics) cellular.Metrics {
	return cellular.Metrics{NsPerOp: m.NsPerOp, OpsPerSec: m.OpsPerSec, Speedup: m.Speedup, TotalOps: m.TotalOps}
}

func satpMetrics(m satp.Metrics) cellular.Metrics {
	return cellular.Metrics{NsPerOp: m.NsPerOp, OpsPerSec: m.OpsPerSec, Speedup: m.Speedup, TotalOps: m.TotalOps}
}

type engineSummaryDTO struct {
	EngineID   string `json:"engine_id"`
	EngineType string `json:"engine_type"`
	NumNodes   int    `json:"num_nodes"`
}

func engineSummary(inst *manager.Instance) engineSummaryDTO {
	return engineSummaryDTO{EngineID: inst.ID, EngineType: string(inst.EngineType), NumNodes: inst.NumNodes}
}

// --- introspection -------------------------------------------------

func (r *Router) handleGetCapabilities(_ json.RawMessage) (interface{}, error) {
	types := make([]string, len(r.engineTypes))
	for i, t := range r.engineTypes {
		types[i] = string(t)
	}
	return map[string]interface{}{
		"engine_types": types,
		"commands":     r.commands,
		"cpu_features": r.caps,
	}, nil
}

type describeParams struct {
	EngineType string `json:"engine_type"`
}

func (r *Router) handleDescribeEngine(raw json.RawMessage) (interface{}, error) {
	var p describeParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, newError(CodeInvalidParameter, "params: %s", err)
	}
	if p.EngineType == "" {
		return nil, newError(CodeMissingParameter, "missing required parameter %q", "engine_type")
	}
	d, ok := describe(p.EngineType)
	if !ok {
		return nil, newError(CodeInvalidParameter, "unknown engine_type %q", p.EngineType)
	}
	return d, nil
}

func (r *Router) handleListEngines(_ json.RawMessage) (interface{}, error) {
	list := r.mgr.List()
	out := make([]engineSummaryDTO, len(list))
	for i, inst := range list {
		out[i] = engineSummary(inst)
	}
	return map[string]interface{}{"engines": out}, nil
}

// --- lifecycle -------------------------------------------------------

type createEngineParams struct {
	EngineType string `json:"engine_type"`
	NumNodes   int    `json:"num_nodes"`
	Nx         int    `json:"n_x"`
	Ny         int    `json:"n_y"`
	Nz         int    `json:"n_z"`

	Rc    *float64 `json:"r_c"`
	Kappa *float64 `json:"kappa"`
	Gamma *float64 `json:"gamma"`
	Dt    *float64 `json:"dt"`

	C        *float64 `json:"c"`
	GammaPhi *float64 `json:"gamma_phi"`
	GammaH   *float64 `json:"gamma_h"`
	Lambda   *float64 `json:"lambda"`
	Mu2      *float64 `json:"mu2"`
	LambdaH  *float64 `json:"lambda_h"`
	Dx       *float64 `json:"dx"`

	Length             int     `json:"length"`
	Capacity           float64 `json:"capacity"`
	EpsConservation    float64 `json:"eps_conservation"`
	EpsDelta           float64 `json:"eps_delta"`
}

func buildIGSOAParams(p *createEngineParams) igsoa.Params {
	d := igsoa.DefaultParams()
	if p.Rc != nil {
		d.Rc = *p.Rc
	}
	if p.Kappa != nil {
		d.Kappa = *p.Kappa
	}
	if p.Gamma != nil {
		d.Gamma = *p.Gamma
	}
	if p.Dt != nil {
		d.Dt = *p.Dt
	}
	return d
}

func buildSATPParams(p *createEngineParams) satp.Params {
	d := satp.DefaultParams()
	if p.C != nil {
		d.C = *p.C
	}
	if p.GammaPhi != nil {
		d.GammaPhi = *p.GammaPhi
	}
	if p.GammaH != nil {
		d.GammaH = *p.GammaH
	}
	if p.Lambda != nil {
		d.Lambda = *p.Lambda
	}
	if p.Mu2 != nil {
		d.Mu2 = *p.Mu2
	}
	if p.LambdaH != nil {
		d.LambdaH = *p.LambdaH
	}
	if p.Dx != nil {
		d.Dx = *p.Dx
	}
	if p.Dt != nil {
		d.Dt = *p.Dt
	}
	return d
}

func (r *Router) handleCreateEngine(raw json.RawMessage) (interface{}, error) {
	var p createEngineParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, newError(CodeInvalidParameter, "params: %s", err)
	}
	if p.EngineType == "" {
		return nil, newError(CodeMissingParameter, "missing required parameter %q", "engine_type")
	}

	cp := manager.CreateParams{
		NumNodes:           p.NumNodes,
		Nx:                 p.Nx,
		Ny:                 p.Ny,
		Nz:                 p.Nz,
		IGSOAParams:        buildIGSOAParams(&p),
		SATPParams:         buildSATPParams(&p),
		SIDLength:          p.Length,
		SIDCapacity:        p.Capacity,
		SIDEpsConservation: p.EpsConservation,
		SIDEpsDelta:        p.EpsDelta,
	}
	inst, err := r.mgr.CreateEngine(manager.EngineType(p.EngineType), cp)
	if err != nil {
		return nil, err
	}
	return engineSummary(inst), nil
}

func (r *Router) handleDestroyEngine(raw json.RawMessage) (interface{}, error) {
	id, err := requireEngineID(raw)
	if err != nil {
		return nil, err
	}
	if err := r.mgr.Destroy(id); err != nil {
		return nil, err
	}
	return map[string]interface{}{"engine_id": id, "destroyed": true}, nil
}

// --- stepping & inspection -------------------------------------------

type missionParams struct {
	EngineID          string    `json:"engine_id"`
	NumSteps          int       `json:"num_steps"`
	IterationsPerNode int       `json:"iterations_per_node"`
	InputSignals      []float64 `json:"input_signals"`
	ControlPatterns   []float64 `json:"control_patterns"`
}

func (r *Router) handleRunMission(raw json.RawMessage) (interface{}, error) {
	var p missionParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, newError(CodeInvalidParameter, "params: %s", err)
	}
	if p.EngineID == "" {
		return nil, newError(CodeMissingParameter, "missing required parameter %q", "engine_id")
	}
	inst, err := r.mgr.Get(p.EngineID)
	if err != nil {
		return nil, err
	}

	switch inst.EngineType {
	case manager.TypePhase4B:
		input, control := p.InputSignals, p.ControlPatterns
		if input == nil {
			input = make([]float64, p.NumSteps)
		}
		if control == nil {
			control = make([]float64, p.NumSteps)
		}
		iters := p.IterationsPerNode
		if iters <= 0 {
			iters = 1
		}
		m, err := r.mgr.RunMission(p.EngineID, input, control, p.NumSteps, iters)
		if err != nil {
			return nil, err
		}
		return metricsDTO(m), nil
	case manager.TypeIGSOAComplex, manager.TypeIGSOAComplex2D, manager.TypeIGSOAComplex3D:
		if err := inst.IGSOA.RunMission(p.NumSteps, p.IterationsPerNode); err != nil {
			return nil, err
		}
		return metricsDTO(igsoaMetrics(inst.IGSOA.GetMetrics())), nil
	case manager.TypeSATPHiggs1D, manager.TypeSATPHiggs2D, manager.TypeSATPHiggs3D:
		if err := inst.SATP.Evolve(p.NumSteps); err != nil {
			return nil, err
		}
		return metricsDTO(satpMetrics(inst.SATP.GetMetrics())), nil
	default:
		return nil, newError(CodeWrongEngineType, "%q does not support run_mission", p.EngineID)
	}
}

func (r *Router) handleGetMetrics(raw json.RawMessage) (interface{}, error) {
	id, err := requireEngineID(raw)
	if err != nil {
		return nil, err
	}
	m, err := r.mgr.GetMetrics(id)
	if err != nil {
		return nil, err
	}
	return metricsDTO(m), nil
}

func (r *Router) handleGetState(raw json.RawMessage) (interface{}, error) {
	id, err := requireEngineID(raw)
	if err != nil {
		return nil, err
	}
	inst, err := r.mgr.Get(id)
	if err != nil {
		return nil, err
	}
	if inst.IGSOA == nil {
		return nil, newError(CodeWrongEngineType, "%q is not an igsoa engine", id)
	}
	st := inst.IGSOA.GetState()
	return map[string]interface{}{
		"psi_real":   st.PsiReal,
		"psi_imag":   st.PsiImag,
		"phi":        st.Phi,
		"dimensions": dimsBlock(st.Dim, st.Nx, st.Ny, st.Nz),
	}, nil
}

type igsoaProfileParams struct {
	EngineID    string  `json:"engine_id"`
	Profile     string  `json:"profile"`
	Mode        string  `json:"mode"`
	Amplitude   float64 `json:"amplitude"`
	CenterX     float64 `json:"center_x"`
	CenterY     float64 `json:"center_y"`
	CenterZ     float64 `json:"center_z"`
	Sigma       float64 `json:"sigma"`
	SigmaY      float64 `json:"sigma_y"`
	SigmaZ      float64 `json:"sigma_z"`
	BaselinePhi float64 `json:"baseline_phi"`
	Beta        float64 `json:"beta"`
	Kx          float64 `json:"kx"`
	Ky          float64 `json:"ky"`
	Kz          float64 `json:"kz"`
	Phase       float64 `json:"phase"`
	PsiR        float64 `json:"psi_r"`
	PsiI        float64 `json:"psi_i"`
	Phi         float64 `json:"phi"`
	Seed        int64   `json:"seed"`
	NodeIndex   int     `json:"node_index"`
}

func (r *Router) handleSetIGSOAState(raw json.RawMessage) (interface{}, error) {
	var p igsoaProfileParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, newError(CodeInvalidParameter, "params: %s", err)
	}
	if p.EngineID == "" {
		return nil, newError(CodeMissingParameter, "missing required parameter %q", "engine_id")
	}
	if p.Profile == "" {
		return nil, newError(CodeMissingParameter, "missing required parameter %q", "profile")
	}
	inst, err := r.mgr.Get(p.EngineID)
	if err != nil {
		return nil, err
	}
	if inst.IGSOA == nil {
		return nil, newError(CodeWrongEngineType, "%q is not an igsoa engine", p.EngineID)
	}
	mode := igsoa.Mode(p.Mode)
	if mode == "" {
		mode = igsoa.ModeOverwrite
	}
	args := igsoa.ProfileArgs{
		Amplitude: p.Amplitude, CenterX: p.CenterX, CenterY: p.CenterY, CenterZ: p.CenterZ,
		Sigma: p.Sigma, SigmaY: p.SigmaY, SigmaZ: p.SigmaZ, BaselinePhi: p.BaselinePhi,
		Mode: mode, Beta: p.Beta, Kx: p.Kx, Ky: p.Ky, Kz: p.Kz, Phase: p.Phase,
		PsiR: p.PsiR, PsiI: p.PsiI, Phi: p.Phi, Seed: p.Seed, NodeIndex: p.NodeIndex,
	}
	if err := inst.IGSOA.SetState(p.Profile, args); err != nil {
		return nil, err
	}
	return map[string]interface{}{"engine_id": p.EngineID, "profile": p.Profile, "applied": true}, nil
}

type satpZoneParams struct {
	Center    float64 `json:"center"`
	Width     float64 `json:"width"`
	Amplitude float64 `json:"amplitude"`
	Frequency float64 `json:"frequency"`
	TStart    float64 `json:"t_start"`
	TEnd      float64 `json:"t_end"`
}

type satpProfileParams struct {
	EngineID     string           `json:"engine_id"`
	Profile      string           `json:"profile"`
	Mode         string           `json:"mode"`
	Amplitude    float64          `json:"amplitude"`
	Velocity     float64          `json:"velocity"`
	CenterX      float64          `json:"center_x"`
	CenterY      float64          `json:"center_y"`
	CenterZ      float64          `json:"center_z"`
	Sigma        float64          `json:"sigma"`
	Beta         float64          `json:"beta"`
	Phi          float64          `json:"phi"`
	PhiDot       float64          `json:"phi_dot"`
	H            float64          `json:"h"`
	HDot         float64          `json:"h_dot"`
	PhiAmplitude float64          `json:"phi_amplitude"`
	HAmplitude   float64          `json:"h_amplitude"`
	Seed         int64            `json:"seed"`
	Zones        []satpZoneParams `json:"zones"`
}

func (r *Router) handleSetSATPState(raw json.RawMessage) (interface{}, error) {
	var p satpProfileParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, newError(CodeInvalidParameter, "params: %s", err)
	}
	if p.EngineID == "" {
		return nil, newError(CodeMissingParameter, "missing required parameter %q", "engine_id")
	}
	if p.Profile == "" {
		return nil, newError(CodeMissingParameter, "missing required parameter %q", "profile")
	}
	inst, err := r.mgr.Get(p.EngineID)
	if err != nil {
		return nil, err
	}
	if inst.SATP == nil {
		return nil, newError(CodeWrongEngineType, "%q is not a satp engine", p.EngineID)
	}
	mode := satp.Mode(p.Mode)
	if mode == "" {
		mode = satp.ModeOverwrite
	}
	zones := make([]satp.ThreeZone, len(p.Zones))
	for i, z := range p.Zones {
		zones[i] = satp.ThreeZone{Center: z.Center, Width: z.Width, Amplitude: z.Amplitude, Frequency: z.Frequency, TStart: z.TStart, TEnd: z.TEnd}
	}
	args := satp.ProfileArgs{
		Amplitude: p.Amplitude, Velocity: p.Velocity, CenterX: p.CenterX, CenterY: p.CenterY, CenterZ: p.CenterZ,
		Sigma: p.Sigma, Mode: mode, Beta: p.Beta,
		Phi: p.Phi, PhiDot: p.PhiDot, H: p.H, HDot: p.HDot,
		PhiAmplitude: p.PhiAmplitude, HAmplitude: p.HAmplitude, Seed: p.Seed, Zones: zones,
	}
	if err := inst.SATP.SetState(p.Profile, args); err != nil {
		return nil, err
	}
	return map[string]interface{}{"engine_id": p.EngineID, "profile": p.Profile, "applied": true}, nil
}

func (r *Router) handleGetSATPState(raw json.RawMessage) (interface{}, error) {
	id, err := requireEngineID(raw)
	if err != nil {
		return nil, err
	}
	inst, err := r.mgr.Get(id)
	if err != nil {
		return nil, err
	}
	if inst.SATP == nil {
		return nil, newError(CodeWrongEngineType, "%q is not a satp engine", id)
	}
	st := inst.SATP.GetSatpState()
	return map[string]interface{}{
		"phi": st.Phi, "phi_dot": st.PhiDot, "h": st.H, "h_dot": st.HDot,
		"phi_rms": st.PhiRMS, "h_rms": st.HRMS,
		"dimensions": dimsBlock(st.Dim, st.Nx, st.Ny, st.Nz),
	}, nil
}

func (r *Router) handleGetCenterOfMass(raw json.RawMessage) (interface{}, error) {
	id, err := requireEngineID(raw)
	if err != nil {
		return nil, err
	}
	inst, err := r.mgr.Get(id)
	if err != nil {
		return nil, err
	}
	if inst.IGSOA == nil {
		return nil, newError(CodeWrongEngineType, "%q is not an igsoa engine", id)
	}
	cx, cy, cz, err := inst.IGSOA.ComputeCenterOfMass()
	if err != nil {
		return nil, err
	}
	nx, ny, nz := inst.IGSOA.Dims()
	return map[string]interface{}{
		"center_of_mass": map[string]float64{"x": cx, "y": cy, "z": cz},
		"dimensions":     dimsBlock(int(inst.IGSOA.Dim()), nx, ny, nz),
	}, nil
}

// --- SID-specific ------------------------------------------------------

func sidStateDTO(e *sid.Engine) map[string]interface{} {
	return map[string]interface{}{
		"i_mass":          e.IMass(),
		"n_mass":          e.NMass(),
		"u_mass":          e.UMass(),
		"conserved":       e.IsConserved(e.Mixer.EpsConservation),
		"transport_ready": e.Mixer.Metrics().TransportReady,
		"loop_gain":       e.InstantaneousGain(),
	}
}

type sidAlphaParams struct {
	EngineID string  `json:"engine_id"`
	Alpha    float64 `json:"alpha"`
}

func (r *Router) sidEngine(raw json.RawMessage) (*manager.Instance, *sid.Engine, error) {
	id, err := requireEngineID(raw)
	if err != nil {
		return nil, nil, err
	}
	inst, err := r.mgr.Get(id)
	if err != nil {
		return nil, nil, err
	}
	if inst.SID == nil {
		return nil, nil, newError(CodeWrongEngineType, "%q is not a sid engine", id)
	}
	return inst, inst.SID, nil
}

func (r *Router) handleSIDStep(raw json.RawMessage) (interface{}, error) {
	var p sidAlphaParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, newError(CodeInvalidParameter, "params: %s", err)
	}
	_, eng, err := r.sidEngine(raw)
	if err != nil {
		return nil, err
	}
	if err := eng.Step(p.Alpha); err != nil {
		if errors.Is(err, sid.ErrScaleCapExceeded) {
			return nil, newError(CodeInvariantFail, "%s", err)
		}
		return nil, err
	}
	return sidStateDTO(eng), nil
}

func (r *Router) handleSIDCollapse(raw json.RawMessage) (interface{}, error) {
	var p sidAlphaParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, newError(CodeInvalidParameter, "params: %s", err)
	}
	_, eng, err := r.sidEngine(raw)
	if err != nil {
		return nil, err
	}
	if err := eng.Collapse(p.Alpha); err != nil {
		return nil, err
	}
	return sidStateDTO(eng), nil
}

type sidRewriteParams struct {
	EngineID    string `json:"engine_id"`
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	RuleID      string `json:"rule_id"`
}

func (r *Router) handleSIDApplyRewrite(raw json.RawMessage) (interface{}, error) {
	var p sidRewriteParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, newError(CodeInvalidParameter, "params: %s", err)
	}
	if p.Pattern == "" || p.Replacement == "" || p.RuleID == "" {
		return nil, newError(CodeMissingParameter, "pattern, replacement, and rule_id are all required")
	}
	_, eng, err := r.sidEngine(raw)
	if err != nil {
		return nil, err
	}
	applied, message, err := eng.ApplyRewrite(p.Pattern, p.Replacement, p.RuleID)
	if err != nil {
		return nil, newError(CodeInvalidParameter, "%s", err)
	}
	return map[string]interface{}{"applied": applied, "message": message}, nil
}

type sidDiagramExprParams struct {
	EngineID string `json:"engine_id"`
	Expr     string `json:"expr"`
	RuleID   string `json:"rule_id"`
}

func (r *Router) handleSIDSetDiagramExpr(raw json.RawMessage) (interface{}, error) {
	var p sidDiagramExprParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, newError(CodeInvalidParameter, "params: %s", err)
	}
	if p.Expr == "" || p.RuleID == "" {
		return nil, newError(CodeMissingParameter, "expr and rule_id are both required")
	}
	_, eng, err := r.sidEngine(raw)
	if err != nil {
		return nil, err
	}
	message, err := eng.SetDiagramExpr(p.Expr, p.RuleID)
	if err != nil {
		return nil, newError(CodeInvalidParameter, "%s", err)
	}
	return map[string]interface{}{"message": message}, nil
}

type sidDiagramJSONParams struct {
	EngineID string          `json:"engine_id"`
	Diagram  json.RawMessage `json:"diagram"`
}

func (r *Router) handleSIDSetDiagramJSON(raw json.RawMessage) (interface{}, error) {
	var p sidDiagramJSONParams
	if err := decodeParams(raw, &p); err != nil {
		return nil, newError(CodeInvalidParameter, "params: %s", err)
	}
	if len(p.Diagram) == 0 {
		return nil, newError(CodeMissingParameter, "missing required parameter %q", "diagram")
	}
	_, eng, err := r.sidEngine(raw)
	if err != nil {
		return nil, err
	}
	if err := eng.SetDiagramJSON(p.Diagram); err != nil {
		return nil, newError(CodeInvalidParameter, "%s", err)
	}
	return map[string]interface{}{"applied": true}, nil
}

func (r *Router) handleSIDGetDiagramJSON(raw json.RawMessage) (interface{}, error) {
	_, eng, err := r.sidEngine(raw)
	if err != nil {
		return nil, err
	}
	diagram, err := eng.GetDiagramJSON()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"diagram": json.RawMessage(diagram)}, nil
}

func (r *Router) handleSIDRewriteEvents(raw json.RawMessage) (interface{}, error) {
	_, eng, err := r.sidEngine(raw)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"events": eng.RewriteEvents()}, nil
}

// --- benchmark stub ----------------------------------------------------

func (r *Router) handleBenchmark(_ json.RawMessage) (interface{}, error) {
	return map[string]interface{}{
		"status":  "stub",
		"message": "benchmark is not implemented; no metrics were fabricated.",
	}, nil
}
