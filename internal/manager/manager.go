// Package manager owns every live engine instance behind a mint-once id,
// dispatching creation and teardown by a tagged engine_type string rather
// than a shared polymorphic interface: each engine family has materially
// different observables, and the command router needs to see those
// differences rather than have them hidden behind a uniform type.
package manager

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jihwan-dase/dase-core/internal/cellular"
	"github.com/jihwan-dase/dase-core/internal/igsoa"
	"github.com/jihwan-dase/dase-core/internal/kernelloader"
	"github.com/jihwan-dase/dase-core/internal/satp"
	"github.com/jihwan-dase/dase-core/internal/sid"
)

// EngineType is one of the closed set of engine_type strings.
type EngineType string

const (
	TypePhase4B        EngineType = "phase4b"
	TypeIGSOAComplex   EngineType = "igsoa_complex"
	TypeIGSOAComplex2D EngineType = "igsoa_complex_2d"
	TypeIGSOAComplex3D EngineType = "igsoa_complex_3d"
	TypeSATPHiggs1D    EngineType = "satp_higgs_1d"
	TypeSATPHiggs2D    EngineType = "satp_higgs_2d"
	TypeSATPHiggs3D    EngineType = "satp_higgs_3d"
	TypeSIDTernary     EngineType = "sid_ternary"
	TypeIGSOAGW        EngineType = "igsoa_gw"
)

var (
	ErrUnknownEngineType     = errors.New("manager: unknown engine type")
	ErrEngineNotFound        = errors.New("manager: engine not found")
	ErrWrongEngineType       = errors.New("manager: wrong engine type for this operation")
	ErrEngineTypeUnavailable = errors.New("manager: engine type unavailable")
	ErrMissionFailed         = errors.New("manager: kernel mission failed")
)

// Instance is the tagged union of every backing engine this repository
// can create. Exactly one of (kernelHandle, IGSOA, SATP, SID) is
// populated, selected by EngineType; phase4b crosses into a dlopen'd
// shared library by opaque int64 handle rather than a Go pointer, so it
// has no pointer field of its own.
type Instance struct {
	ID         string
	EngineType EngineType
	NumNodes   int
	Nx, Ny, Nz int
	CreatedAt  time.Time

	kernelHandle int64

	IGSOA *igsoa.Engine
	SATP  *satp.Engine
	SID   *sid.Engine
}

// Manager owns every live instance. generateEngineID uses a plain,
// non-atomic counter: the command loop that owns a Manager is
// single-threaded by contract, and making id minting concurrency-safe is
// explicitly out of scope until that changes.
type Manager struct {
	instances map[string]*Instance
	nextID    int

	kernel kernelloader.Loader
}

// New returns a manager with no kernel library attached; phase4b
// creation fails with ErrEngineTypeUnavailable until AttachKernel is
// called with a resolved loader.
func New() *Manager {
	return &Manager{instances: map[string]*Instance{}}
}

// AttachKernel wires a resolved Phase 4C loader into the manager. Passing
// nil explicitly marks the kernel unavailable (e.g. after a failed
// kernelloader.Open), which the rest of the manager treats identically to
// never having called AttachKernel.
func (m *Manager) AttachKernel(l kernelloader.Loader) {
	m.kernel = l
}

func (m *Manager) generateEngineID() string {
	m.nextID++
	return fmt.Sprintf("engine_%03d", m.nextID)
}

// CreateParams carries every family's creation arguments; callers (the
// router) populate only the fields relevant to the requested EngineType,
// after their own validation/defaulting pass.
type CreateParams struct {
	NumNodes   int
	Nx, Ny, Nz int

	IGSOAParams igsoa.Params
	SATPParams  satp.Params

	SIDLength          int
	SIDCapacity        float64
	SIDEpsConservation float64
	SIDEpsDelta        float64
}

// CreateEngine dispatches on engineType and returns the newly minted,
// already-registered instance.
func (m *Manager) CreateEngine(engineType EngineType, p CreateParams) (*Instance, error) {
	switch engineType {
	case TypePhase4B:
		return m.createPhase4B(p.NumNodes)
	case TypeIGSOAComplex:
		return m.createIGSOA(igsoa.Dim1D, p.NumNodes, 1, 1, p.IGSOAParams)
	case TypeIGSOAComplex2D:
		return m.createIGSOA(igsoa.Dim2D, p.Nx, p.Ny, 1, p.IGSOAParams)
	case TypeIGSOAComplex3D:
		return m.createIGSOA(igsoa.Dim3D, p.Nx, p.Ny, p.Nz, p.IGSOAParams)
	case TypeSATPHiggs1D:
		return m.createSATP(satp.Dim1D, p.NumNodes, 1, 1, p.SATPParams)
	case TypeSATPHiggs2D:
		return m.createSATP(satp.Dim2D, p.Nx, p.Ny, 1, p.SATPParams)
	case TypeSATPHiggs3D:
		return m.createSATP(satp.Dim3D, p.Nx, p.Ny, p.Nz, p.SATPParams)
	case TypeSIDTernary:
		return m.createSID(p.SIDLength, p.SIDCapacity, p.SIDEpsConservation, p.SIDEpsDelta)
	case TypeIGSOAGW:
		// Listed in the closed engine_type set but no operation anywhere
		// in this system describes its semantics; per the documented
		// policy of never synthesizing a contract for an underspecified
		// stub, it is recognized but never constructible.
		return nil, fmt.Errorf("%w: %q has no backing implementation", ErrEngineTypeUnavailable, engineType)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngineType, engineType)
	}
}

func (m *Manager) createPhase4B(numNodes int) (*Instance, error) {
	if m.kernel == nil {
		return nil, fmt.Errorf("%w: phase4b (kernel library not loaded)", ErrEngineTypeUnavailable)
	}
	if numNodes <= 0 || numNodes > cellular.MaxNodes {
		return nil, fmt.Errorf("%w: got %d", cellular.ErrInvalidNodeCount, numNodes)
	}
	handle := m.kernel.CreateEngine(int64(numNodes))
	if handle < 0 {
		return nil, fmt.Errorf("%w: kernel rejected num_nodes=%d", cellular.ErrInvalidNodeCount, numNodes)
	}
	inst := &Instance{
		ID: m.generateEngineID(), EngineType: TypePhase4B, NumNodes: numNodes,
		Nx: numNodes, Ny: 1, Nz: 1, CreatedAt: time.Now(),
		kernelHandle: handle,
	}
	m.instances[inst.ID] = inst
	return inst, nil
}

func (m *Manager) createIGSOA(dim igsoa.Dim, nx, ny, nz int, p igsoa.Params) (*Instance, error) {
	var eng *igsoa.Engine
	var err error
	switch dim {
	case igsoa.Dim1D:
		eng, err = igsoa.New1D(nx, p)
	case igsoa.Dim2D:
		eng, err = igsoa.New2D(nx, ny, p)
	case igsoa.Dim3D:
		eng, err = igsoa.New3D(nx, ny, nz, p)
	}
	if err != nil {
		return nil, err
	}
	inst := &Instance{
		ID: m.generateEngineID(), EngineType: igsoaEngineType(dim), NumNodes: nx * ny * nz,
		Nx: nx, Ny: ny, Nz: nz, CreatedAt: time.Now(), IGSOA: eng,
	}
	m.instances[inst.ID] = inst
	return inst, nil
}

func igsoaEngineType(dim igsoa.Dim) EngineType {
	switch dim {
	case igsoa.Dim2D:
		return TypeIGSOAComplex2D
	case igsoa.Dim3D:
		return TypeIGSOAComplex3D
	default:
		return TypeIGSOAComplex
	}
}

func (m *Manager) createSATP(dim satp.Dim, nx, ny, nz int, p satp.Params) (*Instance, error) {
	var eng *satp.Engine
	var err error
	switch dim {
	case satp.Dim1D:
		eng, err = satp.New1D(nx, p)
	case satp.Dim2D:
		eng, err = satp.New2D(nx, ny, p)
	case satp.Dim3D:
		eng, err = satp.New3D(nx, ny, nz, p)
	}
	if err != nil {
		return nil, err
	}
	inst := &Instance{
		ID: m.generateEngineID(), EngineType: satpEngineType(dim), NumNodes: nx * ny * nz,
		Nx: nx, Ny: ny, Nz: nz, CreatedAt: time.Now(), SATP: eng,
	}
	m.instances[inst.ID] = inst
	return inst, nil
}

func satpEngineType(dim satp.Dim) EngineType {
	switch dim {
	case satp.Dim2D:
		return TypeSATPHiggs2D
	case satp.Dim3D:
		return TypeSATPHiggs3D
	default:
		return TypeSATPHiggs1D
	}
}

func (m *Manager) createSID(length int, capacity, epsConservation, epsDelta float64) (*Instance, error) {
	eng, err := sid.NewEngine(length, capacity, epsConservation, epsDelta)
	if err != nil {
		return nil, err
	}
	inst := &Instance{
		ID: m.generateEngineID(), EngineType: TypeSIDTernary, NumNodes: length,
		Nx: length, Ny: 1, Nz: 1, CreatedAt: time.Now(), SID: eng,
	}
	m.instances[inst.ID] = inst
	return inst, nil
}

// RunMission runs a phase4b mission through the resolved kernel library.
// The kernel handle crosses the cgo boundary by value; Instance keeps it
// unexported, so only manager methods (this one, GetMetrics and Destroy)
// read it.
func (m *Manager) RunMission(id string, input, control []float64, numSteps, iters int) (cellular.Metrics, error) {
	inst, err := m.Get(id)
	if err != nil {
		return cellular.Metrics{}, err
	}
	if inst.EngineType != TypePhase4B {
		return cellular.Metrics{}, fmt.Errorf("%w: %q is not a phase4b engine", ErrWrongEngineType, id)
	}
	if m.kernel == nil {
		return cellular.Metrics{}, fmt.Errorf("%w: phase4b kernel unloaded", ErrEngineTypeUnavailable)
	}
	rc := m.kernel.RunMission(inst.kernelHandle, input, control, int64(numSteps), int64(iters))
	if rc != 0 {
		return cellular.Metrics{}, fmt.Errorf("%w: kernel returned code %d", ErrMissionFailed, rc)
	}
	nsPerOp, opsPerSec, speedup, totalOps := m.kernel.GetMetrics(inst.kernelHandle)
	return cellular.Metrics{NsPerOp: nsPerOp, OpsPerSec: opsPerSec, Speedup: speedup, TotalOps: totalOps}, nil
}

// GetMetrics reports the four-tuple performance block for any engine
// family without rerunning a mission: phase4b reads straight through to
// the kernel's own stateful GetMetrics symbol, igsoa/satp report the
// metrics recorded by their last RunMission/Evolve call.
func (m *Manager) GetMetrics(id string) (cellular.Metrics, error) {
	inst, err := m.Get(id)
	if err != nil {
		return cellular.Metrics{}, err
	}
	switch inst.EngineType {
	case TypePhase4B:
		if m.kernel == nil {
			return cellular.Metrics{}, fmt.Errorf("%w: phase4b kernel unloaded", ErrEngineTypeUnavailable)
		}
		nsPerOp, opsPerSec, speedup, totalOps := m.kernel.GetMetrics(inst.kernelHandle)
		return cellular.Metrics{NsPerOp: nsPerOp, OpsPerSec: opsPerSec, Speedup: speedup, TotalOps: totalOps}, nil
	case TypeIGSOAComplex, TypeIGSOAComplex2D, TypeIGSOAComplex3D:
		mm := inst.IGSOA.GetMetrics()
		return cellular.Metrics{NsPerOp: mm.NsPerOp, OpsPerSec: mm.OpsPerSec, Speedup: mm.Speedup, TotalOps: mm.TotalOps}, nil
	case TypeSATPHiggs1D, TypeSATPHiggs2D, TypeSATPHiggs3D:
		mm := inst.SATP.GetMetrics()
		return cellular.Metrics{NsPerOp: mm.NsPerOp, OpsPerSec: mm.OpsPerSec, Speedup: mm.Speedup, TotalOps: mm.TotalOps}, nil
	default:
		return cellular.Metrics{}, fmt.Errorf("%w: %q has no mission metrics", ErrWrongEngineType, id)
	}
}

// Get returns the instance registered under id.
func (m *Manager) Get(id string) (*Instance, error) {
	inst, ok := m.instances[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEngineNotFound, id)
	}
	return inst, nil
}

// List returns every live instance, ordered by id.
func (m *Manager) List() []*Instance {
	out := make([]*Instance, 0, len(m.instances))
	for _, inst := range m.instances {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Destroy type-switches to the correct teardown for id and removes it
// from the registry. A second call on the same id returns
// ErrEngineNotFound rather than crashing, which is the documented
// double-destroy contract.
func (m *Manager) Destroy(id string) error {
	inst, ok := m.instances[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrEngineNotFound, id)
	}
	switch inst.EngineType {
	case TypePhase4B:
		if m.kernel != nil {
			m.kernel.DestroyEngine(inst.kernelHandle)
		}
	case TypeIGSOAComplex, TypeIGSOAComplex2D, TypeIGSOAComplex3D:
		inst.IGSOA = nil
	case TypeSATPHiggs1D, TypeSATPHiggs2D, TypeSATPHiggs3D:
		inst.SATP = nil
	case TypeSIDTernary:
		inst.SID = nil
	}
	delete(m.instances, id)
	return nil
}

// SetNodePsi delegates to the named instance's igsoa coordinate-transform
// setter, rejecting ids that do not name an igsoa engine.
func (m *Manager) SetNodePsi(id string, x, y, z int, psi complex128) error {
	inst, err := m.Get(id)
	if err != nil {
		return err
	}
	if inst.IGSOA == nil {
		return fmt.Errorf("%w: %q is not an igsoa engine", ErrWrongEngineType, id)
	}
	return inst.IGSOA.SetNodePsi(x, y, z, psi)
}

// GetNodePsi delegates to the named instance's igsoa coordinate-transform
// getter, rejecting ids that do not name an igsoa engine.
func (m *Manager) GetNodePsi(id string, x, y, z int) (complex128, error) {
	inst, err := m.Get(id)
	if err != nil {
		return 0, err
	}
	if inst.IGSOA == nil {
		return 0, fmt.Errorf("%w: %q is not an igsoa engine", ErrWrongEngineType, id)
	}
	return inst.IGSOA.GetNodePsi(x, y, z)
}

// Close performs process-wide teardown: it unloads the resolved kernel
// library, whose own teardown covers the FFT plan cache entirely owned
// inside that shared library, and clears every remaining instance. Every
// step runs even if an earlier one fails; errors are collected rather
// than the first one short-circuiting the rest.
func (m *Manager) Close() error {
	var errs []error
	if m.kernel != nil {
		if err := m.kernel.Close(); err != nil {
			errs = append(errs, err)
		}
		m.kernel = nil
	}
	for id := range m.instances {
		delete(m.instances, id)
	}
	return errors.Join(errs...)
}
