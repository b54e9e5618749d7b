package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jihwan-dase/dase-core/internal/igsoa"
	"github.com/jihwan-dase/dase-core/internal/kernelloader"
	"github.com/jihwan-dase/dase-core/internal/satp"
)

func TestCreateEngineRejectsUnknownType(t *testing.T) {
	m := New()
	_, err := m.CreateEngine(EngineType("not_a_type"), CreateParams{})
	assert.ErrorIs(t, err, ErrUnknownEngineType)
}

func TestCreateEngineIGSOAGWIsRecognizedButUnavailable(t *testing.T) {
	m := New()
	_, err := m.CreateEngine(TypeIGSOAGW, CreateParams{})
	assert.ErrorIs(t, err, ErrEngineTypeUnavailable)
}

func TestCreatePhase4BWithoutKernelIsUnavailable(t *testing.T) {
	m := New()
	_, err := m.CreateEngine(TypePhase4B, CreateParams{NumNodes: 10})
	assert.ErrorIs(t, err, ErrEngineTypeUnavailable)
}

func TestCreatePhase4BDelegatesToKernel(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoader := kernelloader.NewMockLoader(ctrl)
	mockLoader.EXPECT().CreateEngine(int64(2048)).Return(int64(7))
	mockLoader.EXPECT().DestroyEngine(int64(7))

	m := New()
	m.AttachKernel(mockLoader)

	inst, err := m.CreateEngine(TypePhase4B, CreateParams{NumNodes: 2048})
	require.NoError(t, err)
	assert.Equal(t, "engine_001", inst.ID)
	assert.Equal(t, TypePhase4B, inst.EngineType)
	assert.Equal(t, int64(7), inst.kernelHandle)

	require.NoError(t, m.Destroy(inst.ID))
}

func TestCreatePhase4BRejectsKernelFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoader := kernelloader.NewMockLoader(ctrl)
	mockLoader.EXPECT().CreateEngine(int64(5)).Return(int64(-1))

	m := New()
	m.AttachKernel(mockLoader)

	_, err := m.CreateEngine(TypePhase4B, CreateParams{NumNodes: 5})
	assert.Error(t, err)
}

// Property: engine ids are minted monotonically, regardless of engine
// family mix.
func TestEngineIDsAreMonotonicAcrossFamilies(t *testing.T) {
	m := New()

	i1, err := m.CreateEngine(TypeIGSOAComplex, CreateParams{NumNodes: 8, IGSOAParams: igsoa.DefaultParams()})
	require.NoError(t, err)
	i2, err := m.CreateEngine(TypeSATPHiggs1D, CreateParams{NumNodes: 8, SATPParams: satp.DefaultParams()})
	require.NoError(t, err)
	i3, err := m.CreateEngine(TypeSIDTernary, CreateParams{SIDLength: 4, SIDCapacity: 1.0})
	require.NoError(t, err)

	assert.Equal(t, "engine_001", i1.ID)
	assert.Equal(t, "engine_002", i2.ID)
	assert.Equal(t, "engine_003", i3.ID)
}

func TestCreateIGSOAVariantsTagEngineTypeByDimension(t *testing.T) {
	m := New()
	p := igsoa.DefaultParams()

	i1, err := m.CreateEngine(TypeIGSOAComplex, CreateParams{NumNodes: 16, IGSOAParams: p})
	require.NoError(t, err)
	assert.Equal(t, TypeIGSOAComplex, i1.EngineType)
	assert.NotNil(t, i1.IGSOA)

	i2, err := m.CreateEngine(TypeIGSOAComplex2D, CreateParams{Nx: 4, Ny: 4, IGSOAParams: p})
	require.NoError(t, err)
	assert.Equal(t, TypeIGSOAComplex2D, i2.EngineType)

	i3, err := m.CreateEngine(TypeIGSOAComplex3D, CreateParams{Nx: 2, Ny: 2, Nz: 2, IGSOAParams: p})
	require.NoError(t, err)
	assert.Equal(t, TypeIGSOAComplex3D, i3.EngineType)
}

func TestCreateSATPVariantsTagEngineTypeByDimension(t *testing.T) {
	m := New()
	p := satp.DefaultParams()

	i1, err := m.CreateEngine(TypeSATPHiggs1D, CreateParams{NumNodes: 16, SATPParams: p})
	require.NoError(t, err)
	assert.Equal(t, TypeSATPHiggs1D, i1.EngineType)
	assert.NotNil(t, i1.SATP)

	i2, err := m.CreateEngine(TypeSATPHiggs2D, CreateParams{Nx: 4, Ny: 4, SATPParams: p})
	require.NoError(t, err)
	assert.Equal(t, TypeSATPHiggs2D, i2.EngineType)
}

func TestGetUnknownIDReturnsEngineNotFound(t *testing.T) {
	m := New()
	_, err := m.Get("engine_999")
	assert.ErrorIs(t, err, ErrEngineNotFound)
}

// Property: destroying an engine twice never crashes and reports
// ENGINE_NOT_FOUND-shaped errors both after the fact.
func TestDoubleDestroyIsErrEngineNotFoundNotCrash(t *testing.T) {
	m := New()
	inst, err := m.CreateEngine(TypeSIDTernary, CreateParams{SIDLength: 2, SIDCapacity: 1.0})
	require.NoError(t, err)

	require.NoError(t, m.Destroy(inst.ID))
	err = m.Destroy(inst.ID)
	assert.ErrorIs(t, err, ErrEngineNotFound)

	_, err = m.Get(inst.ID)
	assert.ErrorIs(t, err, ErrEngineNotFound)
}

func TestListOrdersByID(t *testing.T) {
	m := New()
	_, err := m.CreateEngine(TypeSIDTernary, CreateParams{SIDLength: 1, SIDCapacity: 1.0})
	require.NoError(t, err)
	_, err = m.CreateEngine(TypeSIDTernary, CreateParams{SIDLength: 1, SIDCapacity: 1.0})
	require.NoError(t, err)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, "engine_001", list[0].ID)
	assert.Equal(t, "engine_002", list[1].ID)
}

func TestSetGetNodePsiRejectsNonIGSOAEngine(t *testing.T) {
	m := New()
	inst, err := m.CreateEngine(TypeSIDTernary, CreateParams{SIDLength: 1, SIDCapacity: 1.0})
	require.NoError(t, err)

	err = m.SetNodePsi(inst.ID, 0, 0, 0, 1+2i)
	assert.ErrorIs(t, err, ErrWrongEngineType)

	_, err = m.GetNodePsi(inst.ID, 0, 0, 0)
	assert.ErrorIs(t, err, ErrWrongEngineType)
}

func TestSetGetNodePsiRoundTrips(t *testing.T) {
	m := New()
	inst, err := m.CreateEngine(TypeIGSOAComplex2D, CreateParams{Nx: 4, Ny: 4, IGSOAParams: igsoa.DefaultParams()})
	require.NoError(t, err)

	require.NoError(t, m.SetNodePsi(inst.ID, 1, 2, 0, 3+4i))
	got, err := m.GetNodePsi(inst.ID, 1, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, complex(3, 4), got)
}

func TestCloseUnloadsKernelAndClearsInstances(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoader := kernelloader.NewMockLoader(ctrl)
	mockLoader.EXPECT().Close().Return(nil)

	m := New()
	m.AttachKernel(mockLoader)
	_, err := m.CreateEngine(TypeSIDTernary, CreateParams{SIDLength: 1, SIDCapacity: 1.0})
	require.NoError(t, err)

	require.NoError(t, m.Close())
	assert.Empty(t, m.List())
}

func TestCloseCollectsKernelCloseErrorWithoutPanicking(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoader := kernelloader.NewMockLoader(ctrl)
	mockLoader.EXPECT().Close().Return(assertError{})

	m := New()
	m.AttachKernel(mockLoader)

	err := m.Close()
	assert.Error(t, err)
}

type assertError struct{}

func (assertError) Error() string { return "kernel close failed" }

func TestRunMissionDelegatesToKernelAndReportsMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoader := kernelloader.NewMockLoader(ctrl)
	mockLoader.EXPECT().CreateEngine(int64(2048)).Return(int64(3))
	mockLoader.EXPECT().RunMission(int64(3), gomock.Any(), gomock.Any(), int64(20), int64(2048)).Return(int32(0))
	mockLoader.EXPECT().GetMetrics(int64(3)).Return(12.5, 8.0e7, 4.2, int64(81920000))

	m := New()
	m.AttachKernel(mockLoader)
	inst, err := m.CreateEngine(TypePhase4B, CreateParams{NumNodes: 2048})
	require.NoError(t, err)

	metrics, err := m.RunMission(inst.ID, nil, nil, 20, 2048)
	require.NoError(t, err)
	assert.Equal(t, 12.5, metrics.NsPerOp)
	assert.Equal(t, int64(81920000), metrics.TotalOps)
}

func TestRunMissionRejectsNonZeroKernelReturnCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoader := kernelloader.NewMockLoader(ctrl)
	mockLoader.EXPECT().CreateEngine(int64(16)).Return(int64(1))
	mockLoader.EXPECT().RunMission(int64(1), gomock.Any(), gomock.Any(), int64(5), int64(16)).Return(int32(-1))

	m := New()
	m.AttachKernel(mockLoader)
	inst, err := m.CreateEngine(TypePhase4B, CreateParams{NumNodes: 16})
	require.NoError(t, err)

	_, err = m.RunMission(inst.ID, nil, nil, 5, 16)
	assert.ErrorIs(t, err, ErrMissionFailed)
}

func TestRunMissionRejectsWrongEngineType(t *testing.T) {
	m := New()
	inst, err := m.CreateEngine(TypeSIDTernary, CreateParams{SIDLength: 1, SIDCapacity: 1.0})
	require.NoError(t, err)

	_, err = m.RunMission(inst.ID, nil, nil, 1, 1)
	assert.ErrorIs(t, err, ErrWrongEngineType)
}

func TestGetMetricsReadsKernelSymbolDirectlyWithoutRerunningMission(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoader := kernelloader.NewMockLoader(ctrl)
	mockLoader.EXPECT().CreateEngine(int64(64)).Return(int64(9))
	mockLoader.EXPECT().GetMetrics(int64(9)).Return(3.1, 9.0e6, 1.7, int64(512))

	m := New()
	m.AttachKernel(mockLoader)
	inst, err := m.CreateEngine(TypePhase4B, CreateParams{NumNodes: 64})
	require.NoError(t, err)

	metrics, err := m.GetMetrics(inst.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.1, metrics.NsPerOp)
	assert.Equal(t, int64(512), metrics.TotalOps)
}

func TestGetMetricsReportsIGSOALastRecordedMetrics(t *testing.T) {
	m := New()
	inst, err := m.CreateEngine(TypeIGSOAComplex, CreateParams{NumNodes: 16, IGSOAParams: igsoa.DefaultParams()})
	require.NoError(t, err)
	require.NoError(t, inst.IGSOA.RunMission(3, 4))

	metrics, err := m.GetMetrics(inst.ID)
	require.NoError(t, err)
	assert.Equal(t, inst.IGSOA.GetMetrics().TotalOps, metrics.TotalOps)
	assert.Greater(t, metrics.TotalOps, int64(0))
}

func TestGetMetricsReportsSATPLastRecordedMetrics(t *testing.T) {
	m := New()
	inst, err := m.CreateEngine(TypeSATPHiggs1D, CreateParams{NumNodes: 16, SATPParams: satp.DefaultParams()})
	require.NoError(t, err)
	require.NoError(t, inst.SATP.Evolve(3))

	metrics, err := m.GetMetrics(inst.ID)
	require.NoError(t, err)
	assert.Equal(t, inst.SATP.GetMetrics().TotalOps, metrics.TotalOps)
}

func TestGetMetricsRejectsEngineFamilyWithNoMissionMetrics(t *testing.T) {
	m := New()
	inst, err := m.CreateEngine(TypeSIDTernary, CreateParams{SIDLength: 1, SIDCapacity: 1.0})
	require.NoError(t, err)

	_, err = m.GetMetrics(inst.ID)
	assert.ErrorIs(t, err, ErrWrongEngineType)
}
