// Code generated by hand in the style of mockgen for go.uber.org/mock;
// regenerate with:
//   mockgen -source=loader.go -destination=mock_loader.go -package=kernelloader
package kernelloader

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockLoader is a mock of the Loader interface, used by
// internal/manager's test suite to stand in for a loaded kernel library
// (create, run, metrics, close) without a real cgo build.
type MockLoader struct {
	ctrl     *gomock.Controller
	recorder *MockLoaderMockRecorder
}

// MockLoaderMockRecorder is the mock recorder for MockLoader.
type MockLoaderMockRecorder struct {
	mock *MockLoader
}

// NewMockLoader creates a new mock instance.
func NewMockLoader(ctrl *gomock.Controller) *MockLoader {
	mock := &MockLoader{ctrl: ctrl}
	mock.recorder = &MockLoaderMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockLoader) EXPECT() *MockLoaderMockRecorder {
	return m.recorder
}

func (m *MockLoader) CreateEngine(numNodes int64) int64 {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateEngine", numNodes)
	return ret[0].(int64)
}

func (mr *MockLoaderMockRecorder) CreateEngine(numNodes interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateEngine", reflect.TypeOf((*MockLoader)(nil).CreateEngine), numNodes)
}

func (m *MockLoader) DestroyEngine(handle int64) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "DestroyEngine", handle)
}

func (mr *MockLoaderMockRecorder) DestroyEngine(handle interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DestroyEngine", reflect.TypeOf((*MockLoader)(nil).DestroyEngine), handle)
}

func (m *MockLoader) RunMission(handle int64, input, control []float64, numSteps, iters int64) int32 {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RunMission", handle, input, control, numSteps, iters)
	return ret[0].(int32)
}

func (mr *MockLoaderMockRecorder) RunMission(handle, input, control, numSteps, iters interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RunMission", reflect.TypeOf((*MockLoader)(nil).RunMission), handle, input, control, numSteps, iters)
}

func (m *MockLoader) GetMetrics(handle int64) (float64, float64, float64, int64) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetMetrics", handle)
	return ret[0].(float64), ret[1].(float64), ret[2].(float64), ret[3].(int64)
}

func (mr *MockLoaderMockRecorder) GetMetrics(handle interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetMetrics", reflect.TypeOf((*MockLoader)(nil).GetMetrics), handle)
}

func (m *MockLoader) Close() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close")
	err, _ := ret[0].(error)
	return err
}

func (mr *MockLoaderMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockLoader)(nil).Close))
}
