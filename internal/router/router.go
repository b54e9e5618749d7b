// Package router implements the JSON-in/JSON-out command dispatcher:
// Dispatch takes a parsed request and DispatchLine a raw JSON line (the
// form the CLI driver feeds it); both give back a uniform response
// envelope, never a Go error or a panic.
package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jihwan-dase/dase-core/internal/caps"
	"github.com/jihwan-dase/dase-core/internal/cellular"
	"github.com/jihwan-dase/dase-core/internal/igsoa"
	"github.com/jihwan-dase/dase-core/internal/manager"
	"github.com/jihwan-dase/dase-core/internal/satp"
)

// Error codes, the closed taxonomy reported in every error response.
const (
	CodeParseError      = "PARSE_ERROR"
	CodeUnknownCommand   = "UNKNOWN_COMMAND"
	CodeMissingParameter = "MISSING_PARAMETER"
	CodeInvalidParameter = "INVALID_PARAMETER"
	CodeEngineNotFound   = "ENGINE_NOT_FOUND"
	CodeWrongEngineType  = "WRONG_ENGINE_TYPE"
	CodeExecutionFailed  = "EXECUTION_FAILED"
	CodeInvariantFail    = "INVARIANT_FAIL"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Request is the decoded shape of one JSON command line: a command name
// plus an opaque params object whose shape depends on the command.
type Request struct {
	Command string          `json:"command"`
	Params  json.RawMessage `json:"params"`
}

// Response is the uniform envelope returned for every command, success
// or failure. Result and Error/ErrorCode are mutually exclusive.
type Response struct {
	Command         string      `json:"command,omitempty"`
	Status          string      `json:"status"`
	ExecutionTimeMs float64     `json:"execution_time_ms"`
	Result          interface{} `json:"result,omitempty"`
	Error           string      `json:"error,omitempty"`
	ErrorCode       string      `json:"error_code,omitempty"`
}

// routerError carries a specific error code through to the response
// envelope without the handler needing to build a Response itself.
type routerError struct {
	code string
	msg  string
}

func (e *routerError) Error() string { return e.msg }

func newError(code, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if len(msg) == 0 || msg[len(msg)-1] != '.' {
		msg += "."
	}
	return &routerError{code: code, msg: msg}
}

// Router owns the engine manager and answers every command in the
// closed set. It carries no other mutable state: commands are dispatched
// one at a time on a single goroutine by contract, so Router itself
// never needs a mutex.
type Router struct {
	mgr       *manager.Manager
	bootAt    time.Time
	caps      caps.Set
	commands  []string
	engineTypes []manager.EngineType
}

// New builds a Router over an already-constructed manager (with its
// kernel library attached or not — phase4b degrades gracefully either
// way).
func New(mgr *manager.Manager) *Router {
	return &Router{
		mgr:      mgr,
		bootAt:   time.Now(),
		caps:     caps.Detect(),
		commands: append([]string(nil), coreCommands...),
		engineTypes: []manager.EngineType{
			manager.TypePhase4B,
			manager.TypeIGSOAComplex, manager.TypeIGSOAComplex2D, manager.TypeIGSOAComplex3D,
			manager.TypeSATPHiggs1D, manager.TypeSATPHiggs2D, manager.TypeSATPHiggs3D,
			manager.TypeSIDTernary,
			manager.TypeIGSOAGW,
		},
	}
}

// coreCommands is the closed set of commands the router recognizes,
// grouped the way SPEC_FULL.md groups them (introspection / lifecycle /
// stepping & inspection / SID-specific), plus the benchmark stub.
var coreCommands = []string{
	"get_capabilities", "describe_engine", "list_engines",
	"create_engine", "destroy_engine",
	"run_mission", "get_metrics", "get_state",
	"set_igsoa_state", "set_satp_state", "get_satp_state", "get_center_of_mass",
	"sid_step", "sid_collapse", "sid_apply_rewrite",
	"sid_set_diagram_expr", "sid_set_diagram_json", "sid_get_diagram_json", "sid_rewrite_events",
	"benchmark",
}

type handlerFunc func(r *Router, params json.RawMessage) (interface{}, error)

var handlers = map[string]handlerFunc{
	"get_capabilities":      (*Router).handleGetCapabilities,
	"describe_engine":       (*Router).handleDescribeEngine,
	"list_engines":          (*Router).handleListEngines,
	"create_engine":         (*Router).handleCreateEngine,
	"destroy_engine":        (*Router).handleDestroyEngine,
	"run_mission":           (*Router).handleRunMission,
	"get_metrics":           (*Router).handleGetMetrics,
	"get_state":             (*Router).handleGetState,
	"set_igsoa_state":       (*Router).handleSetIGSOAState,
	"set_satp_state":        (*Router).handleSetSATPState,
	"get_satp_state":        (*Router).handleGetSATPState,
	"get_center_of_mass":    (*Router).handleGetCenterOfMass,
	"sid_step":              (*Router).handleSIDStep,
	"sid_collapse":          (*Router).handleSIDCollapse,
	"sid_apply_rewrite":     (*Router).handleSIDApplyRewrite,
	"sid_set_diagram_expr":  (*Router).handleSIDSetDiagramExpr,
	"sid_set_diagram_json":  (*Router).handleSIDSetDiagramJSON,
	"sid_get_diagram_json":  (*Router).handleSIDGetDiagramJSON,
	"sid_rewrite_events":    (*Router).handleSIDRewriteEvents,
	"benchmark":             (*Router).handleBenchmark,
}

// DispatchLine parses raw as a Request and dispatches it, folding a JSON
// parse failure into a CodeParseError response rather than returning a
// Go error — the CLI driver never has to special-case this path.
func (r *Router) DispatchLine(raw []byte) Response {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Response{
			Status:    "error",
			Error:     fmt.Sprintf("could not parse request as JSON: %s.", err),
			ErrorCode: CodeParseError,
		}
	}
	return r.Dispatch(req)
}

// Dispatch runs one already-parsed request and always returns a
// complete Response; handler panics are recovered into INTERNAL_ERROR
// rather than crashing the command loop.
func (r *Router) Dispatch(req Request) (resp Response) {
	start := time.Now()
	defer func() {
		resp.Command = req.Command
		resp.ExecutionTimeMs = float64(time.Since(start)) / float64(time.Millisecond)
		if rec := recover(); rec != nil {
			resp = Response{
				Command:         req.Command,
				Status:          "error",
				Error:           fmt.Sprintf("internal error: %v.", rec),
				ErrorCode:       CodeInternalError,
				ExecutionTimeMs: float64(time.Since(start)) / float64(time.Millisecond),
			}
		}
	}()

	fn, ok := handlers[req.Command]
	if !ok {
		return Response{
			Status:    "error",
			Error:     fmt.Sprintf("unknown command %q.", req.Command),
			ErrorCode: CodeUnknownCommand,
		}
	}

	result, err := fn(r, req.Params)
	if err != nil {
		return errResponse(err)
	}
	return Response{Status: "success", Result: result}
}

func errResponse(err error) Response {
	var rerr *routerError
	if errors.As(err, &rerr) {
		return Response{Status: "error", Error: rerr.msg, ErrorCode: rerr.code}
	}
	return Response{Status: "error", Error: classifyMessage(err), ErrorCode: classify(err)}
}

// classify maps an error from internal/manager or one of the engine
// packages onto the closed error-code taxonomy. Handlers that already
// know the precise code (missing/invalid parameters, SID's rescale
// cap) build a routerError directly instead of routing through this
// default classifier.
func classify(err error) string {
	switch {
	case errors.Is(err, manager.ErrEngineNotFound):
		return CodeEngineNotFound
	case errors.Is(err, manager.ErrWrongEngineType):
		return CodeWrongEngineType
	case errors.Is(err, igsoa.ErrWrongDim), errors.Is(err, satp.ErrWrongDim):
		return CodeWrongEngineType
	case errors.Is(err, manager.ErrUnknownEngineType):
		return CodeInvalidParameter
	case errors.Is(err, manager.ErrEngineTypeUnavailable):
		return CodeExecutionFailed
	case errors.Is(err, manager.ErrMissionFailed):
		return CodeExecutionFailed
	case errors.Is(err, cellular.ErrInvalidNodeCount), errors.Is(err, cellular.ErrInvalidMission):
		return CodeInvalidParameter
	case errors.Is(err, igsoa.ErrInvalidDims), errors.Is(err, igsoa.ErrInvalidParameter),
		errors.Is(err, igsoa.ErrInvalidMission), errors.Is(err, igsoa.ErrUnknownProfile),
		errors.Is(err, igsoa.ErrUnknownMode):
		return CodeInvalidParameter
	case errors.Is(err, satp.ErrInvalidDims), errors.Is(err, satp.ErrInvalidParameter),
		errors.Is(err, satp.ErrInvalidMission), errors.Is(err, satp.ErrUnknownProfile),
		errors.Is(err, satp.ErrUnknownMode):
		return CodeInvalidParameter
	default:
		return CodeExecutionFailed
	}
}

func classifyMessage(err error) string {
	msg := err.Error()
	if len(msg) == 0 || msg[len(msg)-1] != '.' {
		msg += "."
	}
	return msg
}
