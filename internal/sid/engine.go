package sid

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/jihwan-dase/dase-core/internal/sid/diagram"
	"github.com/jihwan-dase/dase-core/internal/sid/expr"
	"github.com/jihwan-dase/dase-core/internal/sid/rewrite"
)

// RewriteEvent records the outcome of a single apply_rewrite /
// set_diagram_expr call, for sid_rewrite_events introspection.
type RewriteEvent struct {
	RuleID    string    `json:"rule_id"`
	Applied   bool      `json:"applied"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Engine is the wrapper-level mass-state object the router talks to: it
// composes a Mixer (the I/N/U triple and conservation bookkeeping) with a
// rewrite diagram, and tracks the outcome of the most recent rewrite.
type Engine struct {
	Mixer   *Mixer
	Diagram *diagram.Diagram

	lastRewriteApplied bool
	lastRewriteMessage string
	rewriteEvents      []RewriteEvent

	createdAt time.Time
}

// NewEngine constructs a ternary engine over fields of length l sharing
// capacity. epsConservation/epsDelta forward to NewMixer's defaulting.
func NewEngine(l int, capacity, epsConservation, epsDelta float64) (*Engine, error) {
	m, err := NewMixer(l, capacity, epsConservation, epsDelta)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Mixer:     m,
		Diagram:   diagram.New(),
		createdAt: time.Now(),
	}, nil
}

// Step commits one mixer step.
func (e *Engine) Step(alpha float64) error {
	return e.Mixer.Step(alpha)
}

// Collapse applies a uniform (all-ones mask) apply_collapse to the U
// field, matching the single-parameter collapse(alpha) surfaced by the
// SID engine's public API.
func (e *Engine) Collapse(alpha float64) error {
	ones := make([]float64, e.Mixer.U.Len())
	for i := range ones {
		ones[i] = 1
	}
	return e.Mixer.U.ApplyCollapse(ones, alpha)
}

// IMass, NMass, UMass report the current role totals.
func (e *Engine) IMass() float64 { return e.Mixer.I.Total() }
func (e *Engine) NMass() float64 { return e.Mixer.N.Total() }
func (e *Engine) UMass() float64 { return e.Mixer.U.Total() }

// InstantaneousGain reports the mixer's EMA-smoothed loop gain as of the
// last committed step.
func (e *Engine) InstantaneousGain() float64 { return e.Mixer.Metrics().LoopGain }

// IsConserved reports whether the current total is within tol of the
// mixer's capacity.
func (e *Engine) IsConserved(tol float64) bool { return e.Mixer.IsConserved(tol) }

// LastRewriteApplied, LastRewriteMessage report the outcome of the most
// recent ApplyRewrite/SetDiagramExpr call; both are zero-valued until the
// first rewrite attempt.
func (e *Engine) LastRewriteApplied() bool   { return e.lastRewriteApplied }
func (e *Engine) LastRewriteMessage() string { return e.lastRewriteMessage }

// RewriteEvents returns the full history of rewrite attempts, oldest
// first.
func (e *Engine) RewriteEvents() []RewriteEvent {
	return append([]RewriteEvent(nil), e.rewriteEvents...)
}

func (e *Engine) recordRewrite(ruleID string, applied bool, message string) {
	e.lastRewriteApplied = applied
	e.lastRewriteMessage = message
	e.rewriteEvents = append(e.rewriteEvents, RewriteEvent{
		RuleID: ruleID, Applied: applied, Message: message, Timestamp: time.Now(),
	})
}

// ApplyRewrite parses pattern/replacement and applies a single rewrite
// pass against the engine's diagram.
func (e *Engine) ApplyRewrite(pattern, replacement, ruleID string) (bool, string, error) {
	p, err := expr.Parse(pattern)
	if err != nil {
		return false, "", err
	}
	r, err := expr.Parse(replacement)
	if err != nil {
		return false, "", err
	}
	applied, message, err := rewrite.ApplyExprRewrite(e.Diagram, p, r, ruleID)
	if err != nil {
		return false, "", err
	}
	e.recordRewrite(ruleID, applied, message)
	return applied, message, nil
}

// SetDiagramExpr replaces the engine's diagram with a literal translation
// of exprStr's parse tree: every leaf (variable or atom) becomes a fresh
// P node carrying the leaf name as its sole dof reference, and every
// operator becomes a node of the matching kind wired to its argument
// nodes in order. A leaf name used more than once resolves to the same P
// node rather than a fresh one, so shared subexpressions share structure.
func (e *Engine) SetDiagramExpr(exprStr, ruleID string) (message string, err error) {
	node, err := expr.Parse(exprStr)
	if err != nil {
		return "", err
	}
	d := diagram.New()
	gen := &idGen{ruleID: ruleID}
	leaves := map[string]string{}
	if _, err := buildDiagramFromExpr(d, node, leaves, gen); err != nil {
		e.recordRewrite(ruleID, false, err.Error())
		return "", err
	}
	e.Diagram = d
	message = "diagram set from expression"
	e.recordRewrite(ruleID, true, message)
	return message, nil
}

// idGen mints fresh, collision-free node/edge ids for a single diagram
// construction pass.
type idGen struct {
	ruleID string
	n      int
}

func (g *idGen) next() string {
	g.n++
	return g.ruleID + "_n" + strconv.Itoa(g.n)
}

func buildDiagramFromExpr(d *diagram.Diagram, node *expr.Node, leaves map[string]string, gen *idGen) (string, error) {
	if node.Op == "" {
		if id, ok := leaves[node.Atom]; ok {
			return id, nil
		}
		id := gen.next()
		d.AddNode(diagram.Node{ID: id, Kind: diagram.KindP, DofRefs: []string{node.Atom}})
		leaves[node.Atom] = id
		return id, nil
	}

	inputs := make([]string, len(node.Args))
	for i, arg := range node.Args {
		childID, err := buildDiagramFromExpr(d, arg, leaves, gen)
		if err != nil {
			return "", err
		}
		inputs[i] = childID
	}
	id := gen.next()
	d.AddNode(diagram.Node{
		ID: id, Kind: diagram.Kind(node.Op), Inputs: inputs,
		Irreversible: node.Op == expr.OpO,
	})
	for i, childID := range inputs {
		d.AddEdge(diagram.Edge{ID: gen.next(), From: childID, To: id, Port: i})
	}
	return id, nil
}

// diagramJSON mirrors diagram.Diagram's fields for marshalling, giving a
// stable wire shape independent of any future internal field additions.
type diagramJSON struct {
	Nodes []diagram.Node `json:"nodes"`
	Edges []diagram.Edge `json:"edges"`
}

// SetDiagramJSON replaces the engine's diagram with the one decoded from
// raw JSON.
func (e *Engine) SetDiagramJSON(raw []byte) error {
	var dj diagramJSON
	if err := json.Unmarshal(raw, &dj); err != nil {
		return err
	}
	d := diagram.New()
	for _, n := range dj.Nodes {
		d.AddNode(n)
	}
	for _, edge := range dj.Edges {
		d.AddEdge(edge)
	}
	e.Diagram = d
	return nil
}

// GetDiagramJSON serializes the engine's current diagram.
func (e *Engine) GetDiagramJSON() ([]byte, error) {
	return json.Marshal(diagramJSON{Nodes: e.Diagram.Nodes, Edges: e.Diagram.Edges})
}
