// Package rewrite implements SID diagram pattern matching and
// expression-driven rewriting: matching a parsed expression against a
// diagram subgraph, and applying a matched rewrite with fresh ids, edge
// redirection, and cycle rollback.
package rewrite

import (
	"errors"
	"fmt"

	"github.com/jihwan-dase/dase-core/internal/sid/diagram"
	"github.com/jihwan-dase/dase-core/internal/sid/expr"
)

// MaxRewriteIterations bounds apply_rewrites_until_fixed so a
// non-converging rule set terminates rather than looping forever.
const MaxRewriteIterations = 1000

var (
	ErrNoMatch       = errors.New("rewrite: no match found")
	ErrWouldIntroduceCycle = errors.New("rewrite: would introduce cycle")
)

// MatchExpr walks rootID's subgraph against pattern, rejecting matches
// where a node carries strictly more inputs than the pattern, and
// requiring variable bindings to stay consistent across the match.
// matchedOps collects the ids of every operator node consumed by the
// match (used by ApplyExprRewrite to know what to remove).
func MatchExpr(pattern *expr.Node, d *diagram.Diagram, rootID string) (bindings map[string]string, matchedOps []string, ok bool) {
	bindings = map[string]string{}
	ok = matchNode(pattern, d, rootID, bindings, &matchedOps)
	if !ok {
		return nil, nil, false
	}
	return bindings, matchedOps, true
}

func matchNode(pattern *expr.Node, d *diagram.Diagram, nodeID string, bindings map[string]string, matchedOps *[]string) bool {
	if pattern.Op == "" {
		return matchAtom(pattern, d, nodeID, bindings)
	}

	node, found := d.NodeByID(nodeID)
	if !found {
		return false
	}
	if node.Kind != diagram.Kind(pattern.Op) {
		return false
	}
	if len(node.Inputs) > len(pattern.Args) {
		// extra inputs are not discardable
		return false
	}
	if len(node.Inputs) < len(pattern.Args) {
		return false
	}
	*matchedOps = append(*matchedOps, nodeID)
	for i, arg := range pattern.Args {
		if !matchNode(arg, d, node.Inputs[i], bindings, matchedOps) {
			return false
		}
	}
	return true
}

func matchAtom(pattern *expr.Node, d *diagram.Diagram, nodeID string, bindings map[string]string) bool {
	if pattern.IsVar {
		if existing, bound := bindings[pattern.Atom]; bound {
			return existing == nodeID
		}
		for _, v := range bindings {
			if v == nodeID {
				// this diagram node is already captured by a different variable
				return false
			}
		}
		bindings[pattern.Atom] = nodeID
		return true
	}

	node, found := d.NodeByID(nodeID)
	if !found {
		return false
	}
	if node.Kind == diagram.KindP {
		return contains(node.DofRefs, pattern.Atom)
	}
	return contains(node.AtomArgs, pattern.Atom)
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// idGen mints fresh, collision-free node ids for a single rewrite
// application.
type idGen struct {
	ruleID string
	n      int
}

func (g *idGen) next() string {
	g.n++
	return fmt.Sprintf("%s_r%d", g.ruleID, g.n)
}

// ApplyExprRewrite finds a single match of pattern anywhere in the
// diagram and replaces it with replacement. On success it returns
// applied=true and a human-readable message; if no match exists, or the
// rewrite would introduce a cycle, it returns applied=false without
// mutating the diagram (a cycle-introducing rewrite is rolled back from
// a pre-mutation snapshot).
func ApplyExprRewrite(d *diagram.Diagram, pattern, replacement *expr.Node, ruleID string) (applied bool, message string, err error) {
	var bindings map[string]string
	var matchedOps []string
	var matchRoot string
	found := false

	for _, n := range d.Nodes {
		b, ops, ok := MatchExpr(pattern, d, n.ID)
		if ok {
			bindings, matchedOps, matchRoot, found = b, ops, n.ID, true
			break
		}
	}
	if !found {
		return false, "no match found", nil
	}

	snapshot := d.Clone()

	gen := &idGen{ruleID: ruleID}
	newRootID, err := buildReplacement(d, replacement, bindings, gen)
	if err != nil {
		*d = *snapshot
		return false, "", err
	}

	for i, e := range d.Edges {
		if e.To == matchRoot {
			d.Edges[i].To = newRootID
		}
		if e.From == matchRoot {
			d.Edges[i].From = newRootID
		}
	}

	removeSet := map[string]bool{}
	for _, id := range matchedOps {
		removeSet[id] = true
	}
	for id := range removeSet {
		d.RemoveNode(id)
	}
	kept := d.Edges[:0]
	for _, e := range d.Edges {
		if removeSet[e.From] || removeSet[e.To] {
			continue
		}
		kept = append(kept, e)
	}
	d.Edges = kept

	if d.HasCycle() {
		*d = *snapshot
		return false, "would introduce cycle", nil
	}

	return true, fmt.Sprintf("applied rule %s", ruleID), nil
}

// buildReplacement recursively instantiates replacement, returning the
// id of its root node. Variable leaves resolve to their bound diagram
// node (no new node created); literal leaves become fresh P nodes
// carrying the literal as a dof reference. Every constructed non-leaf
// node gets an edge from each of its inputs.
func buildReplacement(d *diagram.Diagram, node *expr.Node, bindings map[string]string, gen *idGen) (string, error) {
	if node.Op == "" {
		if node.IsVar {
			id, ok := bindings[node.Atom]
			if !ok {
				return "", fmt.Errorf("rewrite: replacement references unbound variable %q", node.Atom)
			}
			return id, nil
		}
		id := gen.next()
		d.AddNode(diagram.Node{ID: id, Kind: diagram.KindP, DofRefs: []string{node.Atom}})
		return id, nil
	}

	inputs := make([]string, len(node.Args))
	for i, arg := range node.Args {
		childID, err := buildReplacement(d, arg, bindings, gen)
		if err != nil {
			return "", err
		}
		inputs[i] = childID
	}

	id := gen.next()
	newNode := diagram.Node{
		ID: id, Kind: diagram.Kind(node.Op), Inputs: inputs,
		Irreversible: node.Op == expr.OpO,
	}
	d.AddNode(newNode)
	for i, childID := range inputs {
		d.AddEdge(diagram.Edge{ID: gen.next(), From: childID, To: id, Port: i})
	}
	return id, nil
}

// ApplyRewritesUntilFixed repeatedly applies the rewrite to a true
// fixed point (no more matches, or the first cycle-rejected attempt),
// bounded by MaxRewriteIterations.
func ApplyRewritesUntilFixed(d *diagram.Diagram, pattern, replacement *expr.Node, ruleID string) (iterations int, lastMessage string, err error) {
	for i := 0; i < MaxRewriteIterations; i++ {
		applied, msg, err := ApplyExprRewrite(d, pattern, replacement, ruleID)
		if err != nil {
			return i, msg, err
		}
		if !applied {
			return i, msg, nil
		}
		iterations++
		lastMessage = msg
	}
	return iterations, lastMessage, fmt.Errorf("rewrite: exceeded MaxRewriteIterations (%d) without reaching a fixed point", MaxRewriteIterations)
}
