package transaction

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// transitionEdge is an edge in the state machine graph, labelled with
// the event that drives the transition.
type transitionEdge struct {
	simple.Edge
	event Event
}

// stateMachine holds the saga transition table as a directed graph.
// States are graph nodes; an edge from A to B labelled with event E
// means "E moves the saga from A to B".
type stateMachine struct {
	graph *simple.DirectedGraph
}

var allStates = []State{
	StatePending,
	StateFulfillmentSuccess,
	StateFulfillmentFailed,
	StateMACSuccess,
	StateMACFailed,
}

// machine is the single transition table shared by all sagas. It is
// immutable after package init.
var machine = newStateMachine()

func newStateMachine() *stateMachine {
	g := simple.NewDirectedGraph()
	for _, s := range allStates {
		g.AddNode(simple.Node(s))
	}

	transitions := []struct {
		from  State
		event Event
		to    State
	}{
		{StatePending, EventFulfillSucceeded, StateFulfillmentSuccess},
		{StatePending, EventFulfillFailed, StateFulfillmentFailed},
		{StateFulfillmentSuccess, EventMACSucceeded, StateMACSuccess},
		{StateFulfillmentSuccess, EventMACFailed, StateMACFailed},
	}
	for _, t := range transitions {
		g.SetEdge(transitionEdge{
			Edge: simple.Edge{
				F: simple.Node(t.from),
				T: simple.Node(t.to),
			},
			event: t.event,
		})
	}

	m := &stateMachine{graph: g}
	if err := m.validate(); err != nil {
		// The table is static; an invalid one is a programming error.
		panic(err)
	}
	return m
}

// next resolves the state reached from `from` by `event`. It reports
// false if no edge out of `from` carries that event.
func (m *stateMachine) next(from State, event Event) (State, bool) {
	it := m.graph.From(int64(from))
	for it.Next() {
		to := State(it.Node().ID())
		edge := m.graph.Edge(int64(from), int64(to)).(transitionEdge)
		if edge.event == event {
			return to, true
		}
	}
	return from, false
}

// validate checks the structural invariants of the transition table:
// the graph must be acyclic (a saga run is finite) and terminal states
// must have no outgoing edges.
func (m *stateMachine) validate() error {
	if _, err := topo.Sort(m.graph); err != nil {
		return fmt.Errorf("transition table contains a cycle: %w", err)
	}

	for _, s := range allStates {
		if s.Terminal() && m.graph.From(int64(s)).Len() > 0 {
			return fmt.Errorf("terminal state %s has outgoing transitions", s)
		}
	}

	return nil
}
