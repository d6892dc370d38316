/*
Package stage runs small, linear state machines expressed as graphs of stages.

A stage is a function from state to state. Transitions are either fixed edges
or branches whose router picks the next stage from the current state. The
machine stops when a transition targets Done.

	machine, err := stage.NewGraph[State]().
	    AddStage("request", request).
	    AddStage("parse", parse).
	    AddEdge("request", "parse").
	    AddBranch("parse", func(ctx context.Context, s State) string {
	        if s.OK {
	            return stage.Done
	        }
	        return "request"
	    }).
	    SetEntry("request").
	    Compile()

	final, err := machine.Run(ctx, State{})

Graph is a single-goroutine builder. Machine is immutable and safe for
concurrent Run calls; each Run owns its state value.
*/
package stage
