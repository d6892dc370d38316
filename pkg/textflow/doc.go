/*
Package textflow turns free-form text into an ordered list of flowchart
nodes and lays those nodes out on a drawing surface.

# Overview

Extraction asks a generative text service to break the input into
titled steps, parses the reply, and degrades to a plain sentence split
when the reply cannot be parsed or no credential is configured:

	p := textflow.NewPipeline(llm.NewOpenAI(apiKey))
	res := p.Extract(ctx, "Boil water. Add pasta. Drain.", apiKey != "")
	if res.Status == textflow.StatusSuccess {
	    fmt.Println(res.Text())
	}

A successful result always carries at least one node. Failures carry a
typed error; use KindOf or errors.As to inspect it.

# Layout

Emitter stacks one labelled box per node vertically on a Canvas:

	err := textflow.NewEmitter().Emit(ctx, res.Nodes, canvas)

Drawing calls are issued strictly in order and each one is awaited. On
failure a *DrawingError reports the node index and command; shapes
already placed are left in place.

# Sessions

Session wraps a Pipeline for interactive use. Each Submit supersedes
the previous one, and results of superseded submissions are discarded.
*/
package textflow
