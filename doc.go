/*
Package skillgraph is a node-graph dataflow engine: typed ports joined by
edges, graph-scoped parameters, and a frame-stepped scheduler that walks the
graph from its entry node.

# Concept

A graph holds nodes, edges and parameters. Control edges decide which node
runs next; data edges carry values that are pulled from upstream nodes just
before a node starts. A skill is one walk over a graph. Nodes that finish on
start hand control to their successors inside the same call, while
long-running nodes stay in flight and receive one update per tick.

The Engine ties the pieces together: a node registry, a graph store for
persistence, a locker that keeps two runs of the same graph apart, and the
scheduler hooks used for metrics and tracing.

# Usage

	eng := skillgraph.New(skillgraph.WithStore(file.New("./graphs")))

	b := dsl.New(eng.Registry()).ID("hello")
	b.Add("start", "entry").Then("say")
	b.Add("say", "log").Value("message", "hello")

	g, err := b.Build(graph.WithLogger(eng.Logger()))
	if err != nil {
		log.Fatal(err)
	}

	skill, err := eng.Run(ctx, g, skillgraph.RunOptions{MaxTicks: 100})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(skill.State(), skill.Frame())

Network adapters (HTTP, MCP) share one graph through a Workspace, which
serializes access to it.
*/
package skillgraph
