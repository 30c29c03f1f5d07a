/*
Package dsl provides a fluent builder for constructing skill graphs in Go.

Nodes are declared by alias and wired by alias; the builder assigns GUIDs,
resolves parameter references and picks the entry node when Build runs.
This is handy for tests and for generating graphs without hand-writing a
document.

Example usage:

	b := dsl.New(nil).Name("greeter").Param("Who", "string", "world")

	b.Add("start", "entry").Then("say")
	b.Get("who", "Who").Pipe("output", "say", "message")
	b.Add("say", "log").Then("pause")
	b.Add("pause", "wait").Field("frames", 2)

	g, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}

Control edges created with Then leave from the node's default control
output ("end", or "start_point" on entry nodes). Use ThenOn for named
outputs such as a branch's "true" and "false".
*/
package dsl
