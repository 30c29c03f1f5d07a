// Package nodes provides the built-in node types and a registry
// pre-populated with them.
//
//	entry         control output "GraphStartPoint"; where every skill begins
//	log           logs its "message" input and finishes
//	wait          finishes after a fixed number of ticks
//	counter       counts updates, finishing after "times" of them
//	branch        routes control to "true" or "false" from a bool input
//	constant      data node publishing a typed inline value
//	set_variable  assigns its "value" input to a graph parameter
//	parameter     parameter Get/Set reference (see graph.ParameterNode)
package nodes
