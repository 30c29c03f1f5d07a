/*
Package graph is the runtime model of a skill graph: nodes, their ports, the
edges between them and the graph-scoped parameter store.

Node types are registered once as a Descriptor listing their ports in
declaration order. Sequential types additionally inherit a "start" control
input and an "end" control output. When a node is (re)initialized its ports
are rebuilt into an arena with stable indices, and persisted edges are
re-attached by (field, identifier).

Connectivity rules enforced by Graph.Connect:

  - the declared types of both ports are identical (no widening);
  - the ports belong to different nodes and face opposite directions;
  - a port that does not accept multiple edges keeps at most one, and
    connecting to it replaces the old edge unless WithoutAutoDisconnect is set.

Disconnecting the last edge of a data input resets its value to the type
default unless the behavior implements PortResetter and declines.

Parameter nodes (ParameterNode) expose a single port whose direction follows
their accessor. Flipping the accessor disconnects the old port and creates
the opposite one. A parameter node whose GUID no longer resolves removes
itself when added to a graph.

The package holds no locks; a Graph is owned by one goroutine at a time.
*/
package graph
