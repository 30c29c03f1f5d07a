/*
Package scheduler runs skills: frame-stepped walks over a graph.

A Skill moves NotStarted -> Running -> Finished. Start runs the entry node
and launches its control successors; Update, called once per external tick,
updates every node in flight. A node signals completion through
graph.Node.Finish, which hands control to its successors immediately, so a
chain of nodes that finish on start drains within one call. Nodes discovered
during a tick are staged and join the running set when the tick ends.

Before a node starts, each connected data input pulls its value from the
upstream node once. Sequential upstream nodes carry no value.

A node with several incoming control edges runs once per finished
predecessor; there is no join barrier.

Failures inside a node are logged and reported through SkillHooks; the
failing node is dropped and the rest of the skill continues.
*/
package scheduler
