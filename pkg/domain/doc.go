/*
Package domain contains the persisted model and the shared vocabulary of the
skillgraph engine.

It holds what every layer agrees on and nothing that needs I/O: the graph
document written by stores, the sentinel errors, the change events emitted to
editor collaborators and the lifecycle hooks consumed by observability.

# Key Entities

  - GraphDocument: nodes, edges, parameters and the entry node GUID.
  - NodeRecord / EdgeRecord / ParameterRecord: the persisted rows.
  - GraphChange: structural mutation notification.
  - SkillHooks: scheduler callbacks (skill start/finish, node start/finish/error, tick).
*/
package domain
