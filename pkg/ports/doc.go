/*
Package ports defines the driven ports of the engine.

Adapters under pkg/adapters implement them; the engine and the servers only
ever see these interfaces.

# Key Interfaces

  - GraphStore: saves and loads graph documents.
  - Locker: serializes access to one graph across replicas.

RunGraphStoreContract and RunLockerContract are shared test suites every
adapter runs against itself.
*/
package ports
