/*
Package ports defines the driven ports (interfaces) of the cuevox interpreter.

These interfaces decouple the grammar core from the automation backend and from
the hosts that drive it.

# Key Interfaces

  - Registry: read-only snapshot of the addressable entities (items and groups).
  - ItemSource: loads item definitions from a file or a backend.
  - Journal: records the annotation of every interpreted utterance.
  - Interpreter: the engine surface consumed by the HTTP and MCP adapters.
*/
package ports
