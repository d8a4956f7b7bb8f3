/*
Package domain contains the core models shared by the cuevox interpreter, its
grammar and its adapters.

It is kept free of I/O: entities dispatch commands through a CommandSink
supplied by an adapter, and actions are plain values that the rule engine
performs after a whole rule has matched.

# Key Entities

  - Entity: an addressable automation object (label, aliases, kind, group memberships).
  - Item: the concrete Entity built by registries from an ItemSpec.
  - Parameter: the entities (and extra values) collected while matching a rule.
  - Action: a deferred effect, either "send a command" or a host callback.
  - Annotation: the observable outcome of interpreting one utterance.
*/
package domain
