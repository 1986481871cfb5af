/*
Package ports defines the driven ports (interfaces) that arbor talks to.

The core never renders or manipulates a UI itself. Everything that touches a
real document goes through these interfaces, so a browser driver, a remote
automation service or the bundled HTML engine can be plugged in.

# Key Interfaces

  - Engine: the external query engine (ambient scope, locator queries, verbs, log primitive).
  - Handle: a scoped query result that can be narrowed further or acted upon.
  - Span: an open log entry in the engine's own command log.
  - Queue: the host's sequential command runner. Engine calls and log emits are both submitted here.
*/
package ports
