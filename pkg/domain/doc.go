/*
Package domain contains the shared vocabulary of arbor.

It is kept free of I/O so that every other package (the element tree, the
instrumentation logger, engine adapters, the CLI) can depend on it.

# Key Entities

  - SpanDescriptor / SpanEvent: what the instrumentation logger reports around a call.
  - LifecycleHooks: callbacks fired when spans open and close.
  - Verb names: the standard verb vocabulary shared by engines and widgets.
  - Sentinel errors for construction and dispatch failures.
*/
package domain
