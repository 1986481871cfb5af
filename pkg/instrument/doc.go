/*
Package instrument implements the deferred, queue-ordered logger that wraps
every call made through an element tree.

Nothing is logged on the caller's stack. Emit and Span.Close submit commands
to the same ports.Queue the engine calls go through, so a span always opens
before the command it describes runs and closes after it finished, whatever
the relative latencies of logging and I/O.
*/
package instrument
