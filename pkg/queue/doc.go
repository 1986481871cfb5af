/*
Package queue provides a sequential command runner implementing ports.Queue.

Serial owns one worker goroutine. Commands run strictly in the order they were
enqueued, one at a time, which is what keeps instrumentation spans correctly
interleaved with the engine calls they describe.
*/
package queue
