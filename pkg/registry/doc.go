// Package registry maps widget kind names to definition factories, so that
// declarative page files can say "kind: input" instead of spelling out
// every method.
package registry
