// Package widgets provides ready-made definitions for common page parts.
//
// Each widget is an element.Def carrying methods that forward to engine
// verbs through Node.Delegate, so a call shows up in the command log as the
// widget method wrapping the engine command it issued. Members passed by
// the caller take precedence over the widget's own.
package widgets
