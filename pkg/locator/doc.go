/*
Package locator defines the values that address a UI region.

A Locator is one of three kinds:

  - Text: a relative fragment, joined with ancestor fragments by a single space.
  - Root: text that also stops upward composition (ancestor text is ignored).
  - Resolver: a function that derives a new handle from its parent's handle.

A chain of locators (root to leaf) collapses into a Plan with Compose. A Plan
alternates textual queries and resolver calls and can be executed against a
ports.Engine.
*/
package locator
