/*
Package dsl provides a fluent Go API for assembling arbor trees.

It is an alternative to writing nested element.Def literals by hand, and is
handy when the tree shape is computed at runtime.

Example usage:

	b := dsl.New()
	b.Root().Name("todo")
	b.Add("items").El(".todo-list li").Method("setCompleted", setCompleted)
	b.Add("items.toggle").El("input.toggle")
	b.Add("header").Root("header h1")

	tree, err := b.Build()
*/
package dsl
