/*
Package element builds trees of named UI regions and dispatches calls on them.

A tree is declared with Build (or arbor.El) from a Def: an optional "el"
locator, an optional "name", nested nodes, methods and plain data.

	var todo = element.MustBuild(element.Def{
		"el":    ".todoapp",
		"name":  "todo",
		"items": element.MustBuild(".todo-list li"),
		"newTodo": element.MustBuild(element.Def{
			"el": locator.Root("[data-test=new-todo]"),
		}),
	})

Reusing a built node under several parents is safe: each embedding is a fresh
clone with its own parent link.

At run time, Get classifies a member name into one of three categories:
reserved fields (el, name, @parent), own members (children, methods, data)
and verbs of the engine bound to the context. Verbs resolve the node's
locator chain on every call, so nothing is cached between calls.
*/
package element
