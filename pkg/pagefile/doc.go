/*
Package pagefile reads tree definitions from YAML.

A page file is a mapping. The keys el and name set the node locator and
display name, kind picks a widget from a registry, and data holds plain
members. Every other key is a child: either a nested mapping or a scalar,
which is shorthand for a child with only a locator. The !root tag marks a
root-anchored locator; on a sequence its items are concatenated.

	name: todo
	kind: page
	data:
	  url: https://example.cypress.io/todo
	items:
	  el: .todo-list li
	  toggle: input.toggle
	newTodoField:
	  kind: input
	  el: "[data-test=new-todo]"
	banner: !root header h1
*/
package pagefile
