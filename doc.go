/*
Package arbor describes user interfaces as declarative trees of regions and
drives them through an external query engine.

Every node of a tree carries a locator. Locators compose from the root
down, so a child is found inside its parent without repeating the parent's
selector; a root-anchored locator (see R) opts out of that composition.
Member access on a node is an explicit lookup: reserved fields, own
children, methods and data come first, then the verbs of the bound engine,
which are forwarded on the composed scope. Each method call and each
forwarded verb is recorded as an instrumentation span through the engine's
log primitive, on the same ordered queue as the engine commands.

# Usage

	page := arbor.El(arbor.Def{
		"name": "todo",
		"items": arbor.Def{
			"el":     ".todo-list li",
			"toggle": arbor.El("input.toggle"),
		},
		"banner": arbor.El(arbor.R("header h1")),
	})

	sess, err := arbor.New(engine)
	if err != nil {
		log.Fatal(err)
	}
	defer sess.Close()

	ctx := sess.Context(context.Background())
	if _, err := page.Child("items").Call(ctx, "should", "have.length", 2); err != nil {
		log.Fatal(err)
	}

Only El values, nested Defs and built nodes become children. A bare string
or locator under any key other than "el" is stored as plain data.

Trees hold no engine reference: the same tree can be driven by several
sessions, and calling it without a session context only reaches its own
methods.
*/
package arbor
