/*
Package runner executes scripted interactions against an arbor tree.

A script is a YAML list of steps. Each step names a node by its dotted
child path, a member to call on it and the call arguments; the member can
be a method of the node or a verb of the bound engine. Steps may chain
further verbs on the subject the call returned.

# Key Components

  - Script and Step: the decoded script (yaml.v3 + mapstructure).
  - Runner: executes steps in order and builds a Report.
  - Handler: reports progress; TextHandler for terminals, JSONHandler for
    machines (JSON Lines).
  - StepInterceptor: policy run before each step (confirmation, skipping).

# Usage

	script, err := runner.Load("smoke.yaml")
	if err != nil {
		log.Fatal(err)
	}

	r := runner.NewRunner(
		runner.WithHandler(runner.NewTextHandler(os.Stdout)),
	)
	report, err := r.Run(sess.Context(ctx), tree, script)
*/
package runner
