package graph

import "github.com/ravikrr/agentgraph/label"

type terminalKind string

// Terminal is the sentinel label that halts a run when it appears in the
// frontier (spec: the "END" sentinel). It has no registered Node: a
// static or conditional edge may target it directly, and the Executor
// treats its presence in the frontier as "run whatever else is still
// active this round, then stop" rather than invoking it.
var Terminal = label.Intern(terminalKind("graph:terminal"))
