// Package filter evaluates user-supplied expressions deciding which trace
// events the tracker processes.
package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/hafixo/lttng-analyses/internal/event"
)

// Filter is a pre-compiled boolean expression over an event. The expression
// sees the event name, cpu, the tid field when present, and the raw field
// map, e.g. `name startsWith "syscall_entry_" && cpu == 0`.
type Filter struct {
	source string
	prog   *vm.Program
}

// Compile type-checks and compiles an expression. The expression must
// evaluate to a boolean.
func Compile(expression string) (*Filter, error) {
	exprEnv := map[string]interface{}{
		"name":   "",
		"cpu":    0,
		"tid":    0,
		"fields": map[string]interface{}{},
	}

	prog, err := expr.Compile(expression, expr.Env(exprEnv), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter expression %q: %w", expression, err)
	}
	return &Filter{source: expression, prog: prog}, nil
}

// Source returns the original expression text.
func (f *Filter) Source() string { return f.source }

// Match evaluates the filter against one event.
func (f *Filter) Match(ev *event.Event) (bool, error) {
	tid, _ := ev.Int(event.FieldTID)
	env := map[string]interface{}{
		"name":   ev.Name,
		"cpu":    int(ev.CPU),
		"tid":    int(tid),
		"fields": ev.Fields(),
	}

	output, err := expr.Run(f.prog, env)
	if err != nil {
		return false, fmt.Errorf("failed to evaluate filter expression %q: %w", f.source, err)
	}
	ok, isBool := output.(bool)
	if !isBool {
		return false, fmt.Errorf("filter expression %q did not evaluate to a boolean", f.source)
	}
	return ok, nil
}
