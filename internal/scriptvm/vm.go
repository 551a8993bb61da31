// Package scriptvm is a sandboxed evaluator for the small, self-contained
// JS snippets (array/string manipulation only) that the platform's player
// script uses to obfuscate signed URL parameters.
package scriptvm

import (
	"context"
	"fmt"
	"time"

	"github.com/dop251/goja"

	"github.com/corestream/ytv1/internal/rerr"
)

// DefaultInstructionBudget is the default bound on interpreter work before
// a run is aborted with ScriptTimeoutError.
const DefaultInstructionBudget = 100_000

// approxOpsPerMillisecond is a conservative estimate of goja's throughput
// for array/string-manipulation bytecode, used to translate an instruction
// budget into a wall-clock watchdog deadline: goja does not expose a
// public per-opcode counter, so a deadline derived from the budget is the
// closest enforceable proxy for "bounded instruction count" available
// without forking the interpreter.
const approxOpsPerMillisecond = 2000

// Evaluator runs small, host-isolated JS functions.
type Evaluator struct {
	instructionBudget int
}

// New returns an Evaluator bounded by budget instructions (0 uses the
// default).
func New(budget int) *Evaluator {
	if budget <= 0 {
		budget = DefaultInstructionBudget
	}
	return &Evaluator{instructionBudget: budget}
}

// Run evaluates source, a single self-contained JS function expression
// (e.g. "function(a){...}"), by calling it with args and returning its
// string result. The runtime has no file, network, or time host access.
func (e *Evaluator) Run(ctx context.Context, source string, args ...string) (string, error) {
	vm := goja.New()

	deadline := time.Duration(e.instructionBudget) * time.Millisecond / approxOpsPerMillisecond
	if deadline <= 0 {
		deadline = time.Millisecond
	}
	timer := time.AfterFunc(deadline, func() {
		vm.Interrupt(&rerr.ScriptTimeoutError{Budget: e.instructionBudget})
	})
	defer timer.Stop()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(&rerr.CancelledError{Cause: ctx.Err()})
		case <-stop:
		}
	}()

	const fnName = "__ytv1_script_main"
	if _, err := vm.RunString(fnName + "=(" + source + ")"); err != nil {
		return "", unwrapInterrupt(err)
	}

	callable, ok := goja.AssertFunction(vm.Get(fnName))
	if !ok {
		return "", fmt.Errorf("scriptvm: source did not evaluate to a callable function")
	}

	callArgs := make([]goja.Value, len(args))
	for i, a := range args {
		callArgs[i] = vm.ToValue(a)
	}
	result, err := callable(goja.Undefined(), callArgs...)
	if err != nil {
		return "", unwrapInterrupt(err)
	}
	return result.String(), nil
}

func unwrapInterrupt(err error) error {
	if ie, ok := err.(*goja.InterruptedError); ok {
		if v := ie.Value(); v != nil {
			if asErr, ok := v.(error); ok {
				return asErr
			}
		}
	}
	return err
}
