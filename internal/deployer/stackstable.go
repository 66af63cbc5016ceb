package deployer

import (
	"sort"
	"sync"

	"github.com/guker/stack-deployment/internal/stack"
)

type (
	typeStacksMapValue = *stack.Stack
)

// stacksTable tracks the stacks this deployer currently owns.
type stacksTable struct {
	stacks sync.Map
}

func newStacksTable() *stacksTable {
	return &stacksTable{stacks: sync.Map{}}
}

func (t *stacksTable) hasStack(stackName string) bool {
	_, ok := t.stacks.Load(stackName)

	return ok
}

func (t *stacksTable) addStack(s *stack.Stack) {
	t.stacks.Store(s.Name, s)
}

// addStackIfAbsent stores the stack unless the name is already taken.
// Concurrent adds for the same name admit exactly one caller.
func (t *stacksTable) addStackIfAbsent(s *stack.Stack) (added bool) {
	_, loaded := t.stacks.LoadOrStore(s.Name, s)

	return !loaded
}

func (t *stacksTable) getStack(stackName string) (*stack.Stack, bool) {
	value, ok := t.stacks.Load(stackName)
	if !ok {
		return nil, false
	}

	return value.(typeStacksMapValue), true
}

func (t *stacksTable) deleteStack(stackName string) {
	t.stacks.Delete(stackName)
}

func (t *stacksTable) stackNames() []string {
	var stackNames []string

	t.stacks.Range(func(key, _ interface{}) bool {
		stackNames = append(stackNames, key.(string))

		return true
	})

	sort.Strings(stackNames)

	return stackNames
}
