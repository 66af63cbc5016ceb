package stack

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// StartOrder returns the service names ordered so that every service comes
// after everything it links to or depends on. Ties break lexicographically,
// so the order is deterministic.
func (s *Stack) StartOrder() ([]string, error) {
	pending := map[string]int{}
	dependents := map[string][]string{}

	for serviceName, service := range s.Services {
		pending[serviceName] = len(service.DependsOn)

		for _, dependency := range service.DependsOn {
			dependents[dependency] = append(dependents[dependency], serviceName)
		}
	}

	var ready []string

	for serviceName, count := range pending {
		if count == 0 {
			ready = append(ready, serviceName)
		}
	}

	sort.Strings(ready)

	order := make([]string, 0, len(s.Services))

	for len(ready) > 0 {
		serviceName := ready[0]
		ready = ready[1:]

		order = append(order, serviceName)
		delete(pending, serviceName)

		released := false

		for _, dependent := range dependents[serviceName] {
			pending[dependent]--
			if pending[dependent] == 0 {
				ready = append(ready, dependent)
				released = true
			}
		}

		if released {
			sort.Strings(ready)
		}
	}

	if len(pending) > 0 {
		remaining := make([]string, 0, len(pending))
		for serviceName := range pending {
			remaining = append(remaining, serviceName)
		}

		sort.Strings(remaining)

		return nil, errors.Errorf("dependency cycle involving services: %s", strings.Join(remaining, ", "))
	}

	return order, nil
}

// StopOrder is the reverse of StartOrder: dependents go down before the
// services they rely on.
func (s *Stack) StopOrder() ([]string, error) {
	order, err := s.StartOrder()
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	return order, nil
}
