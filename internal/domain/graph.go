package domain

import (
	"fmt"
	"sort"
)

// TaskSeed is one node of a phase's task graph as handed to the seeding call.
type TaskSeed struct {
	TaskNumber  int     `json:"task_number" minimum:"1"`
	Subject     string  `json:"subject"`
	Description *string `json:"description,omitempty"`
	DependsOn   []int   `json:"depends_on,omitempty"`
	Model       *string `json:"model,omitempty"`
}

// ValidateTaskGraph checks that seeds form a DAG over sibling task numbers.
func ValidateTaskGraph(seeds []TaskSeed) error {
	if len(seeds) == 0 {
		return fmt.Errorf("at least one task is required")
	}
	edges := make(map[int][]int, len(seeds))
	for _, s := range seeds {
		if s.TaskNumber <= 0 {
			return fmt.Errorf("task number must be positive, got %d", s.TaskNumber)
		}
		if s.Subject == "" {
			return fmt.Errorf("task %d: subject is required", s.TaskNumber)
		}
		if _, dup := edges[s.TaskNumber]; dup {
			return fmt.Errorf("duplicate task number %d", s.TaskNumber)
		}
		edges[s.TaskNumber] = s.DependsOn
	}
	for n, deps := range edges {
		for _, d := range deps {
			if d == n {
				return fmt.Errorf("task %d depends on itself", n)
			}
			if _, ok := edges[d]; !ok {
				return fmt.Errorf("task %d depends on unknown task %d", n, d)
			}
		}
	}
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[int]int, len(edges))
	var visit func(n int) error
	visit = func(n int) error {
		switch state[n] {
		case visiting:
			return fmt.Errorf("dependency cycle through task %d", n)
		case done:
			return nil
		}
		state[n] = visiting
		for _, d := range edges[n] {
			if err := visit(d); err != nil {
				return err
			}
		}
		state[n] = done
		return nil
	}
	nums := make([]int, 0, len(edges))
	for n := range edges {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	for _, n := range nums {
		if err := visit(n); err != nil {
			return err
		}
	}
	return nil
}

// ReadyTasks returns pending tasks whose dependencies are all completed,
// ordered by task number.
func ReadyTasks(tasks []ExecutionTask) []ExecutionTask {
	status := make(map[int]TaskStatus, len(tasks))
	for _, t := range tasks {
		status[t.TaskNumber] = t.Status
	}
	var ready []ExecutionTask
	for _, t := range tasks {
		if t.Status != TaskPending {
			continue
		}
		ok := true
		for _, d := range t.DependsOn {
			if status[d] != TaskCompleted {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, t)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].TaskNumber < ready[j].TaskNumber })
	return ready
}
