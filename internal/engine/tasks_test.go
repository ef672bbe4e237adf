package engine_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"foreman/internal/domain"
	"foreman/internal/engine"
)

func phaseSeeds() []domain.TaskSeed {
	return []domain.TaskSeed{
		{TaskNumber: 1, Subject: "schema"},
		{TaskNumber: 2, Subject: "api", DependsOn: []int{1}},
		{TaskNumber: 3, Subject: "ui", DependsOn: []int{1}, Model: ptr("small")},
		{TaskNumber: 4, Subject: "e2e", DependsOn: []int{2, 3}},
	}
}

func TestSeedExecutionTasksOnce(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")

	ids, err := env.Engine.SeedExecutionTasks(env.Ctx, o.ID, "1", phaseSeeds())
	require.NoError(t, err)
	require.Len(t, ids, 4)

	_, err = env.Engine.SeedExecutionTasks(env.Ctx, o.ID, "1", []domain.TaskSeed{{TaskNumber: 9, Subject: "late"}})
	require.ErrorIs(t, err, engine.ErrAlreadySeeded)
	require.ErrorIs(t, err, engine.ErrInvalidTransition)

	phase := "1"
	tasks, err := env.Engine.ListExecutionTasks(env.Ctx, o.ID, &phase)
	require.NoError(t, err)
	require.Len(t, tasks, 4)
	for i, task := range tasks {
		assert.Equal(t, i+1, task.TaskNumber)
		assert.Equal(t, domain.TaskPending, task.Status)
		assert.Equal(t, 1, task.Revision)
	}
	assert.Equal(t, []int{2, 3}, tasks[3].DependsOn)
	assert.Equal(t, []int{}, tasks[0].DependsOn)

	// another phase of the same orchestration is independent
	_, err = env.Engine.SeedExecutionTasks(env.Ctx, o.ID, "2", []domain.TaskSeed{{TaskNumber: 1, Subject: "docs"}})
	require.NoError(t, err)
	all, err := env.Engine.ListExecutionTasks(env.Ctx, o.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestReseedReportsAlreadySeededForAnyGraph(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")

	_, err := env.Engine.SeedExecutionTasks(env.Ctx, o.ID, "1", phaseSeeds())
	require.NoError(t, err)

	cases := map[string][]domain.TaskSeed{
		"empty":             nil,
		"dangling dep":      {{TaskNumber: 1, Subject: "x", DependsOn: []int{7}}},
		"duplicate numbers": {{TaskNumber: 1, Subject: "a"}, {TaskNumber: 1, Subject: "b"}},
	}
	for name, seeds := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.Engine.SeedExecutionTasks(env.Ctx, o.ID, "1", seeds)
			require.ErrorIs(t, err, engine.ErrAlreadySeeded)
			assert.NotErrorIs(t, err, engine.ErrValidation)
		})
	}

	// an unseeded phase still validates the graph
	_, err = env.Engine.SeedExecutionTasks(env.Ctx, o.ID, "2", nil)
	require.ErrorIs(t, err, engine.ErrValidation)
}

func TestTasksListedInNumericPhaseOrder(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")

	for _, phase := range []string{"10", "2", "hotfix", "1"} {
		_, err := env.Engine.SeedExecutionTasks(env.Ctx, o.ID, phase, []domain.TaskSeed{{TaskNumber: 1, Subject: "work " + phase}})
		require.NoError(t, err)
	}
	all, err := env.Engine.ListExecutionTasks(env.Ctx, o.ID, nil)
	require.NoError(t, err)
	var order []string
	for _, task := range all {
		order = append(order, task.PhaseNumber)
	}
	assert.Equal(t, []string{"1", "2", "10", "hotfix"}, order)
}

func TestConcurrentSeedingWritesOneGraph(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")

	var ok, seeded atomic.Int32
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := env.Engine.SeedExecutionTasks(env.Ctx, o.ID, "1", phaseSeeds())
			switch {
			case err == nil:
				ok.Add(1)
			case engine.IsAlreadySeeded(err):
				seeded.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, 7, seeded.Load())
	tasks, err := env.Engine.ListExecutionTasks(env.Ctx, o.ID, nil)
	require.NoError(t, err)
	assert.Len(t, tasks, 4)
}

func TestSeedRejectsBadGraph(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")
	_, err := env.Engine.SeedExecutionTasks(env.Ctx, o.ID, "1", []domain.TaskSeed{
		{TaskNumber: 1, Subject: "a", DependsOn: []int{2}},
		{TaskNumber: 2, Subject: "b", DependsOn: []int{1}},
	})
	require.ErrorIs(t, err, engine.ErrValidation)

	_, err = env.Engine.SeedExecutionTasks(env.Ctx, "missing", "1", phaseSeeds())
	require.ErrorIs(t, err, engine.ErrNotFound)
}

func TestGetExecutionTaskAbsent(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")
	_, err := env.Engine.GetExecutionTask(env.Ctx, o.ID, "1", 1)
	require.ErrorIs(t, err, engine.ErrNotFound)
}

func TestUpdateExecutionTask(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")
	_, err := env.Engine.SeedExecutionTasks(env.Ctx, o.ID, "1", phaseSeeds())
	require.NoError(t, err)

	// status changes do not bump the revision
	task, err := env.Engine.UpdateExecutionTask(env.Ctx, o.ID, "1", 1, engine.TaskUpdate{Status: ptr(domain.TaskInProgress)})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, task.Status)
	assert.Equal(t, 1, task.Revision)
	require.NotNil(t, task.StartedAt)

	task, err = env.Engine.UpdateExecutionTask(env.Ctx, o.ID, "1", 1, engine.TaskUpdate{Subject: ptr("schema v2"), ExpectedRevision: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, 2, task.Revision)

	// unchanged content is not a new revision
	task, err = env.Engine.UpdateExecutionTask(env.Ctx, o.ID, "1", 1, engine.TaskUpdate{Subject: ptr("schema v2")})
	require.NoError(t, err)
	assert.Equal(t, 2, task.Revision)

	_, err = env.Engine.UpdateExecutionTask(env.Ctx, o.ID, "1", 1, engine.TaskUpdate{Model: ptr("large"), ExpectedRevision: ptr(1)})
	require.ErrorIs(t, err, engine.ErrRevisionConflict)

	task, err = env.Engine.UpdateExecutionTask(env.Ctx, o.ID, "1", 1, engine.TaskUpdate{Status: ptr(domain.TaskCompleted)})
	require.NoError(t, err)
	require.NotNil(t, task.CompletedAt)

	_, err = env.Engine.UpdateExecutionTask(env.Ctx, o.ID, "1", 1, engine.TaskUpdate{Status: ptr(domain.TaskPending)})
	require.ErrorIs(t, err, engine.ErrInvalidTransition)

	_, err = env.Engine.UpdateExecutionTask(env.Ctx, o.ID, "1", 1, engine.TaskUpdate{Status: ptr(domain.TaskStatus("done"))})
	require.ErrorIs(t, err, engine.ErrValidation)

	_, err = env.Engine.UpdateExecutionTask(env.Ctx, o.ID, "1", 42, engine.TaskUpdate{Subject: ptr("x")})
	require.ErrorIs(t, err, engine.ErrNotFound)

	// dependency satisfaction is left to the caller
	task, err = env.Engine.UpdateExecutionTask(env.Ctx, o.ID, "1", 4, engine.TaskUpdate{Status: ptr(domain.TaskInProgress)})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, task.Status)
}

func TestReadyExecutionTasks(t *testing.T) {
	env := newTestEnv(t)
	_, o := env.seedOrchestration(t, "/repo/a", "login")
	_, err := env.Engine.SeedExecutionTasks(env.Ctx, o.ID, "1", phaseSeeds())
	require.NoError(t, err)

	ready, err := env.Engine.ReadyExecutionTasks(env.Ctx, o.ID, "1")
	require.NoError(t, err)
	require.Len(t, ready, 1)
	assert.Equal(t, 1, ready[0].TaskNumber)

	for _, s := range []domain.TaskStatus{domain.TaskInProgress, domain.TaskCompleted} {
		_, err = env.Engine.UpdateExecutionTask(env.Ctx, o.ID, "1", 1, engine.TaskUpdate{Status: ptr(s)})
		require.NoError(t, err)
	}
	ready, err = env.Engine.ReadyExecutionTasks(env.Ctx, o.ID, "1")
	require.NoError(t, err)
	var nums []int
	for _, r := range ready {
		nums = append(nums, r.TaskNumber)
	}
	assert.Equal(t, []int{2, 3}, nums)
}
