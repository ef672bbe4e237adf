package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTaskGraph(t *testing.T) {
	cases := []struct {
		name    string
		seeds   []TaskSeed
		wantErr string
	}{
		{"diamond", []TaskSeed{
			{TaskNumber: 1, Subject: "a"},
			{TaskNumber: 2, Subject: "b", DependsOn: []int{1}},
			{TaskNumber: 3, Subject: "c", DependsOn: []int{1}},
			{TaskNumber: 4, Subject: "d", DependsOn: []int{2, 3}},
		}, ""},
		{"empty", nil, "at least one task"},
		{"zero number", []TaskSeed{{TaskNumber: 0, Subject: "a"}}, "must be positive"},
		{"duplicate", []TaskSeed{{TaskNumber: 1, Subject: "a"}, {TaskNumber: 1, Subject: "b"}}, "duplicate"},
		{"self", []TaskSeed{{TaskNumber: 1, Subject: "a", DependsOn: []int{1}}}, "itself"},
		{"unknown", []TaskSeed{{TaskNumber: 1, Subject: "a", DependsOn: []int{9}}}, "unknown task 9"},
		{"cycle", []TaskSeed{
			{TaskNumber: 1, Subject: "a", DependsOn: []int{3}},
			{TaskNumber: 2, Subject: "b", DependsOn: []int{1}},
			{TaskNumber: 3, Subject: "c", DependsOn: []int{2}},
		}, "cycle"},
		{"missing subject", []TaskSeed{{TaskNumber: 1}}, "subject is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTaskGraph(tc.seeds)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestReadyTasks(t *testing.T) {
	tasks := []ExecutionTask{
		{TaskNumber: 3, Status: TaskPending, DependsOn: []int{1, 2}},
		{TaskNumber: 1, Status: TaskCompleted},
		{TaskNumber: 2, Status: TaskInProgress, DependsOn: []int{1}},
		{TaskNumber: 4, Status: TaskPending, DependsOn: []int{1}},
		{TaskNumber: 5, Status: TaskPending},
		{TaskNumber: 6, Status: TaskBlocked},
	}
	ready := ReadyTasks(tasks)
	var nums []int
	for _, r := range ready {
		nums = append(nums, r.TaskNumber)
	}
	assert.Equal(t, []int{4, 5}, nums)
}

func TestTaskTransitions(t *testing.T) {
	assert.True(t, TaskPending.CanTransition(TaskInProgress))
	assert.True(t, TaskInProgress.CanTransition(TaskCompleted))
	assert.True(t, TaskBlocked.CanTransition(TaskPending))
	assert.True(t, TaskCompleted.CanTransition(TaskCompleted))
	assert.False(t, TaskCompleted.CanTransition(TaskPending))
	assert.False(t, TaskPending.CanTransition(TaskCompleted))
}

func TestNormalizeTime(t *testing.T) {
	got, err := NormalizeTime("2024-03-01T10:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T08:00:00.000Z", got)

	got, err = NormalizeTime("2024-03-01T08:00:00.123000Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01T08:00:00.123Z", got)

	_, err = NormalizeTime("2024-03-01T08:00:00.123456Z")
	assert.Error(t, err)
	_, err = NormalizeTime("2024-03-01T08:00:00.0001Z")
	assert.Error(t, err)

	_, err = NormalizeTime("yesterday")
	assert.Error(t, err)
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, GateID("finalize").Valid())
	assert.False(t, GateID("ship").Valid())
	assert.True(t, GateBlocked.Decided())
	assert.False(t, GatePending.Decided())
	assert.False(t, ReviewOpen.Terminal())
	assert.True(t, ReviewSuperseded.Terminal())
	assert.False(t, OrchestrationStatus("done").Valid())
	assert.False(t, PhaseStatus("").Valid())
	assert.False(t, CheckRunning.Terminal())
}
