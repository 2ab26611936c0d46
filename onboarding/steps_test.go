package onboarding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func selections(workspaceType string) map[string]string {
	if workspaceType == "" {
		return map[string]string{}
	}
	return map[string]string{SelectionWorkspaceType: workspaceType}
}

func TestApplicableStepsNoChoiceYet(t *testing.T) {
	steps := ApplicableSteps(nil)
	require.Equal(t, []string{StepWelcome, StepWorkspaceType}, steps)
}

func TestApplicableStepsPersonalExcludesTeamSteps(t *testing.T) {
	steps := ApplicableSteps(selections(WorkspacePersonal))
	require.NotContains(t, steps, StepWorkspaceSetup)
	require.NotContains(t, steps, StepInviteTeammates)
	require.Equal(t, len(masterSteps)-2, len(steps))
}

func TestApplicableStepsTeamIsFullList(t *testing.T) {
	require.Equal(t, masterSteps, ApplicableSteps(selections(WorkspaceTeam)))
}

// Every selections value and every master step must resolve to a non-empty
// list with a valid anchor.
func TestSequencerTotality(t *testing.T) {
	for _, workspaceType := range []string{"", WorkspacePersonal, WorkspaceTeam} {
		sel := selections(workspaceType)
		steps := ApplicableSteps(sel)
		require.NotEmpty(t, steps)

		for _, step := range masterSteps {
			index, total := Progress(step, sel)
			require.GreaterOrEqual(t, index, 0)
			require.Less(t, index, total)
			require.Contains(t, steps, Next(step, sel))
			require.Contains(t, steps, Previous(step, sel))
		}
	}
}

func TestNextSkipsTeamOnlyStepsForPersonal(t *testing.T) {
	sel := selections(WorkspacePersonal)
	require.Equal(t, StepContentPreferences, Next(StepWorkspaceType, sel))
}

func TestNextClampsAtTerminal(t *testing.T) {
	sel := selections(WorkspaceTeam)
	require.Equal(t, StepDashboard, Next(StepDashboard, sel))
}

func TestPreviousClampsAtInitial(t *testing.T) {
	require.Equal(t, StepWelcome, Previous(StepWelcome, nil))
}

// A recorded step that later selections exclude falls back to the nearest
// earlier applicable step instead of erroring.
func TestNormalizeFallsBackToNearestEarlierStep(t *testing.T) {
	sel := selections(WorkspacePersonal)
	require.Equal(t, StepWorkspaceType, Normalize(StepInviteTeammates, sel))
}

func TestNormalizeUnknownStepAnchorsAtStart(t *testing.T) {
	require.Equal(t, StepWelcome, Normalize("no-such-step", selections(WorkspaceTeam)))
}

func TestNormalizeKeepsApplicableStep(t *testing.T) {
	sel := selections(WorkspaceTeam)
	require.Equal(t, StepSchedule, Normalize(StepSchedule, sel))
}

func TestTerminal(t *testing.T) {
	sel := selections(WorkspaceTeam)
	require.True(t, Terminal(StepDashboard, sel))
	require.False(t, Terminal(StepCompletion, sel))
}

func TestProgressCountsApplicableStepsOnly(t *testing.T) {
	sel := selections(WorkspacePersonal)
	index, total := Progress(StepContentPreferences, sel)
	require.Equal(t, 2, index)
	require.Equal(t, len(masterSteps)-2, total)
}
