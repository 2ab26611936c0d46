// Package onboarding computes which onboarding steps apply to a user given
// their earlier selections. It is pure: no storage, no transport.
package onboarding

// Step tags, in master order.
const (
	StepWelcome            = "welcome"
	StepWorkspaceType      = "workspace-type"
	StepWorkspaceSetup     = "workspace-setup"
	StepInviteTeammates    = "invite-teammates"
	StepContentPreferences = "content-preferences"
	StepSchedule           = "schedule"
	StepRegistration       = "registration"
	StepExtensionPrompt    = "extension-prompt"
	StepCompletion         = "completion"
	StepDashboard          = "dashboard"
)

// Selection keys and workspace type values.
const (
	SelectionWorkspaceType = "workspaceType"
	WorkspacePersonal      = "personal"
	WorkspaceTeam          = "team"
)

var masterSteps = []string{
	StepWelcome,
	StepWorkspaceType,
	StepWorkspaceSetup,
	StepInviteTeammates,
	StepContentPreferences,
	StepSchedule,
	StepRegistration,
	StepExtensionPrompt,
	StepCompletion,
	StepDashboard,
}

var teamOnlySteps = map[string]bool{
	StepWorkspaceSetup:  true,
	StepInviteTeammates: true,
}

// ApplicableSteps returns the ordered subset of the master list that applies
// under the given selections. Total: every selections value, including nil,
// maps to a non-empty list.
func ApplicableSteps(selections map[string]string) []string {
	switch selections[SelectionWorkspaceType] {
	case WorkspaceTeam:
		steps := make([]string, len(masterSteps))
		copy(steps, masterSteps)
		return steps
	case WorkspacePersonal:
		steps := make([]string, 0, len(masterSteps))
		for _, step := range masterSteps {
			if !teamOnlySteps[step] {
				steps = append(steps, step)
			}
		}
		return steps
	default:
		// Workspace type not chosen yet: only steps up to and including
		// the choice itself are reachable.
		steps := make([]string, 0, len(masterSteps))
		for _, step := range masterSteps {
			steps = append(steps, step)
			if step == StepWorkspaceType {
				break
			}
		}
		return steps
	}
}

// anchor locates current within steps. When the step was retroactively
// excluded by a later selection change, it falls back to the nearest earlier
// applicable step instead of failing, so recorded progress never becomes
// unreachable. Unknown steps anchor at the start.
func anchor(current string, steps []string) int {
	for i, step := range steps {
		if step == current {
			return i
		}
	}

	masterIdx := masterIndex(current)
	if masterIdx == -1 {
		return 0
	}

	nearest := 0
	for i, step := range steps {
		if masterIndex(step) <= masterIdx {
			nearest = i
		}
	}
	return nearest
}

func masterIndex(step string) int {
	for i, s := range masterSteps {
		if s == step {
			return i
		}
	}
	return -1
}

// Normalize maps current onto an applicable step, falling back to the
// nearest earlier one when selections have excluded it.
func Normalize(current string, selections map[string]string) string {
	steps := ApplicableSteps(selections)
	return steps[anchor(current, steps)]
}

// Next advances one position. At the terminal step it returns the step
// unchanged, which doubles as the no-op signal.
func Next(current string, selections map[string]string) string {
	steps := ApplicableSteps(selections)
	i := anchor(current, steps)
	if i+1 < len(steps) {
		return steps[i+1]
	}
	return steps[i]
}

// Previous steps back one position, returning the first step unchanged when
// already there.
func Previous(current string, selections map[string]string) string {
	steps := ApplicableSteps(selections)
	i := anchor(current, steps)
	if i > 0 {
		return steps[i-1]
	}
	return steps[i]
}

// Progress reports the anchored position of current within the applicable
// list, for progress indication.
func Progress(current string, selections map[string]string) (index, total int) {
	steps := ApplicableSteps(selections)
	return anchor(current, steps), len(steps)
}

// First returns the initial step of the flow.
func First() string {
	return masterSteps[0]
}

// Terminal reports whether step is the last applicable step under the given
// selections.
func Terminal(step string, selections map[string]string) bool {
	steps := ApplicableSteps(selections)
	return anchor(step, steps) == len(steps)-1 && steps[len(steps)-1] == step
}

// KnownStep reports whether step appears in the master list at all.
func KnownStep(step string) bool {
	return masterIndex(step) != -1
}
