package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/storyloom/storyloom-server/models/userdata"
	"github.com/storyloom/storyloom-server/onboarding"
)

type OnboardingProgressStore interface {
	Load(ctx context.Context, userId int64) (*userdata.OnboardingProgress, error)
	Save(ctx context.Context, userId int64, progress *userdata.OnboardingProgress) error
	Clear(ctx context.Context, userId int64) error
}

// OnboardingService drives the step sequencer against persisted progress.
// Progress is an explicit value loaded and saved per call; there is no
// shared session state.
type OnboardingService struct {
	progress OnboardingProgressStore
}

func NewOnboardingService(progress OnboardingProgressStore) *OnboardingService {
	return &OnboardingService{progress: progress}
}

// Resume returns the user's progress, restarting from the initial step when
// nothing usable is stored. Load failures degrade the same way: losing
// resumability must not block onboarding.
func (s *OnboardingService) Resume(ctx context.Context, userId int64) *userdata.OnboardingProgress {
	progress, err := s.progress.Load(ctx, userId)
	if err != nil {
		log.Warn().Err(err).Int64("user", userId).Msg("Could not load onboarding progress")
		progress = nil
	}

	if progress == nil {
		return s.initial(userId)
	}

	progress.UserId = userId
	if progress.Selections == nil {
		progress.Selections = make(map[string]string)
	}

	// Selections may have changed since the step was recorded; re-anchor
	// instead of surfacing an unreachable step.
	progress.CurrentStep = onboarding.Normalize(progress.CurrentStep, progress.Selections)

	return progress
}

// Advance merges the submitted selections, moves to the next applicable
// step and persists. Reaching the terminal step ends the flow and clears
// stored progress.
func (s *OnboardingService) Advance(ctx context.Context, userId int64, selections map[string]string) (*userdata.OnboardingProgress, bool) {
	progress := s.Resume(ctx, userId)

	for k, v := range selections {
		progress.Selections[k] = v
	}

	progress.CurrentStep = onboarding.Next(progress.CurrentStep, progress.Selections)

	if onboarding.Terminal(progress.CurrentStep, progress.Selections) {
		if err := s.progress.Clear(ctx, userId); err != nil {
			log.Warn().Err(err).Int64("user", userId).Msg("Could not clear onboarding progress")
		}
		return progress, true
	}

	s.save(ctx, userId, progress)
	return progress, false
}

// Back steps to the previous applicable step and persists.
func (s *OnboardingService) Back(ctx context.Context, userId int64) *userdata.OnboardingProgress {
	progress := s.Resume(ctx, userId)
	progress.CurrentStep = onboarding.Previous(progress.CurrentStep, progress.Selections)

	s.save(ctx, userId, progress)
	return progress
}

// Put overwrites stored progress with a client-provided value, re-anchoring
// the step so an out-of-date client cannot park the user on an
// inapplicable step.
func (s *OnboardingService) Put(ctx context.Context, userId int64, progress *userdata.OnboardingProgress) *userdata.OnboardingProgress {
	progress.UserId = userId
	if progress.Selections == nil {
		progress.Selections = make(map[string]string)
	}
	progress.CurrentStep = onboarding.Normalize(progress.CurrentStep, progress.Selections)

	s.save(ctx, userId, progress)
	return progress
}

func (s *OnboardingService) initial(userId int64) *userdata.OnboardingProgress {
	return &userdata.OnboardingProgress{
		UserId:      userId,
		CurrentStep: onboarding.First(),
		Selections:  make(map[string]string),
	}
}

// save is fire-and-forget: a failed save risks losing resumability but
// never blocks navigation.
func (s *OnboardingService) save(ctx context.Context, userId int64, progress *userdata.OnboardingProgress) {
	if err := s.progress.Save(ctx, userId, progress); err != nil {
		log.Warn().Err(err).Int64("user", userId).Msg("Could not save onboarding progress")
	}
}
