package repos

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
	"github.com/storyloom/storyloom-server/models/userdata"
)

type OnboardingRepo struct {
	rdb *redis.Client
}

func NewOnboardingRepo(rdb *redis.Client) *OnboardingRepo {
	return &OnboardingRepo{rdb: rdb}
}

func progressKey(userId int64) string {
	return "onboarding:" + strconv.FormatInt(userId, 10)
}

// Load restores saved progress. Missing keys and corrupt payloads both come
// back as nil so the caller restarts from the initial step instead of
// failing navigation over a cache problem.
func (c *OnboardingRepo) Load(ctx context.Context, userId int64) (*userdata.OnboardingProgress, error) {
	payload, err := c.rdb.Get(ctx, progressKey(userId)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}

		return nil, err
	}

	progress := new(userdata.OnboardingProgress)
	if err := json.Unmarshal(payload, progress); err != nil {
		log.Warn().Err(err).Int64("user", userId).Msg("Discarding corrupt onboarding progress")
		return nil, nil
	}

	return progress, nil
}

func (c *OnboardingRepo) Save(ctx context.Context, userId int64, progress *userdata.OnboardingProgress) error {
	payload, err := json.Marshal(progress)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, progressKey(userId), payload, 0).Err()
}

func (c *OnboardingRepo) Clear(ctx context.Context, userId int64) error {
	return c.rdb.Del(ctx, progressKey(userId)).Err()
}
