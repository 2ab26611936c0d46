package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"github.com/storyloom/storyloom-server/config"
	"github.com/storyloom/storyloom-server/models/userdata"
	"github.com/storyloom/storyloom-server/onboarding"
	"github.com/storyloom/storyloom-server/services"
	"github.com/storyloom/storyloom-server/utils"
)

type OnboardingOrchestrator interface {
	Resume(ctx context.Context, userId int64) *userdata.OnboardingProgress
	Advance(ctx context.Context, userId int64, selections map[string]string) (*userdata.OnboardingProgress, bool)
	Back(ctx context.Context, userId int64) *userdata.OnboardingProgress
	Put(ctx context.Context, userId int64, progress *userdata.OnboardingProgress) *userdata.OnboardingProgress
}

type OnboardingControllerParams struct {
	fx.In

	Service *services.OnboardingService
}

type OnboardingController struct {
	service OnboardingOrchestrator
}

type putProgressRequest struct {
	CurrentStep string            `json:"current_step" validate:"required"`
	Selections  map[string]string `json:"selections"`
}

type advanceRequest struct {
	Selections map[string]string `json:"selections"`
}

func RegisterOnboardingController(r *utils.Router, config *config.Config, p OnboardingControllerParams) {
	c := &OnboardingController{service: p.Service}
	c.mount(r)
}

func (r *OnboardingController) mount(router fiber.Router) {
	group := router.Group("/onboarding", utils.Protected(utils.JwtMiddlewareConfig{
		ReadFrom: "header",
		Subject:  "access",
		Scopes:   []string{"basic"},
	}))

	group.Get("/progress", r.getProgress)
	group.Put("/progress", r.putProgress)
	group.Post("/next", r.next)
	group.Post("/back", r.back)
}

func (r *OnboardingController) getProgress(c *fiber.Ctx) error {
	progress := r.service.Resume(c.Context(), c.Locals("user").(int64))
	return c.JSON(progressResponse(progress, false))
}

func (r *OnboardingController) putProgress(c *fiber.Ctx) error {
	req := new(putProgressRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	if !onboarding.KnownStep(req.CurrentStep) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown step",
		})
	}

	progress := r.service.Put(c.Context(), c.Locals("user").(int64), &userdata.OnboardingProgress{
		CurrentStep: req.CurrentStep,
		Selections:  req.Selections,
	})

	return c.JSON(progressResponse(progress, false))
}

func (r *OnboardingController) next(c *fiber.Ctx) error {
	req := new(advanceRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(req); err != nil {
			return utils.StandardCouldNotParse(c)
		}
	}

	progress, done := r.service.Advance(c.Context(), c.Locals("user").(int64), req.Selections)
	return c.JSON(progressResponse(progress, done))
}

func (r *OnboardingController) back(c *fiber.Ctx) error {
	progress := r.service.Back(c.Context(), c.Locals("user").(int64))
	return c.JSON(progressResponse(progress, false))
}

func progressResponse(progress *userdata.OnboardingProgress, done bool) fiber.Map {
	index, total := onboarding.Progress(progress.CurrentStep, progress.Selections)

	return fiber.Map{
		"current_step": progress.CurrentStep,
		"selections":   progress.Selections,
		"index":        index,
		"total":        total,
		"done":         done,
	}
}
