package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"github.com/storyloom/storyloom-server/cache"
	"github.com/storyloom/storyloom-server/config"
	"github.com/storyloom/storyloom-server/models/userdata"
	"github.com/storyloom/storyloom-server/providers"
	"github.com/storyloom/storyloom-server/repos"
	"github.com/storyloom/storyloom-server/services"
	"github.com/storyloom/storyloom-server/utils"
)

var validate = validator.New()

const summaryCacheTtl = 30 * time.Second

type InvitationTokenService interface {
	Invite(ctx context.Context, teamId int64, email, role string) (string, error)
	Verify(ctx context.Context, token string) (*services.InvitationSummary, error)
	AcceptByToken(ctx context.Context, token, callerEmail string, callerUserId *int64) (*services.AcceptResult, error)
	DeclineByToken(ctx context.Context, token, callerEmail string) error
}

type TeamDirectory interface {
	GetTeam(ctx context.Context, id int64) (*userdata.Team, error)
}

type SummaryCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type InviteMailer interface {
	SendInvitation(ctx context.Context, to, teamName, token string) error
}

type InvitationsControllerParams struct {
	fx.In

	Service *services.InvitationService
	Teams   *repos.TeamRepo
	Cache   *cache.Cache
	Mailer  *providers.InviteMailer
}

type InvitationsController struct {
	service InvitationTokenService
	teams   TeamDirectory
	cache   SummaryCache
	mailer  InviteMailer
}

type verifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type resolveTokenRequest struct {
	Token string `json:"token" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

type createInviteRequest struct {
	TeamId int64  `json:"team_id" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Role   string `json:"role" validate:"omitempty,oneof=member admin"`
}

func RegisterInvitationsController(r *utils.Router, config *config.Config, p InvitationsControllerParams) {
	c := &InvitationsController{
		service: p.Service,
		teams:   p.Teams,
		cache:   p.Cache,
		mailer:  p.Mailer,
	}

	c.mount(r)
}

func (r *InvitationsController) mount(router fiber.Router) {
	invitations := router.Group("/invitations")

	invitations.Post("/verify-token", r.verifyToken)
	invitations.Post("/accept-by-token", utils.Protected(utils.JwtMiddlewareConfig{
		ReadFrom: "header",
		Subject:  "access",
		Scopes:   []string{"basic"},
		Optional: true,
	}), r.acceptByToken)
	invitations.Post("/decline-by-token", r.declineByToken)
	invitations.Post("/create", utils.Protected(utils.JwtMiddlewareConfig{
		ReadFrom: "header",
		Subject:  "access",
		Scopes:   []string{"basic"},
	}), r.createInvitation)
}

func (r *InvitationsController) verifyToken(c *fiber.Ctx) error {
	req := new(verifyTokenRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	key := summaryCacheKey(req.Token)
	if cached, ok, err := r.cache.Get(c.Context(), key); err == nil && ok {
		c.Set("Content-Type", "application/json")
		return c.Send(cached)
	}

	summary, err := r.service.Verify(c.Context(), req.Token)
	if err != nil {
		return invitationError(c, err)
	}

	if payload, err := json.Marshal(summary); err == nil {
		r.cache.Set(c.Context(), key, payload, summaryCacheTtl)
	}

	return c.JSON(summary)
}

func (r *InvitationsController) acceptByToken(c *fiber.Ctx) error {
	req := new(resolveTokenRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	var callerUserId *int64
	if id, ok := c.Locals("user").(int64); ok {
		callerUserId = &id
	}

	result, err := r.service.AcceptByToken(c.Context(), req.Token, req.Email, callerUserId)
	if err != nil {
		return invitationError(c, err)
	}

	r.cache.Delete(c.Context(), summaryCacheKey(req.Token))

	if result.RequiresSignIn {
		return c.JSON(fiber.Map{
			"message":          "Invitation accepted, sign in to join the team",
			"requires_sign_in": true,
			"team_name":        result.TeamName,
		})
	}

	return c.JSON(fiber.Map{
		"message":   "Invitation accepted",
		"team_id":   result.TeamId,
		"team_name": result.TeamName,
	})
}

func (r *InvitationsController) declineByToken(c *fiber.Ctx) error {
	req := new(resolveTokenRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	if err := r.service.DeclineByToken(c.Context(), req.Token, req.Email); err != nil {
		return invitationError(c, err)
	}

	r.cache.Delete(c.Context(), summaryCacheKey(req.Token))

	return c.JSON(fiber.Map{
		"message": "Invitation declined",
	})
}

func (r *InvitationsController) createInvitation(c *fiber.Ctx) error {
	req := new(createInviteRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	team, err := r.teams.GetTeam(c.Context(), req.TeamId)
	if err != nil {
		return utils.StandardInternalError(c, err)
	}
	if team == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Team not found",
		})
	}

	token, err := r.service.Invite(c.Context(), req.TeamId, req.Email, req.Role)
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	if err := r.mailer.SendInvitation(c.Context(), req.Email, team.Name, token); err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Invitation sent",
	})
}

// Invalid tokens and missing invitations stay terse so callers cannot
// enumerate invitation ids; already-processed resolves benignly.
func invitationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidToken):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid or expired invitation",
		})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Invitation not found",
		})
	case errors.Is(err, services.ErrEmailMismatch):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Sign in with the invited account to continue",
		})
	case errors.Is(err, services.ErrAlreadyProcessed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Invitation already processed",
		})
	default:
		return utils.StandardInternalError(c, err)
	}
}

func summaryCacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "invite-summary:" + hex.EncodeToString(sum[:])
}
