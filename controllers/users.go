package controllers

import (
	"crypto/rsa"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"github.com/storyloom/storyloom-server/config"
	"github.com/storyloom/storyloom-server/models/userdata"
	"github.com/storyloom/storyloom-server/repos"
	"github.com/storyloom/storyloom-server/utils"
)

type UsersController struct {
	fx.In

	Repo *repos.UserRepo
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=128"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

var (
	jwtPrivateKey *rsa.PrivateKey
)

func RegisterUsersController(r *utils.Router, config *config.Config, c UsersController) {
	jwtPrivateKey = config.JwtParsedPrivateKey

	users := r.Group("/users")

	users.Post("/create", c.createUser)
	users.Get("/profile", utils.Protected(utils.JwtMiddlewareConfig{
		ReadFrom: "header",
		Subject:  "access",
		Scopes:   []string{"basic"},
	}), c.userProfile)
}

func (r *UsersController) createUser(c *fiber.Ctx) error {
	req := new(createUserRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.StandardCouldNotParse(c)
	}

	if errs := utils.ValidateStruct(validate.Struct(req)); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(errs)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := r.Repo.GetUserByEmail(c.Context(), email)
	if err != nil {
		return utils.StandardInternalError(c, err)
	}
	if existing != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Email already registered",
		})
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	id, err := r.Repo.AddUser(c.Context(), userdata.User{
		Name:     req.Name,
		Email:    email,
		Password: hash,
	})
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	token, err := utils.OAuthJwt(strconv.FormatInt(id, 10), "basic", jwtPrivateKey)
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user_id":       id,
		"access_token":  token.AccessToken,
		"refresh_token": token.RefreshToken,
		"expiry":        token.Expiry,
	})
}

func (r *UsersController) userProfile(c *fiber.Ctx) error {
	user, err := r.Repo.UserProfile(c.Context(), c.Locals("user").(int64))
	if err != nil {
		return utils.StandardInternalError(c, err)
	}

	return c.JSON(user)
}
