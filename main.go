package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"github.com/storyloom/storyloom-server/cache"
	"github.com/storyloom/storyloom-server/config"
	"github.com/storyloom/storyloom-server/controllers"
	"github.com/storyloom/storyloom-server/models"
	"github.com/storyloom/storyloom-server/providers"
	"github.com/storyloom/storyloom-server/repos"
	"github.com/storyloom/storyloom-server/server"
	"github.com/storyloom/storyloom-server/services"
	"github.com/storyloom/storyloom-server/utils"
)

func main() {

	opts := []fx.Option{}
	opts = append(opts, provideOptions()...)
	opts = append(opts, fx.Invoke(run))

	app := fx.New(opts...)

	app.Run()
}

func provideOptions() []fx.Option {
	return []fx.Option{
		fx.Invoke(utils.ConfigureLogger),
		fx.Provide(config.Parse),
		fx.Invoke(func(config *config.Config) {
			utils.InitSharedConstants(*config.JwtParsedPublicKey)
		}),
		fx.Provide(config.ProvidePostgres),
		fx.Provide(config.ProvideRedis),
		fx.Provide(config.ProvideSmtp),
		fx.Provide(server.CreateServer),
		fx.Provide(utils.GetDefaultRouter),
		fx.Invoke(models.InitModelRegistrations),
		fx.Provide(repos.NewInvitationRepo),
		fx.Provide(repos.NewTeamRepo),
		fx.Provide(repos.NewUserRepo),
		fx.Provide(repos.NewOnboardingRepo),
		fx.Provide(cache.New),
		fx.Provide(providers.NewInviteMailer),
		fx.Provide(func(invitations *repos.InvitationRepo, teams *repos.TeamRepo, config *config.Config) *services.InvitationService {
			return services.NewInvitationService(invitations, teams, config.InviteConfig.Secret, config.InviteTtl())
		}),
		fx.Provide(func(progress *repos.OnboardingRepo) *services.OnboardingService {
			return services.NewOnboardingService(progress)
		}),
		fx.Invoke(controllers.RegisterInvitationsController),
		fx.Invoke(controllers.RegisterOnboardingController),
		fx.Invoke(controllers.RegisterUsersController),
	}
}

func run(app *fiber.App, config *config.Config, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			errChan := make(chan error)

			go func() {
				errChan <- app.Listen(config.Port)
			}()

			select {
			case err := <-errChan:
				return err
			case <-time.After(100 * time.Millisecond):
				return nil
			}
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}
