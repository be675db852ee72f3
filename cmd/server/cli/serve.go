package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	routes "github.com/mnuddindev/foodgram/internal/api"
	"github.com/mnuddindev/foodgram/pkg/utils"
	"github.com/spf13/cobra"
)

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := bootstrap(ctx, true)
			if err != nil {
				return err
			}

			app := routes.NewApp(context.Background(), rt.cfg, rt.db, rt.log, rt.rclient)

			errCh := make(chan error, 1)
			go func() {
				rt.log.Info(ctx).WithMeta(utils.Map{"addr": rt.cfg.ServerAddr}).Logs("Server listening")
				errCh <- app.Listen(rt.cfg.ServerAddr)
			}()

			select {
			case err = <-errCh:
			case <-ctx.Done():
				rt.log.Info(context.Background()).Logs("Shutting down server")
				err = app.ShutdownWithTimeout(10 * time.Second)
			}

			rt.close()
			return err
		},
	}
}
