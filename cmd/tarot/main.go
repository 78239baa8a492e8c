// Command tarot is the local CLI client. It uses a SQLite database and
// needs no running services.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Gzeu/tarot-reading-app/adapter/cli"
	"github.com/Gzeu/tarot-reading-app/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, user, err := app.NewLocalContainer(ctx)
	if err != nil {
		os.Stderr.WriteString("startup: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer container.Close()

	cli.SetApp(&cli.App{
		Container:     container,
		CurrentUserID: user.ID(),
	})

	if err := cli.RootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
