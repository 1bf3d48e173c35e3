package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	quizpapercmder "github.com/papercomputeco/quizpaper/cmd/quizpaper"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := quizpapercmder.NewQuizpaperCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
