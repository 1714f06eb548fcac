package main

import (
	"context"

	"inmatesearch-backend/cmd/inmatesearch-cli/commands"
	"inmatesearch-backend/lib/serviceutil"
	"inmatesearch-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.InitSlog(false)
	err := telemetry.SetupFromEnv(ctx, "inmatesearch-cli")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	defer telemetry.Shutdown(context.Background())

	commands.ExecuteContext(ctx)
}
