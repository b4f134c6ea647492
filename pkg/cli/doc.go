/*
Package cli provides command-line interface utilities for the gatewright
command: typed errors for configuration and command failures, and signal
handling for graceful shutdown.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown

Errors:

Command implementations wrap failures so the root command can report them
uniformly:

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
*/
package cli
