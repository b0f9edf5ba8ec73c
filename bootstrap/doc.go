// Package bootstrap runs one finite sawmill task inside a uniform lifecycle.
//
// NewApp applies configuration defaults, validates the configuration and
// initializes the logger. RunTask then runs the OnStart hooks, the task
// itself under a context canceled on SIGINT/SIGTERM, and finally the OnStop
// hooks within a graceful timeout.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.OnStart(func(ctx context.Context) error {
//	    shutdown, err := observability.Setup(ctx, cfg.Observability, app.Name, app.Version)
//	    if err != nil {
//	        return err
//	    }
//	    app.OnStop(shutdown)
//	    return nil
//	})
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    return countLines(ctx)
//	})
package bootstrap
