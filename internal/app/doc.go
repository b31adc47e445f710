// Package app wires the report server together.
//
// NewApplication builds telemetry, services and the chi router from a
// loaded configuration. Load runs the pipeline once over the configured
// snapshot, and Run serves HTTP until its context is cancelled:
//
//	a, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	if err := a.Load(ctx); err != nil {
//	    return err
//	}
//	return a.Run(ctx)
package app
