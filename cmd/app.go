package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mj1618/delphi-cli/internal/bridge"
	"github.com/mj1618/delphi-cli/internal/config"
	"github.com/mj1618/delphi-cli/internal/platform"
	"github.com/mj1618/delphi-cli/internal/platform/netstat"
	"github.com/mj1618/delphi-cli/internal/target"
)

// app holds the collaborators every command works with.
type app struct {
	bridges  *bridge.Manager
	targeter *target.Targeter
	log      *zap.Logger
}

func currentConfig() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

// newApp wires the bridge manager and the targeter from the loaded
// configuration. Without native backends the targeter still resolves
// bridge controls; input operations then fail with ErrUnsupported.
func newApp() *app {
	c := currentConfig()

	bridges := bridge.NewManager(bridge.Config{
		Host:           c.Host,
		Port:           c.Port,
		ProcessName:    c.Process,
		ProbeTimeout:   c.ProbeTimeout,
		RequestTimeout: c.RequestTimeout,
	}, netstat.New(), logger)

	provider, err := platform.NewProvider()
	if err != nil {
		logger.Debug("native backends unavailable", zap.Error(err))
		provider = nil
	}
	t := target.New(provider, target.WithLogger(logger.Named("target")))
	t.EdgeInset = c.EdgeInset
	t.ClickSettle = c.ClickSettle
	t.FocusSettle = c.FocusSettle
	t.KeyInterval = c.KeyInterval

	return &app{bridges: bridges, targeter: t, log: logger}
}

// bridge returns the connected client or a hint on how to get one.
func (a *app) bridge(ctx context.Context) (*bridge.Client, error) {
	c, err := a.bridges.Bridge(ctx)
	if errors.Is(err, bridge.ErrUnavailable) {
		return nil, fmt.Errorf("%w (start the application or pass --port)", err)
	}
	return c, err
}

// locate resolves the target form and the first control matching q. The
// bridge is optional: when it cannot be reached, caption queries fall
// back to the form's native child windows.
func (a *app) locate(ctx context.Context, q target.Query, windowTitle string) (ctrl target.Located, err error) {
	form, err := a.targeter.ResolveForm(windowTitle)
	if err != nil {
		return ctrl, err
	}
	ctrl.Form = form

	var src target.ControlSource
	if c, err := a.bridges.Bridge(ctx); err == nil {
		src = c
	} else {
		a.log.Info("bridge unavailable, using native windows", zap.Error(err))
	}

	q.Policy = target.PolicyFirst
	controls, native, err := a.targeter.Locate(ctx, src, q, form)
	ctrl.Native = native
	if err != nil {
		return ctrl, err
	}
	if len(controls) == 0 {
		return ctrl, fmt.Errorf("control %s: %w", q, target.ErrNotFound)
	}
	ctrl.Control = controls[0]
	return ctrl, nil
}
