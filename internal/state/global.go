// Package state holds configuration and process wide wiring:
// hardware capabilities, presenter, session runner and telemetry.
package state

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/linepanel/helpers"
	"github.com/temoto/linepanel/internal/presenter"
	"github.com/temoto/linepanel/internal/session"
	"github.com/temoto/linepanel/internal/tele"
	"github.com/temoto/linepanel/log2"
)

type Global struct {
	Alive        *alive.Alive
	BuildVersion string
	Config       *Config
	Hardware     hardware // hardware.go
	Log          *log2.Log
	Presenter    *presenter.Presenter
	Runner       *session.Runner
	Sleeper      helpers.Sleeper
	Tele         tele.Teler

	lk      sync.Mutex
	closers []io.Closer
}

const ContextKey = "linepanel/state-global"

func NewContext(log *log2.Log) (context.Context, *Global) {
	if log == nil {
		panic("code error NewContext() log=nil")
	}
	g := &Global{
		Alive:   alive.NewAlive(),
		Log:     log,
		Sleeper: helpers.RealSleeper{},
		Tele:    tele.Noop{},
	}
	ctx := context.Background()
	ctx = log2.WithContext(ctx, log)
	ctx = context.WithValue(ctx, ContextKey, g)
	return ctx, g
}

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

// Init opens hardware and builds session. Capabilities already set
// in g.Hardware (tests, simulator) are kept.
// If `Init` fails, consider `Global` is in broken state.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.Config = cfg
	if cfg.LogDebug {
		g.Log.SetLevel(log2.LDebug)
	}

	// telemetry first, so hardware errors are reported
	teler, err := tele.New(ctx, g.Log.Named("tele"), cfg.Tele, g.onTeleCommand)
	if err != nil {
		return errors.Annotate(err, "tele init")
	}
	g.Tele = teler
	g.Log.SetErrorFunc(func(e error) { g.Tele.ReportError(e) })

	errs := make([]error, 0)
	errs = append(errs, g.initDisplay()...)
	errs = append(errs, g.initSerial()...)
	errs = append(errs, g.initPins()...)
	if err := helpers.FoldErrors(errs); err != nil {
		return err
	}

	pc, err := cfg.PresenterConfig()
	if err != nil {
		return errors.Trace(err)
	}
	g.Presenter = presenter.New(g.Hardware.Display, g.Sleeper, pc, g.Log.Named("presenter"))

	s, err := session.New(cfg.SessionConfig())
	if err != nil {
		return errors.Trace(err)
	}
	runner := session.NewRunner(s, session.Deps{
		Source:    g.Hardware.Source,
		Button:    g.Hardware.Button,
		Indicator: g.Hardware.Indicator,
		Display:   g.Presenter,
		Sleeper:   g.Sleeper,
		Reporter:  g.Tele,
	}, g.Log)
	helpers.WithLock(&g.lk, func() { g.Runner = runner })
	return nil
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	err := g.Init(ctx, cfg)
	if err != nil {
		g.Log.Fatal(errors.ErrorStack(err))
	}
}

// Run draws boot screen, turns indicator off and blocks in session loop until Stop.
func (g *Global) Run() {
	g.Presenter.ShowStartup()
	if err := g.Hardware.Indicator.Set(false); err != nil {
		g.Error(err, "indicator init")
	}
	g.Runner.Loop(g.Alive)
}

func (g *Global) Stop() { g.Alive.Stop() }

// Close releases hardware and telemetry after Stop.
func (g *Global) Close() error {
	g.Tele.Close()
	g.lk.Lock()
	defer g.lk.Unlock()
	errs := make([]error, 0, len(g.closers))
	for i := len(g.closers) - 1; i >= 0; i-- {
		if err := g.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	g.closers = nil
	return helpers.FoldErrors(errs)
}

func (g *Global) Error(err error, args ...interface{}) {
	if err != nil {
		if len(args) != 0 {
			msg := args[0].(string)
			args = args[1:]
			err = errors.Annotatef(err, msg, args...)
		}
		g.Log.Error(errors.ErrorStack(err))
	}
}

func (g *Global) onTeleCommand(cmd tele.Command) {
	switch cmd {
	case tele.CommandClear:
		g.lk.Lock()
		r := g.Runner
		g.lk.Unlock()
		if r != nil {
			r.RequestClear()
		}
	default:
		g.Log.Errorf("tele command=%s not handled", cmd)
	}
}

func (g *Global) addCloser(c io.Closer) {
	if c == nil {
		return
	}
	g.lk.Lock()
	g.closers = append(g.closers, c)
	g.lk.Unlock()
}
