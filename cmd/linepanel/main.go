package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"
	"github.com/temoto/linepanel/internal/state"
	"github.com/temoto/linepanel/log2"
)

var BuildVersion string = "unknown" // set by ldflags -X

func main() {
	flagConfig := flag.String("config", state.DefaultConfigName, "config file, includes are relative to it")
	flagDebug := flag.Bool("debug", false, "debug log level, overrides log_debug")
	flagVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *flagVersion {
		fmt.Println(BuildVersion)
		return
	}

	log := log2.NewStderr(log2.LInfo)
	if *flagDebug {
		log.SetLevel(log2.LDebug)
	}
	if sdnotify("start") {
		// we're under systemd, assume systemd journal logging, remove timestamp
		log.SetFlags(log2.LServiceFlags)
	} else {
		log.SetFlags(log2.LInteractiveFlags)
	}
	log.Infof("linepanel version=%s", BuildVersion)

	ctx, g := state.NewContext(log)
	g.BuildVersion = BuildVersion
	config := state.MustReadConfig(log, state.NewOsFullReader(), *flagConfig)
	if *flagDebug {
		config.LogDebug = true
	}
	g.MustInit(ctx, config)

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigch:
			log.Infof("signal=%v stopping", sig)
			g.Stop()
		case <-g.Alive.StopChan():
		}
	}()

	sdnotify(daemon.SdNotifyReady)
	g.Run()
	sdnotify(daemon.SdNotifyStopping)
	g.Alive.Wait()
	if err := g.Close(); err != nil {
		log.Error(errors.ErrorStack(err))
		os.Exit(1)
	}
}

func sdnotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log2.NewStderr(log2.LError).Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
