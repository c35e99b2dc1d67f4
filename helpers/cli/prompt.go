// Package cli runs interactive prompt on terminal or executes stdin script.
package cli

import (
	"bufio"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/c-bata/go-prompt"
	"github.com/mattn/go-isatty"
)

type ExecFunc func(line string)
type CompleteFunc func(d prompt.Document) []prompt.Suggest

// MainLoop returns when input ends or signal received, stop is called in both cases.
func MainLoop(tag string, exec ExecFunc, complete CompleteFunc, stop func()) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	defer signal.Stop(signalCh)
	go func() {
		if _, ok := <-signalCh; ok {
			stop()
			os.Exit(1)
		}
	}()

	if isatty.IsTerminal(os.Stdin.Fd()) {
		prompt.New(prompt.Executor(exec), prompt.Completer(complete),
			prompt.OptionPrefix(tag+"> "),
			prompt.OptionTitle(tag),
		).Run()
	} else {
		RunScript(os.Stdin, exec)
	}
	stop()
}

// RunScript executes each non-empty line, '#' starts comment line.
func RunScript(r io.Reader, exec ExecFunc) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		exec(line)
	}
}

// FilterCommands suggests commands matching word before cursor.
func FilterCommands(d prompt.Document, commands []prompt.Suggest) []prompt.Suggest {
	return prompt.FilterHasPrefix(commands, d.GetWordBeforeCursor(), true)
}
