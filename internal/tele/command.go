package tele

import (
	"context"
	"strings"

	"github.com/juju/errors"
)

type Command uint8

const (
	CommandInvalid Command = iota
	CommandClear
	CommandReport
)

func (c Command) String() string {
	switch c {
	case CommandClear:
		return "clear"
	case CommandReport:
		return "report"
	}
	return "invalid"
}

// CommandHandler is called from transport goroutine, must not block.
type CommandHandler func(Command)

// ParseCommand accepts case insensitive command name, surrounding space ignored.
func ParseCommand(b []byte) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "clear":
		return CommandClear, nil
	case "report":
		return CommandReport, nil
	}
	return CommandInvalid, errors.NotSupportedf("tele command=%q", b)
}

func (self *Tele) onCommandMessage(ctx context.Context, payload []byte) bool {
	self.Stat.Commands.Add(1)
	cmd, err := ParseCommand(payload)
	if err != nil {
		self.log.Errorf("tele command parse err=%v", err)
		self.push(kindResponse, "error: "+err.Error())
		return true
	}
	self.log.Debugf("tele command=%s", cmd)
	switch cmd {
	case CommandReport:
		self.push(kindState, self.State())
	default:
		if self.handler != nil {
			self.handler(cmd)
		}
	}
	self.push(kindResponse, "ok: "+cmd.String())
	return true
}
