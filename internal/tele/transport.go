package tele

import (
	"context"

	"github.com/temoto/linepanel/log2"
)

// Tele transport contract:
// - Init fails only with invalid config, ignores network errors
// - Send* deliver within network timeout or fail
// - application may start without network available
type Transporter interface {
	Init(ctx context.Context, log *log2.Log, teleConfig Config, onCommand CommandCallback, willPayload []byte) error
	SendState(payload []byte) bool
	SendMessage(payload []byte) bool
	SendCommandResponse(payload []byte) bool
	SendError(payload []byte) bool
	Close()
}

type CommandCallback func(context.Context, []byte) bool
