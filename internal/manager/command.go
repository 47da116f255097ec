package manager

import "github.com/petems/hotkeyd/internal/hotkey"

type commandKind int

const (
	cmdRegister commandKind = iota
	cmdRegisterBatch
	cmdUnregister
	cmdUnregisterBatch
	cmdShutdown
)

func (k commandKind) String() string {
	switch k {
	case cmdRegister:
		return "register"
	case cmdRegisterBatch:
		return "register_all"
	case cmdUnregister:
		return "unregister"
	case cmdUnregisterBatch:
		return "unregister_all"
	case cmdShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// command is consumed exactly once by the worker. reply has room for one
// result so the worker never blocks answering a caller that gave up.
type command struct {
	kind    commandKind
	hotkeys []hotkey.HotKey
	reply   chan error
}

func newCommand(kind commandKind, hotkeys []hotkey.HotKey) command {
	return command{
		kind:    kind,
		hotkeys: hotkeys,
		reply:   make(chan error, 1),
	}
}
