package command

import "errors"

// ErrCommandSyntax marks a prefixed message that is not a valid command.
// Such messages get no reply.
var ErrCommandSyntax = errors.New("command syntax")
