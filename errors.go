package tagbot

import "errors"

// Configuration errors
var (
	ErrMissingAPIID    = errors.New("tagbot: API ID is required")
	ErrMissingAPIHash  = errors.New("tagbot: API hash is required")
	ErrMissingBotToken = errors.New("tagbot: bot token is required")
)

// Runtime errors
var (
	ErrBotNotRunning  = errors.New("tagbot: bot is not running")
	ErrAlreadyRunning = errors.New("tagbot: bot is already running")
	ErrUnknownPeer    = errors.New("tagbot: unknown peer")
	ErrUserNotFound   = errors.New("tagbot: user not found")
)
