package apiclient

import "github.com/rs/zerolog"

// Notifier shows a message to the user.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) {
	f(message)
}

// LogNotifier writes notifications to a zerolog logger.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) Notify(message string) {
	n.Logger.Warn().Msg(message)
}

const (
	forbiddenMessage = "You do not have permission to access this resource."
	fallbackMessage  = "Something went wrong."
)
