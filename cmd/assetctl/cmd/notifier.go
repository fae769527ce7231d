package cmd

import (
	"github.com/jrsteele09/go-asset-console/apiclient"
	"github.com/pterm/pterm"
)

var _ apiclient.Notifier = ptermNotifier{}

// ptermNotifier prints client notifications as terminal warnings.
type ptermNotifier struct{}

func (ptermNotifier) Notify(message string) {
	pterm.Warning.Println(message)
}
