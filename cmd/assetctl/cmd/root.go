package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/jrsteele09/go-asset-console/apiclient"
	"github.com/jrsteele09/go-asset-console/session"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const apiPrefix = "/api/v1"

var (
	serverURL string
	debug     bool
)

// errDenied ends the process with exit code 1 without printing anything more.
var errDenied = errors.New("permission denied")

var rootCmd = &cobra.Command{
	Use:   "assetctl",
	Short: "Asset console CLI",
	Long: `assetctl signs in to the asset console server and inspects what the
signed in member may see and do. The session is kept between runs and is
refreshed automatically when the access token expires.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errDenied) {
			pterm.Error.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	defaultServer := os.Getenv("ASSETCTL_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "Asset console server URL (also set via ASSETCTL_SERVER)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log session refreshes to stderr")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(passwordCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(canCmd)
	rootCmd.AddCommand(guardCmd)
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(getCmd)
}

func serverBase() string {
	return strings.TrimRight(serverURL, "/")
}

// newCoordinator builds the API client over the persisted session.
func newCoordinator() (*apiclient.Coordinator, *session.FileStore, error) {
	store, err := session.NewDefaultFileStore()
	if err != nil {
		return nil, nil, err
	}

	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	c, err := apiclient.New(serverBase()+apiPrefix,
		apiclient.WithStore(store),
		apiclient.WithNotifier(ptermNotifier{}),
		apiclient.WithLogger(logger),
		apiclient.WithSessionExpiredHandler(func() {
			pterm.Warning.Println("Session expired. Run 'assetctl login' to sign in again.")
		}),
	)
	if err != nil {
		return nil, nil, err
	}
	return c, store, nil
}

// requireSession fails early when no session is stored.
func requireSession(c *apiclient.Coordinator) error {
	if c.State() != session.StateAuthenticated {
		return errors.New("not logged in, run 'assetctl login'")
	}
	return nil
}
