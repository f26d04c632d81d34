package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/docsig/config"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

var log = commonlog.GetLogger("docsig")

// app carries what every command shares once flags are parsed.
type app struct {
	configPath string
	verbose    int
	cfg        *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "docsig",
		Short:        "Reconcile Java method signatures with their Javadoc",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "configuration file (default: docsig.yaml or docsig.toml in the current directory)")
	rootCmd.PersistentFlags().CountVarP(&a.verbose, "verbose", "v", "increase log verbosity")

	rootCmd.AddCommand(newResolveCmd(a))
	rootCmd.AddCommand(newIndexCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newLSPCmd(a))

	return rootCmd
}

func (a *app) load() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, err = config.Load(".")
	}
	if err != nil {
		return err
	}

	var logFile *string
	if a.cfg.Log.File != "" {
		logFile = &a.cfg.Log.File
	}
	commonlog.Configure(a.cfg.Log.Verbosity+a.verbose, logFile)
	if a.cfg.File != "" {
		log.Debugf("using configuration %s", a.cfg.File)
	}
	return nil
}
