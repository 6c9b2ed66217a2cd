package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"miirender/internal/config"
	"miirender/internal/logging"
)

var (
	configPath string
	cfg        *config.Config
	v          = viper.New()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "miirender",
	Short: "Render Mii avatars over a socket protocol and HTTP",
	Long: `miirender draws Mii avatars from their binary data.

The render backend speaks a fixed 160-byte request protocol over TCP and
answers with a raw TGA stream or a GLB scene. The gateway turns HTTP
queries into those requests and returns PNG, TGA, GLB or a PDF sheet.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Annotations map a command's flag names onto config keys.
		for flag, key := range cmd.Annotations {
			if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
				return err
			}
		}
		c, err := config.Load(v, configPath)
		if err != nil {
			return err
		}
		if _, err := logging.Setup(c.Log.Level, c.Log.Pretty); err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(allCmd)
	rootCmd.AddCommand(renderCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Err(err).Msg("exiting")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
