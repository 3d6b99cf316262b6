// Command appliance runs the air-gapped signing appliance's device loop.
// It wires internal/hal's simulators and internal/se/simfile's persisted
// secure element together the way cmd/synnergy/main.go assembles a Cobra
// root command, so the appliance is runnable and demoable without
// physical hardware.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/airgap/signer-appliance/internal/config"
	"github.com/airgap/signer-appliance/internal/flow"
	"github.com/airgap/signer-appliance/internal/hal/simfs"
	"github.com/airgap/signer-appliance/internal/hal/simterm"
	"github.com/airgap/signer-appliance/internal/se/simfile"
)

var log = logrus.New()

func main() {
	rootCmd := &cobra.Command{Use: "appliance"}
	rootCmd.AddCommand(runCmd())
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("appliance exited with error")
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the device loop against a simulated USB medium and secure element",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			usbDir, _ := cmd.Flags().GetString("usb-dir")
			sePath, _ := cmd.Flags().GetString("se-state")

			var searchPaths []string
			if configPath != "" {
				searchPaths = []string{configPath}
			}
			cfg, err := config.Load(searchPaths...)
			if err != nil {
				return err
			}
			if usbDir != "" {
				cfg.Usb.Dir = usbDir
			}
			if sePath != "" {
				cfg.Se.StatePath = sePath
			}

			level, err := logrus.ParseLevel(cfg.Logging.Level)
			if err != nil {
				level = logrus.InfoLevel
			}
			log.SetLevel(level)

			element, err := simfile.Open(cfg.Se.StatePath)
			if err != nil {
				return err
			}
			usb := simfs.New(cfg.Usb.Dir)
			term := simterm.New(os.Stdout, os.Stdin)

			log.WithFields(logrus.Fields{
				"usb_dir":  cfg.Usb.Dir,
				"se_state": cfg.Se.StatePath,
			}).Info("starting appliance device loop")

			f := flow.New(term, term, usb, element, log)
			return f.Run()
		},
	}
	cmd.Flags().String("config", "", "directory to search for appliance.yaml")
	cmd.Flags().String("usb-dir", "", "directory simulating the USB medium (overrides config)")
	cmd.Flags().String("se-state", "", "path to the secure element's persisted state (overrides config)")
	return cmd
}
