package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"gitlab.com/d21d3q/goems/internal/config"
	"gitlab.com/d21d3q/goems/internal/source"
	"gitlab.com/d21d3q/goems/pkg/goems"
)

var (
	rootCmd = &cobra.Command{
		Use:   "goems-decode [line]",
		Short: "Decode Dynon D120/D180 EMS frames",
		Long: "goems-decode validates and decodes the fixed-width ASCII engine-monitoring\n" +
			"stream emitted by Dynon D120/D180 instruments, from a serial port, a captured\n" +
			"log, or single lines on stdin.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 1 {
				return runDecode(args[0])
			}
			cfg, streaming, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if streaming {
				return runLoop(ctx, cfg)
			}
			return runInteractive(ctx)
		},
	}

	configPath   string
	portName     string
	baudrate     int
	playbackFile string
	loopPlayback bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file for the read loop")
	rootCmd.PersistentFlags().StringVar(&portName, "port", "", "serial device carrying the EMS stream")
	rootCmd.PersistentFlags().IntVar(&baudrate, "baudrate", 115200, "serial baud rate")
	rootCmd.PersistentFlags().StringVar(&playbackFile, "playback", "", "captured EMS log to replay instead of a serial port")
	rootCmd.PersistentFlags().BoolVar(&loopPlayback, "loop", false, "restart playback from the beginning at end of file")
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logrus.Fatal(err)
	}
}

// resolveConfig merges the config file with explicit flags; flags win.
// streaming is false when neither names a frame source, which sends the
// command into interactive stdin mode.
func resolveConfig(cmd *cobra.Command) (config.Config, bool, error) {
	cfg := config.Default()
	streaming := false
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, false, err
		}
		cfg = loaded
		streaming = true
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = portName
		cfg.PlaybackFile = ""
		streaming = true
	}
	if cmd.Flags().Changed("baudrate") {
		cfg.Baudrate = baudrate
	}
	if cmd.Flags().Changed("playback") {
		cfg.PlaybackFile = playbackFile
		streaming = true
	}
	if cmd.Flags().Changed("loop") {
		cfg.Loop = loopPlayback
	}
	if !streaming {
		return cfg, false, nil
	}
	return cfg, true, cfg.Validate()
}

func runInteractive(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)
	logrus.Info("goems decode mode. Paste an EMS line and press Enter (Ctrl+D to exit).")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := runDecode(line); err != nil {
			logrus.WithError(err).Error("failed to decode frame")
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func runDecode(line string) error {
	result, err := goems.DecodeString(line)
	if err != nil {
		return err
	}
	fmt.Println(result.String())
	return nil
}

func runLoop(ctx context.Context, cfg config.Config) error {
	src, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	var accepted *os.File
	if cfg.LogFile != "" {
		accepted, err = os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer accepted.Close()
	}

	stats, err := goems.Pump(ctx, src, func(r goems.Result) {
		fmt.Println(r.String())
		if accepted != nil {
			fmt.Fprintln(accepted, r.Raw)
		}
	})
	logrus.WithFields(logrus.Fields{
		"accepted":     stats.Accepted,
		"bad_checksum": stats.BadChecksum,
		"bad_decode":   stats.BadDecode,
	}).Info("stream finished")
	return err
}

func openSource(cfg config.Config) (source.Source, error) {
	if cfg.PlaybackFile != "" {
		logrus.WithField("file", cfg.PlaybackFile).Info("replaying captured EMS log")
		return source.OpenFile(cfg.PlaybackFile, cfg.Loop)
	}
	logrus.WithFields(logrus.Fields{
		"port":     cfg.Port,
		"baudrate": cfg.Baudrate,
	}).Info("opening EMS serial port")
	return source.OpenSerial(cfg.Port, cfg.Baudrate)
}
