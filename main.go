// ABOUTME: Entry point for the pcmplay demo
// ABOUTME: Plays the configured WAV file and raw PCM files through the playback driver
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/Resonate-Protocol/pcmplay/internal/config"
	"github.com/Resonate-Protocol/pcmplay/internal/console"
	"github.com/Resonate-Protocol/pcmplay/internal/ui"
	"github.com/Resonate-Protocol/pcmplay/internal/version"
	"github.com/Resonate-Protocol/pcmplay/pkg/audio/output"
	"github.com/Resonate-Protocol/pcmplay/pkg/playback"
)

// terminal is the console the entry sequence talks to
type terminal interface {
	playback.Console
	ReadLine(ctx context.Context) (string, error)
	Close() error
}

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *showVersion {
		fmt.Printf("%s %s (%s)\n", version.Product, version.Version, version.Manufacturer)
		return
	}

	// Set up logging
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if cfg.StreamLogs && !cfg.TUI {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	} else {
		log.SetOutput(f)
	}

	log.Printf("Starting %s %s (backend: %s)", version.Product, version.Version, cfg.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var term terminal
	if cfg.TUI {
		tui := ui.Run()
		go func() {
			select {
			case <-tui.Done():
				log.Printf("Received quit signal from TUI")
				stop()
			case <-ctx.Done():
			}
		}()
		term = tui
	} else {
		c, err := console.New(os.Stdin, os.Stdout)
		if err != nil {
			log.Fatalf("Failed to open console: %v", err)
		}
		term = c
	}

	driver := playback.New(playback.Config{
		NewBackend: func() (output.Backend, error) {
			return output.New(cfg.Backend)
		},
		Console:      term,
		PollInterval: cfg.Poll,
	})

	err = run(ctx, cfg, driver, term)
	if cerr := term.Close(); cerr != nil {
		log.Printf("Error closing console: %v", cerr)
	}
	if err != nil {
		log.Fatalf("Playback failed: %v", err)
	}

	log.Printf("Done")
}

// run is the entry sequence: the WAV file, then the raw PCM files side by
// side, a pause for Enter, then the WAV file again asynchronously. Branches
// whose files are missing are skipped. Raw sessions still playing when the
// sequence ends are cancelled and released before run returns.
func run(ctx context.Context, cfg config.Config, driver *playback.Driver, term terminal) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	if fileExists(cfg.WAV) {
		term.Printf("Playing WAV file...")

		var err error
		if cfg.Volume != 1 {
			_, err = driver.PlayFileWithVolume(ctx, cfg.WAV, cfg.Volume)
		} else {
			_, err = driver.PlayFile(ctx, cfg.WAV)
		}
		if err != nil {
			return err
		}
	}

	var raw []string
	for _, path := range cfg.PCM {
		if fileExists(path) {
			raw = append(raw, path)
		}
	}

	if len(raw) > 0 {
		term.Printf("Playing raw PCM file...")
		for _, path := range raw {
			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				if _, err := driver.PlayRawPcm(ctx, path, cfg.SampleRate, cfg.Channels, cfg.BitDepth); err != nil {
					log.Printf("Raw PCM playback of %s failed: %v", path, err)
				}
			}(path)
		}
	}

	if _, err := term.ReadLine(ctx); err != nil {
		log.Printf("Stopped waiting for input: %v", err)
	}

	if fileExists(cfg.WAV) && ctx.Err() == nil {
		term.Printf("Async playback...")
		if _, err := driver.PlayFileAsync(ctx, cfg.WAV).Wait(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}

	return nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
