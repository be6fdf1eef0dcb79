package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-arborluminis/internal/app"
	"github.com/coreman2200/funtimes-arborluminis/internal/config"
	"github.com/coreman2200/funtimes-arborluminis/internal/patterns"
	"github.com/coreman2200/funtimes-arborluminis/internal/preview"
	"github.com/coreman2200/funtimes-arborluminis/internal/tree"
)

func main() {
	// ---- Flags (remain usable; config.yaml can override most) ----
	var (
		configPath  = flag.String("config", "config.yaml", "path to config.yaml")
		driver      = flag.String("driver", "spi", "driver: spi | term")
		leds        = flag.Int("leds", 25, "number of LEDs on the string")
		fps         = flag.Int("fps", 2, "target frames per second")
		brightness  = flag.Int("brightness", 1, "global brightness 1..31, seeded once at startup")
		frames      = flag.Int("frames", 40, "frames per pattern before switching")
		spiPort     = flag.String("spi-port", "", "spireg port name; empty picks the first port")
		spiHz       = flag.Int("spi-hz", 1000000, "SPI clock in Hz")
		patternList = flag.String("patterns", "swirl,spin,sparkle,random", "comma-separated pattern rotation")
		writeConfig = flag.Bool("write-config", false, "write the effective config to -config and exit")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Effective params: flags first, config.yaml overrides where set ----
	eff := &config.Config{
		Driver:           *driver,
		LEDs:             *leds,
		FPS:              *fps,
		Brightness:       *brightness,
		FramesPerPattern: *frames,
		Patterns:         splitPatterns(*patternList),
		SPI:              config.SPI{Port: *spiPort, SpeedHz: *spiHz},
	}
	if cfg, err := config.Load(*configPath); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	} else {
		if cfg.Driver != "" {
			eff.Driver = cfg.Driver
		}
		if cfg.LEDs > 0 {
			eff.LEDs = cfg.LEDs
		}
		if cfg.FPS > 0 {
			eff.FPS = cfg.FPS
		}
		if cfg.Brightness > 0 {
			eff.Brightness = cfg.Brightness
		}
		if cfg.FramesPerPattern > 0 {
			eff.FramesPerPattern = cfg.FramesPerPattern
		}
		if len(cfg.Patterns) > 0 {
			eff.Patterns = cfg.Patterns
		}
		if cfg.SPI.Port != "" {
			eff.SPI.Port = cfg.SPI.Port
		}
		if cfg.SPI.SpeedHz > 0 {
			eff.SPI.SpeedHz = cfg.SPI.SpeedHz
		}
	}

	if *writeConfig {
		if err := config.Save(*configPath, eff); err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("config write failed")
		}
		log.Info().Str("path", *configPath).Msg("config written")
		return
	}

	// ---- Pattern rotation (unknown names are fatal) ----
	reg := patterns.Default(rand.New(rand.NewSource(time.Now().UnixNano())))
	var rotation []patterns.Pattern
	for _, name := range eff.Patterns {
		p, ok := reg.Get(name)
		if !ok {
			log.Fatal().Str("pattern", name).Strs("known", reg.List()).Msg("unknown pattern")
		}
		rotation = append(rotation, p)
	}

	// ---- Transport selection ----
	if _, err := host.Init(); err != nil {
		log.Fatal().Err(err).Msg("host init failed")
	}

	var port spi.PortCloser
	var sink *preview.Sink
	switch eff.Driver {
	case "spi":
		p, err := spireg.Open(eff.SPI.Port)
		if err != nil {
			log.Warn().Err(err).Str("port", eff.SPI.Port).Msg("no SPI port; printing at the console")
			sink = preview.New(screen.New(eff.LEDs), eff.LEDs)
			port = spitest.NewRecordRaw(sink)
		} else {
			port = p
		}
	case "term":
		sink = preview.New(screen.New(eff.LEDs), eff.LEDs)
		port = spitest.NewRecordRaw(sink)
	default:
		log.Fatal().Str("driver", eff.Driver).Msg("unknown driver, want spi or term")
	}

	d, err := tree.New(port, &tree.Opts{
		NumLEDs: eff.LEDs,
		Freq:    physic.Frequency(eff.SPI.SpeedHz) * physic.Hertz,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("tree init failed")
	}
	if err := d.SetBrightness(eff.Brightness); err != nil {
		d.Close()
		log.Fatal().Err(err).Int("brightness", eff.Brightness).Msg("bad brightness")
	}

	// ---- Run until interrupted, then blank and release ----
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := 500 * time.Millisecond
	if eff.FPS > 0 {
		interval = time.Second / time.Duration(eff.FPS)
	}
	loop := &app.Loop{
		Tree:             d,
		Patterns:         rotation,
		FramesPerPattern: eff.FramesPerPattern,
		Interval:         interval,
		Log:              log.Logger,
	}
	log.Info().Str("driver", eff.Driver).Int("leds", eff.LEDs).Int("fps", eff.FPS).Msg("treelights starting")
	runErr := loop.Run(ctx)

	if err := d.Off(); err != nil {
		log.Warn().Err(err).Msg("blanking the tree failed")
	}
	if err := d.Close(); err != nil {
		log.Warn().Err(err).Msg("closing the SPI port failed")
	}
	if sink != nil {
		if err := sink.Close(); err != nil {
			log.Warn().Err(err).Msg("closing the preview failed")
		}
	}
	if runErr != nil {
		log.Fatal().Err(runErr).Msg("animation loop failed")
	}
	log.Info().Msg("shut down")
}

func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
