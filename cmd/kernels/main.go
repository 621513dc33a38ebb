package main

import (
	"os"
	"os/signal"

	"github.com/drakos74/ml-kernels/infra/config"
	"github.com/drakos74/ml-kernels/internal/metrics"
	"github.com/drakos74/ml-kernels/internal/storage"
	json_storage "github.com/drakos74/ml-kernels/internal/storage/file/json"
	flags "github.com/jessevdk/go-flags"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// Options are the flags shared by all commands.
type Options struct {
	Config      string `short:"c" long:"config" description:"directory holding kernels.json" default:"infra/config"`
	Seed        int64  `short:"s" long:"seed" description:"random seed, 0 keeps the configured one"`
	Debug       bool   `short:"d" long:"debug" description:"enable debug logging"`
	MetricsPort int    `long:"metrics-port" description:"serve prometheus metrics on the given port until interrupted"`
}

// RunCommand runs kernels on the built-in datasets and prints the results.
type RunCommand struct {
	Kernels []string `short:"k" long:"kernel" description:"kernel to run, can be repeated, all by default" choice:"correlation" choice:"normal" choice:"knn" choice:"kmeans" choice:"tree" choice:"regression"`
}

// ExportCommand runs kernels and writes their results as json files.
type ExportCommand struct {
	RunCommand
	Dir string `long:"dir" description:"root directory of the exported files" default:"file-storage"`
}

var options Options

func (c *RunCommand) Execute(args []string) error {
	return execute(c.Kernels, storage.VoidShard())
}

func (c *ExportCommand) Execute(args []string) error {
	err := execute(c.Kernels, json_storage.BlobShard(c.Dir))
	if err == nil {
		log.Info().Str("dir", c.Dir).Msg("exported kernel results")
	}
	return err
}

func execute(kernels []string, shard storage.Shard) error {
	if options.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	cfg := loadConfig(options.Config)
	if options.Seed != 0 {
		cfg.Seed = options.Seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if options.MetricsPort > 0 {
		go func() {
			if err := metrics.Serve(options.MetricsPort); err != nil {
				log.Error().Err(err).Int("port", options.MetricsPort).Msg("could not serve metrics")
			}
		}()
	}

	r := newRunner(cfg, os.Stdout, shard)
	err := r.run(kernels...)

	if options.MetricsPort > 0 {
		log.Info().Int("port", options.MetricsPort).Msg("serving metrics, interrupt to exit")
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt)
		<-stop
	}
	return err
}

func loadConfig(dir string) config.Kernels {
	var cfg config.Kernels
	if err := config.Load(dir, config.KernelsKey, &cfg); err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("using built-in kernel config")
		return config.DefaultKernels()
	}
	log.Debug().Str("dir", dir).Int64("seed", cfg.Seed).Msg("loaded kernel config")
	return cfg
}

func main() {
	parser := flags.NewParser(&options, flags.Default)
	_, err := parser.AddCommand("run", "run kernels", "Runs the kernels on the built-in datasets and prints the results.", &RunCommand{})
	if err != nil {
		log.Fatal().Err(err).Msg("could not add run command")
	}
	_, err = parser.AddCommand("export", "export kernel results", "Runs the kernels and stores their results as json files.", &ExportCommand{})
	if err != nil {
		log.Fatal().Err(err).Msg("could not add export command")
	}

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
