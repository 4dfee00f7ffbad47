package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/ibtopo/internal/server"
	"github.com/matzehuels/ibtopo/pkg/config"
	"github.com/matzehuels/ibtopo/pkg/pipeline"
)

// serveCommand creates the serve command: run the pipeline as an HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
		redisURL   string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render pipeline over HTTP",
		Example: `  ibtopo serve --addr :9000
  iblinkinfo | curl --data-binary @- 'localhost:9000/api/v1/render?format=svg&lid=3' > fabric.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			defaults := pipeline.Options{}
			cfg.Apply(&defaults)
			defaults.Formats = nil
			if err := defaults.ValidateAndSetDefaults(); err != nil {
				return err
			}
			defaults.Logger = nil

			if !cmd.Flags().Changed("addr") && cfg.Server.Addr != "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache, resolveRedisURL(cmd, redisURL, cfg))
			if err != nil {
				return err
			}
			defer runner.Close()

			printSuccess("Serving ibtopo API")
			printKeyValue("Address", addr)
			printKeyValue("Layout", defaults.Layout)
			if cfg.Path != "" {
				printKeyValue("Config", cfg.Path)
			}

			return server.New(runner, defaults, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	fs.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/ibtopo/config.toml)")
	fs.StringVar(&redisURL, "redis-url", "", "cache artifacts in redis (env "+envRedisURL+")")
	fs.BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}
