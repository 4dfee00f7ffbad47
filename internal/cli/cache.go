package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ibtopo/pkg/cache"
	"github.com/matzehuels/ibtopo/pkg/config"
	"github.com/matzehuels/ibtopo/pkg/errors"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	var redisURL, configPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered artifact cache",
	}
	cmd.PersistentFlags().StringVar(&redisURL, "redis-url", "", "use the redis cache (env "+envRedisURL+")")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/ibtopo/config.toml)")

	resolve := func(cmd *cobra.Command) (string, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return "", err
		}
		return resolveRedisURL(cmd, redisURL, cfg), nil
	}

	cmd.AddCommand(c.cacheClearCommand(resolve))
	cmd.AddCommand(c.cachePathCommand(resolve))

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand(resolve func(*cobra.Command) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := resolve(cmd)
			if err != nil {
				return err
			}

			if url == "" {
				dir, err := cacheDir()
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					printInfo("Cache is empty")
					return nil
				}
			}

			ch, err := c.newCache(cmd.Context(), false, url)
			if err != nil {
				return err
			}
			defer ch.Close()

			clearer, ok := ch.(cache.Clearer)
			if !ok {
				return errors.New(errors.ErrCodeUnsupported, "cache backend %T cannot be cleared", ch)
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Clearing cache...")
			spinner.Start()
			count, err := clearer.Clear(cmd.Context())
			if err != nil {
				spinner.StopWithError("Clearing cache failed")
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("Cleared %d cached artifacts", count))
			printDetail("Location: %s", cacheLocation(ch, url))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand(resolve func(*cobra.Command) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := resolve(cmd)
			if err != nil {
				return err
			}
			if url != "" {
				fmt.Println(redactURL(url))
				return nil
			}
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

func cacheLocation(ch cache.Cache, url string) string {
	if fc, ok := ch.(*cache.FileCache); ok {
		return fc.Dir()
	}
	return redactURL(url)
}
