package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ibtopo/pkg/config"
	"github.com/matzehuels/ibtopo/pkg/errors"
	"github.com/matzehuels/ibtopo/pkg/pipeline"
)

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	noColor      bool
	labels       bool
	interconnect bool
	hosts        bool
	lids         []int
	host         string
	guid         bool
	switchLabel  string
	hostLabel    string
	output       string
	formats      []string
	layout       string
	dialect      string

	configPath string
	noCache    bool
	redisURL   string
	pick       bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Draw a fabric dump as a Graphviz graph",
		Long: `Render parses iblinkinfo or ibnetdiscover output and writes <output>.dot.
Each requested format is written next to it as <output>.<format>.

Input is read from the file argument, or from stdin when it is omitted or "-".`,
		Example: `  iblinkinfo | ibtopo render -f svg
  ibtopo render dump.txt --lid 3 --lid 7 -o spine -f svg,pdf
  ibtopo render dump.txt --interconnect --labels --layout neato -f png
  ibtopo render dump.txt --pick -f svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args, &f)
		},
	}

	fs := cmd.Flags()
	fs.BoolVar(&f.noColor, "no-color", false, "draw all links and ports without color")
	fs.BoolVar(&f.labels, "labels", false, "label every node and link (speeds on edges)")
	fs.BoolVar(&f.interconnect, "interconnect", false, "only show switch-to-switch links")
	fs.BoolVar(&f.hosts, "hosts", false, "only show switch-to-host links")
	fs.IntSliceVar(&f.lids, "lid", nil, "only show links touching these LIDs (repeatable)")
	fs.StringVar(&f.host, "host", "", "only show the link of this host (name or numeric suffix)")
	fs.BoolVar(&f.guid, "guid", false, "include hardware GUIDs in labels")
	fs.StringVar(&f.switchLabel, "switch-label", "", "switch label template ({lid} {guid} {name} {free} {used})")
	fs.StringVar(&f.hostLabel, "host-label", "", "host label template ({lid} {guid} {name})")
	fs.StringVarP(&f.output, "output", "o", "", "output basename (default \""+pipeline.DefaultBasename+"\")")
	fs.StringSliceVarP(&f.formats, "format", "f", nil, "export formats: "+strings.Join(pipeline.FormatNames, ", "))
	fs.StringVar(&f.layout, "layout", "", "graphviz layout engine (default \"dot\")")
	fs.StringVar(&f.dialect, "dialect", "", "input dialect: auto (default), line, section, netdiscover, json")
	fs.StringVar(&f.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/ibtopo/config.toml)")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")
	fs.StringVar(&f.redisURL, "redis-url", "", "cache artifacts in redis (env "+envRedisURL+")")
	fs.BoolVar(&f.pick, "pick", false, "choose switches interactively before rendering")

	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return pipeline.FormatNames, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, f *renderFlags) error {
	ctx := cmd.Context()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}

	opts := pipeline.Options{Logger: c.Logger}
	cfg.Apply(&opts)
	f.apply(cmd, &opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	if f.pick && isStdin(args) {
		return errors.New(errors.ErrCodeInvalidInput, "--pick needs a file argument; stdin is used by the picker")
	}

	in, name, err := openInput(args)
	if err != nil {
		return err
	}
	defer in.Close()

	runner, err := c.newRunner(ctx, f.noCache, resolveRedisURL(cmd, f.redisURL, cfg))
	if err != nil {
		return err
	}
	defer runner.Close()

	c.Logger.Infof("Rendering %s", name)
	prog := newProgress(c.Logger)

	result, err := c.execute(ctx, runner, in, opts, f.pick)
	if err != nil || result == nil {
		return err
	}

	paths, err := writeOutputs(opts.Basename, opts.Formats, result)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d file(s)", len(paths)))

	printSuccess("Fabric rendered")
	printStats(result.Stats.ShownNodes, result.Stats.ShownLinks, len(result.CacheInfo.Hits) > 0)
	for _, p := range paths {
		printFile(p)
	}
	if result.Stats.EmptyTopology {
		printWarning("No nodes or links recognized in %s", name)
		printDetail("Try --dialect to force the input format")
	}

	if err := result.Err(); err != nil {
		for format, ferr := range result.Failures {
			printError("%s: %s", format, errors.UserMessage(ferr))
		}
		return err
	}
	return nil
}

// execute runs the pipeline, letting the user pick switches first when
// pick is set. A nil result with a nil error means the picker was aborted.
func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, in io.Reader, opts pipeline.Options, pick bool) (*pipeline.Result, error) {
	if !pick {
		return runner.Execute(ctx, in, opts)
	}

	topo, stats, err := runner.Parse(ctx, in, opts)
	if err != nil {
		return nil, err
	}
	lids, err := pickSwitches(topo)
	if err != nil {
		return nil, err
	}
	if len(lids) == 0 {
		printWarning("No switches selected")
		return nil, nil
	}
	opts.LIDs = lids
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := runner.ExecuteTopology(ctx, topo, opts)
	result.Stats.Parse = stats
	return result, nil
}

// apply copies explicitly set flags onto opts so they override the config file.
func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	changed := cmd.Flags().Changed

	if changed("no-color") {
		opts.NoColor = f.noColor
	}
	if changed("labels") {
		opts.Labels = f.labels
	}
	if changed("interconnect") {
		opts.Interconnect = f.interconnect
	}
	if changed("hosts") {
		opts.HostsOnly = f.hosts
	}
	if changed("lid") {
		opts.LIDs = f.lids
	}
	if changed("host") {
		opts.Host = f.host
	}
	if changed("guid") {
		opts.ShowGUID = f.guid
	}
	if changed("switch-label") {
		opts.SwitchTemplate = unescapeTemplate(f.switchLabel)
	}
	if changed("host-label") {
		opts.EndpointTemplate = unescapeTemplate(f.hostLabel)
	}
	if changed("output") {
		opts.Basename = f.output
	}
	if changed("format") {
		opts.Formats = f.formats
	}
	if changed("layout") {
		opts.Layout = f.layout
	}
	if changed("dialect") {
		opts.Dialect = f.dialect
	}
}

// unescapeTemplate turns a literal "\n" typed on the command line into a
// line break.
func unescapeTemplate(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// resolveRedisURL picks the redis URL: flag, then environment, then config.
func resolveRedisURL(cmd *cobra.Command, flag string, cfg *config.Config) string {
	if cmd.Flags().Changed("redis-url") {
		return flag
	}
	if env := os.Getenv(envRedisURL); env != "" {
		return env
	}
	return cfg.Cache.RedisURL
}

func isStdin(args []string) bool {
	return len(args) == 0 || args[0] == "-"
}

// openInput opens the dump named by args, or stdin.
func openInput(args []string) (io.ReadCloser, string, error) {
	if isStdin(args) {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	file, err := os.Open(args[0])
	if os.IsNotExist(err) {
		return nil, "", errors.New(errors.ErrCodeFileNotFound, "input file not found: %s", args[0])
	}
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", args[0])
	}
	return file, args[0], nil
}

// writeOutputs writes basename.dot and every rendered artifact, in the
// requested format order. It returns the written paths.
func writeOutputs(basename string, formats []string, result *pipeline.Result) ([]string, error) {
	if dir := filepath.Dir(basename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}

	dotPath := basename + "." + pipeline.FormatDOT
	if err := os.WriteFile(dotPath, []byte(result.DOT), 0o644); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", dotPath)
	}
	paths := []string{dotPath}

	for _, format := range formats {
		data, ok := result.Artifacts[format]
		if !ok || format == pipeline.FormatDOT {
			continue
		}
		path := basename + "." + format
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
