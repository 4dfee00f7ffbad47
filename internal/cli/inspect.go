package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ibtopo/pkg/config"
	"github.com/matzehuels/ibtopo/pkg/fabric"
	"github.com/matzehuels/ibtopo/pkg/fabric/filter"
	"github.com/matzehuels/ibtopo/pkg/pipeline"
)

// inspectCommand creates the inspect command: parse and filter, then print
// port usage per switch instead of rendering.
func (c *CLI) inspectCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print switch port usage of a fabric dump",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return err
			}
			opts := pipeline.Options{Logger: c.Logger}
			cfg.Apply(&opts)
			f.apply(cmd, &opts)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			in, _, err := openInput(args)
			if err != nil {
				return err
			}
			defer in.Close()

			runner := pipeline.NewRunner(nil, nil, c.Logger)
			topo, _, err := runner.Parse(cmd.Context(), in, opts)
			if err != nil {
				return err
			}
			sel := runner.Select(cmd.Context(), topo, opts)

			printInspect(os.Stdout, topo, sel)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.BoolVar(&f.interconnect, "interconnect", false, "only count switch-to-switch links")
	fs.BoolVar(&f.hosts, "hosts", false, "only count switch-to-host links")
	fs.IntSliceVar(&f.lids, "lid", nil, "only show links touching these LIDs (repeatable)")
	fs.StringVar(&f.host, "host", "", "only show the link of this host")
	fs.StringVar(&f.dialect, "dialect", "", "input dialect: auto (default), line, section, netdiscover, json")
	fs.StringVar(&f.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/ibtopo/config.toml)")

	return cmd
}

// printInspect writes the port usage table of every switch in sel and a
// summary line.
func printInspect(w io.Writer, topo *fabric.Topology, sel filter.Result) {
	rows := [][]string{}
	hosts, interconnect := 0, 0
	for _, n := range sel.Nodes {
		if !n.IsSwitch {
			hosts++
			continue
		}
		rows = append(rows, []string{
			strconv.Itoa(n.LID),
			n.Name,
			strconv.Itoa(n.TotalPorts),
			strconv.Itoa(n.UsedPorts()),
			strconv.Itoa(n.FreePorts()),
			formatPorts(n.FreePortNumbers()),
		})
	}
	for _, l := range sel.Links {
		if topo.IsInterconnect(l) {
			interconnect++
		}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("LID", "Switch", "Ports", "Used", "Free", "Free ports").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 4:
				return StyleNumber
			case col == 5:
				return StyleDim
			}
			return lipgloss.NewStyle()
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("  %d switches · %d hosts · %d links (%d interconnect)",
		len(rows), hosts, len(sel.Links), interconnect)))
}

// formatPorts renders sorted port numbers compactly, collapsing runs:
// [1 2 3 7] becomes "1-3,7".
func formatPorts(ports []int) string {
	if len(ports) == 0 {
		return "-"
	}
	var parts []string
	for i := 0; i < len(ports); {
		j := i
		for j+1 < len(ports) && ports[j+1] == ports[j]+1 {
			j++
		}
		if j > i {
			parts = append(parts, fmt.Sprintf("%d-%d", ports[i], ports[j]))
		} else {
			parts = append(parts, strconv.Itoa(ports[i]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}
