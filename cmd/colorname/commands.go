package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dokzlo13/colorname/internal/app"
	"github.com/dokzlo13/colorname/internal/catalog"
	"github.com/dokzlo13/colorname/internal/smarthome"
)

var errNoMatch = errors.New("no matching option")

func newColorCmd(c *cli) *cobra.Command {
	var showLabel bool

	cmd := &cobra.Command{
		Use:   "color <name|#rrggbb>",
		Short: "Resolve a colour name or hex code to a colour option",
		Example: `  colorname color "Warm Red"
  colorname color '#fe0101'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			colors := c.app.Catalogs().Colors()
			id, ok, err := c.app.Resolver().ResolveColorName(colors, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w for %q", errNoMatch, args[0])
			}
			return printMatch(cmd.OutOrStdout(), colors, id, showLabel)
		},
	}
	cmd.Flags().BoolVarP(&showLabel, "label", "l", false, "print the option label next to the identifier")
	return cmd
}

func newTemperatureCmd(c *cli) *cobra.Command {
	var showLabel bool

	cmd := &cobra.Command{
		Use:     "temperature <name|kelvin|#rrggbb>",
		Aliases: []string{"temp"},
		Short:   "Resolve a colour temperature to a temperature option",
		Example: `  colorname temperature 2700
  colorname temperature "soft white"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			temps := c.app.Catalogs().Temperatures()
			// Exact names win over numeric text
			id, ok, err := c.app.Resolver().ResolveTemperatureName(temps, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w for %q", errNoMatch, args[0])
			}
			return printMatch(cmd.OutOrStdout(), temps, id, showLabel)
		},
	}
	cmd.Flags().BoolVarP(&showLabel, "label", "l", false, "print the option label next to the identifier")
	return cmd
}

func printMatch(w io.Writer, c *catalog.Catalog, id string, showLabel bool) error {
	if showLabel {
		label, _ := c.Label(id)
		_, err := fmt.Fprintf(w, "%s\t%s\n", id, label)
		return err
	}
	_, err := fmt.Fprintln(w, id)
	return err
}

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:       "list [colors|temperatures]",
		Short:     "List catalog options in catalog order",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"colors", "temperatures"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := "colors"
			if len(args) == 1 {
				kind = args[0]
			}
			cat := c.app.Catalogs().Colors()
			if kind == "temperatures" {
				cat = c.app.Catalogs().Temperatures()
			}
			return writeOptions(cmd.OutOrStdout(), cat)
		},
	}
}

func writeOptions(w io.Writer, c *catalog.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "IDENTIFIER\tLABEL\tVALUE")
	for _, opt := range c.Options() {
		value := "-"
		if opt.Known != nil {
			if c.Kind() == catalog.KindTemperature {
				value = strconv.FormatFloat(opt.Known.Kelvin, 'f', -1, 64) + "K"
			} else {
				value = opt.Known.Hex
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", opt.ID, opt.Label, value)
	}
	return tw.Flush()
}

// batchResult is the YAML shape of one resolved request.
type batchResult struct {
	Entity     string         `yaml:"entity"`
	Action     string         `yaml:"action"`
	Parameters map[string]any `yaml:"parameters,omitempty"`
	Error      string         `yaml:"error,omitempty"`
}

func newBatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <requests.yaml|->",
		Short: "Resolve a YAML or JSON list of device action requests",
		Long: `Resolve a list of {entity, action, value, scale} requests into device
parameters. Failed requests carry an error and do not stop the batch; the
command exits non-zero when any request failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			var reqs []smarthome.ActionRequest
			if err := yaml.Unmarshal(data, &reqs); err != nil {
				return fmt.Errorf("failed to parse requests: %w", err)
			}

			results := c.app.Resolve(cmd.Context(), reqs)

			out := make([]batchResult, len(results))
			failed := 0
			for i, res := range results {
				out[i] = batchResult{Entity: res.Entity, Action: res.Action, Parameters: res.Parameters}
				if res.Err != nil {
					out[i].Error = res.Err.Error()
					failed++
				}
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return err
			}
			if err := enc.Close(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d requests failed", failed, len(results))
			}
			return nil
		},
	}
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func newRunCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "run [script.lua]",
		Short: "Run a Lua script with the colors and log modules",
		Long: `Run a Lua script. Without an argument the configured script is used.

The script can require("colors") for resolution, catalog listing and batch
actions, and require("log") for structured logging.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.cfg.ResolvePath(c.cfg.Script)
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return errors.New("no script given and none configured")
			}
			return runScript(cmd.Context(), c.app, path)
		},
	}
}

func runScript(ctx context.Context, a *app.App, path string) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	a.Start(ctx)
	defer a.Stop()
	return a.RunScript(ctx, path)
}
