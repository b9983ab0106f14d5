package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flexpos/pkg/errors"
	"github.com/matzehuels/flexpos/pkg/scenario"
)

// initCommand creates the init command, which writes a starter scenario.
func (c *CLI) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write an example scenario file",
		Long: `Write an example scenario file.

The scenario describes a dropdown menu: a viewport, the trigger it is
anchored to, the menu's size, three preferred positions and a short script
of steps. The format follows the extension (.toml or .json).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "scenario.toml"
			if len(args) == 1 {
				path = args[0]
			}
			return c.runInit(path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (c *CLI) runInit(path string, force bool) error {
	if err := errors.ValidateScenarioPath(path); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := scenario.Save(scenario.Sample(), path); err != nil {
		return err
	}
	c.Logger.Debug("wrote scenario", "path", path)

	printSuccess("Created scenario")
	printFile(path)
	printNewline()
	printNextStep("Solve", "flexpos solve "+path)
	return nil
}
