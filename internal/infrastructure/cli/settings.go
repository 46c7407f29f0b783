package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/compaudit/pkg/domain/settings"
	"github.com/spf13/cobra"
)

var settingsJSON bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show and change the result filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, "cli")
		if err != nil {
			return err
		}
		st, err := services.Settings.Get()
		if err != nil {
			return MapError(err)
		}
		return printSettings(cmd.OutOrStdout(), st)
	},
}

var settingsToggleCmd = &cobra.Command{
	Use:   "toggle <key>",
	Short: "Flip a filter; group filters flip their children",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, "cli")
		if err != nil {
			return err
		}
		st, err := services.Settings.Toggle(commandContext(cmd), settings.Key(args[0]))
		if err != nil {
			return MapError(err)
		}
		return printSettings(cmd.OutOrStdout(), st)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <on|off>",
	Short: "Set a filter to a given state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		on, err := parseSwitch(args[1])
		if err != nil {
			return NewCLIError(err.Error(), "Use on or off", nil)
		}
		services, err := loadServices(cmd, "cli")
		if err != nil {
			return err
		}
		st, err := services.Settings.Set(commandContext(cmd), settings.Key(args[0]), on)
		if err != nil {
			return MapError(err)
		}
		return printSettings(cmd.OutOrStdout(), st)
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, "cli")
		if err != nil {
			return err
		}
		st, err := services.Settings.Reset(commandContext(cmd))
		if err != nil {
			return MapError(err)
		}
		return printSettings(cmd.OutOrStdout(), st)
	},
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid state %q", s)
	}
	return b, nil
}

func printSettings(w io.Writer, st settings.Settings) error {
	if settingsJSON {
		return writeJSON(w, st)
	}

	children := make(map[settings.Key]bool)
	for _, g := range settings.Groups {
		for _, c := range g.Children {
			children[c] = true
		}
	}
	for _, k := range settings.Keys() {
		box := "[ ]"
		if st.Enabled(k) {
			box = okStyle.Render("[x]")
		}
		indent := ""
		if children[k] {
			indent = "    "
		}
		fmt.Fprintf(w, "%s%s %s\n", indent, box, k)
	}
	return nil
}

func init() {
	settingsCmd.PersistentFlags().BoolVar(&settingsJSON, "json", false, "Output in JSON format")
	settingsCmd.AddCommand(settingsToggleCmd, settingsSetCmd, settingsResetCmd)
	RootCmd.AddCommand(settingsCmd)
}
