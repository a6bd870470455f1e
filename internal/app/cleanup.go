package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/qacapture/internal/evidence"
	"github.com/blackwell-systems/qacapture/internal/output"
	"github.com/blackwell-systems/qacapture/internal/records"
	"github.com/blackwell-systems/qacapture/internal/store"
)

var (
	settingsAutoDelete string
	settingsCursor     string
	settingsClipboard  string
	settingsDisplay    int

	cleanupCmd = &cobra.Command{
		Use:   "cleanup",
		Short: "Delete completed tests older than the auto-delete setting",
		Long: `Deletes completed test records, folders included, whose last update is
older than the auto-delete setting. In-progress tests are never touched.
Does nothing while auto-delete is off.`,
		Args: cobra.NoArgs,
		RunE: withApp(runCleanup),
	}

	settingsCmd = &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
		Long: `Shows the database settings and capture preferences, or changes them.

Capture preferences override the config file defaults.`,
		Example: `  # Delete completed tests 30 days after their last update
  qacapture settings --auto-delete 30

  # Turn auto-delete off
  qacapture settings --auto-delete off

  # Draw the pointer into screenshots and copy them to the clipboard
  qacapture settings --cursor on --clipboard on`,
		Args: cobra.NoArgs,
		RunE: withApp(runSettings),
	}
)

func init() {
	settingsCmd.Flags().StringVar(&settingsAutoDelete, "auto-delete", "", "days after completion, or 'off'")
	settingsCmd.Flags().StringVar(&settingsCursor, "cursor", "", "draw the pointer into screenshots (on/off)")
	settingsCmd.Flags().StringVar(&settingsClipboard, "clipboard", "", "copy each screenshot to the clipboard (on/off)")
	settingsCmd.Flags().IntVar(&settingsDisplay, "display", 0, "display used when capture gets no --display")

	RootCmd.AddCommand(cleanupCmd, settingsCmd)
}

func runCleanup(cmd *cobra.Command, a *evidence.App, args []string) error {
	result, err := a.Cleanup()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderCleanupResult(result))
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d test(s) could not be deleted", len(result.Errors))
	}
	return nil
}

func runSettings(cmd *cobra.Command, a *evidence.App, args []string) error {
	flags := cmd.Flags()

	if flags.Changed("auto-delete") {
		upd, err := parseAutoDelete(settingsAutoDelete)
		if err != nil {
			return err
		}
		if err := a.Records.UpdateDatabaseSettings(upd); err != nil {
			return err
		}
	}

	toggles := []struct {
		flag, value, key string
	}{
		{"cursor", settingsCursor, store.KeyCursorInScreenshots},
		{"clipboard", settingsClipboard, store.KeyCopyToClipboard},
	}
	for _, t := range toggles {
		if !flags.Changed(t.flag) {
			continue
		}
		v, err := parseToggle(t.value)
		if err != nil {
			return fmt.Errorf("--%s: %w", t.flag, err)
		}
		if err := a.Prefs.SetBool(t.key, v); err != nil {
			return err
		}
	}

	if flags.Changed("display") {
		if err := a.SelectDisplay(settingsDisplay); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, output.RenderSettings(a.Records.Settings(), a.Clock.Now()))

	cursor, err := a.Prefs.Bool(store.KeyCursorInScreenshots, a.Config.Capture.CursorInScreenshots)
	if err != nil {
		return err
	}
	clip, err := a.Prefs.Bool(store.KeyCopyToClipboard, a.Config.Capture.CopyToClipboard)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%-14s %s\n", "Cursor:", onOff(cursor))
	fmt.Fprintf(out, "%-14s %s\n", "Clipboard:", onOff(clip))
	fmt.Fprintf(out, "%-14s %d\n", "Display:", a.DisplayID(nil))
	return nil
}

func parseAutoDelete(s string) (records.SettingsUpdate, error) {
	if strings.EqualFold(s, "off") {
		return records.SettingsUpdate{DisableAutoDelete: true}, nil
	}
	days, err := strconv.Atoi(s)
	if err != nil || days < 1 {
		return records.SettingsUpdate{}, errors.New("--auto-delete must be a positive number of days or 'off'")
	}
	return records.SettingsUpdate{AutoDeleteAfterDays: &days}, nil
}

func parseToggle(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("want on or off, got %q", s)
	}
	return v, nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
