package cli

import (
	"context"

	"github.com/spf13/cobra"

	"duet-cli/internal/model"
	"duet-cli/internal/remote"
)

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Profile and notification preferences",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.authed(cmd, func(ctx context.Context, svc remote.Service, p model.Principal) error {
				profile, ok, err := svc.GetProfile(ctx, p.ID)
				if err != nil {
					return err
				}
				if !ok {
					return writeOut(cmd, app, map[string]any{"profile": nil})
				}
				return writeOut(cmd, app, profile)
			})
		},
	}

	var (
		name      string
		avatar    string
		startDate string
		theme     string
		partner   string

		notifEvents        bool
		notifTasks         bool
		notifAnniversaries bool
		notifDaily         bool
	)
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Update profile fields (only the flags you pass change)",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only flags the user actually passed become part of the patch;
			// the profile row keeps its other fields (upsert semantics).
			var patch remote.ProfilePatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.FullName = &name
			}
			if flags.Changed("avatar") {
				patch.AvatarURL = &avatar
			}
			if flags.Changed("start-date") {
				patch.StartDate = &startDate
			}
			if flags.Changed("theme") {
				patch.PrefTheme = &theme
			}
			if flags.Changed("partner") {
				patch.PartnerID = &partner
			}
			if flags.Changed("notif-events") {
				patch.NotifEvents = &notifEvents
			}
			if flags.Changed("notif-tasks") {
				patch.NotifTasks = &notifTasks
			}
			if flags.Changed("notif-anniversaries") {
				patch.NotifAnniversaries = &notifAnniversaries
			}
			if flags.Changed("notif-daily") {
				patch.NotifDaily = &notifDaily
			}

			return app.authed(cmd, func(ctx context.Context, svc remote.Service, p model.Principal) error {
				if err := svc.SaveProfile(ctx, p.ID, patch); err != nil {
					return err
				}
				profile, _, err := svc.GetProfile(ctx, p.ID)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, profile)
			})
		},
	}
	setCmd.Flags().StringVar(&name, "name", "", "Full name")
	setCmd.Flags().StringVar(&avatar, "avatar", "", "Avatar URL")
	setCmd.Flags().StringVar(&startDate, "start-date", "", "Couple start date (YYYY-MM-DD)")
	setCmd.Flags().StringVar(&theme, "theme", "", "Theme preference (light|dark|auto)")
	setCmd.Flags().StringVar(&partner, "partner", "", "Partner account id (empty to unlink)")
	setCmd.Flags().BoolVar(&notifEvents, "notif-events", false, "Notify on events")
	setCmd.Flags().BoolVar(&notifTasks, "notif-tasks", false, "Notify on tasks")
	setCmd.Flags().BoolVar(&notifAnniversaries, "notif-anniversaries", false, "Notify on anniversaries")
	setCmd.Flags().BoolVar(&notifDaily, "notif-daily", false, "Daily digest")

	cmd.AddCommand(showCmd, setCmd)
	return cmd
}
