package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"skilldock/internal/app"
	"skilldock/internal/pipeline"
)

type ExitCoder interface {
	ExitCode() int
}

type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
func (e *exitError) ExitCode() int { return e.code }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if ex, ok := err.(ExitCoder); ok {
			os.Exit(ex.ExitCode())
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:           "skilldock",
		Short:         "Install registry skills and plugins into local agent directories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")

	cmd.AddCommand(newInstallCmd(&configPath, &jsonOutput))
	cmd.AddCommand(newUpdateCmd(&configPath, &jsonOutput))
	cmd.AddCommand(newCheckCmd(&configPath, &jsonOutput))
	cmd.AddCommand(newGenerateLockCmd(&configPath, &jsonOutput))
	cmd.AddCommand(newListCmd(&configPath, &jsonOutput))
	cmd.AddCommand(newDoctorCmd(&configPath, &jsonOutput))
	cmd.AddCommand(newVersionCmd(&jsonOutput))

	return cmd
}

func newInstallCmd(configPath *string, jsonOutput *bool) *cobra.Command {
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:     "install <slug>",
		Aliases: []string{"add"},
		Short:   "Install a skill or plugin",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.New(app.Options{ConfigPath: *configPath, Pipeline: opts})
			if err != nil {
				return err
			}
			outcome, err := svc.Install(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch {
			case outcome.Skill != nil:
				r := outcome.Skill
				if err := print(*jsonOutput, r, installedLine(r)); err != nil {
					return err
				}
			case outcome.Batch != nil:
				b := outcome.Batch
				if err := print(*jsonOutput, b, batchLine(b)); err != nil {
					return err
				}
				if b.Failed > 0 {
					return &exitError{code: 1, msg: fmt.Sprintf("%d of %d skills failed", b.Failed, len(b.Results))}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.SkipVerify, "skip-verify", false, "skip manifest signature verification")
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "reinstall skills already present with a matching hash")
	cmd.Flags().BoolVar(&opts.Global, "global", true, "install into agents' global directories")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "verify only; write nothing")
	return cmd
}

func newUpdateCmd(configPath *string, jsonOutput *bool) *cobra.Command {
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Reinstall every locked skill whose registry hash changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.New(app.Options{ConfigPath: *configPath, Pipeline: opts})
			if err != nil {
				return err
			}
			res, err := svc.Pipeline.Update(cmd.Context())
			if err != nil {
				return err
			}
			text := "everything up to date"
			if len(res.Results) > 0 {
				text = batchLine(&res)
			}
			if err := print(*jsonOutput, res, text); err != nil {
				return err
			}
			if res.Failed > 0 {
				return &exitError{code: 1, msg: fmt.Sprintf("%d of %d updates failed", res.Failed, len(res.Results))}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.SkipVerify, "skip-verify", false, "skip manifest signature verification")
	cmd.Flags().BoolVar(&opts.Global, "global", true, "install into agents' global directories")
	return cmd
}

func newCheckCmd(configPath *string, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report locked skills whose registry hash changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.New(app.Options{ConfigPath: *configPath})
			if err != nil {
				return err
			}
			statuses, err := svc.Pipeline.Check(cmd.Context())
			if err != nil {
				return err
			}
			if *jsonOutput {
				return print(true, statuses, "")
			}
			if len(statuses) == 0 {
				fmt.Println("no skills installed")
				return nil
			}
			for _, st := range statuses {
				switch {
				case st.Missing:
					fmt.Printf("- %s %s (no longer available)\n", st.Slug, st.CurrentVersion)
				case st.HasUpdate && st.Downgrade:
					fmt.Printf("- %s %s -> %s (registry rollback)\n", st.Slug, st.CurrentVersion, st.LatestVersion)
				case st.HasUpdate:
					fmt.Printf("- %s %s -> %s\n", st.Slug, st.CurrentVersion, st.LatestVersion)
				default:
					fmt.Printf("- %s %s up to date\n", st.Slug, st.CurrentVersion)
				}
			}
			return nil
		},
	}
}

func newGenerateLockCmd(configPath *string, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-lock",
		Short: "Rebuild the lock file from the canonical store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.New(app.Options{ConfigPath: *configPath})
			if err != nil {
				return err
			}
			entries, missing, err := svc.Pipeline.GenerateLock(cmd.Context())
			if err != nil {
				return err
			}
			payload := map[string]any{"entries": entries, "missing": missing}
			text := fmt.Sprintf("locked %d skills", len(entries))
			if len(missing) > 0 {
				text += fmt.Sprintf(" (%d no longer available)", len(missing))
			}
			return print(*jsonOutput, payload, text)
		},
	}
}

func newListCmd(configPath *string, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List installed skills",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.New(app.Options{ConfigPath: *configPath})
			if err != nil {
				return err
			}
			entries := svc.List()
			if *jsonOutput {
				return print(true, entries, "")
			}
			if len(entries) == 0 {
				fmt.Println("no skills installed")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("- %s %s %s\n", e.Slug, e.Version, e.ZipHash)
			}
			return nil
		},
	}
}

func newDoctorCmd(configPath *string, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the local environment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.New(app.Options{ConfigPath: *configPath})
			if err != nil {
				return err
			}
			report := svc.Doctor.Run(cmd.Context())
			if *jsonOutput {
				if err := print(true, report, ""); err != nil {
					return err
				}
			} else if len(report.Findings) == 0 {
				fmt.Println("everything looks fine")
			} else {
				for _, f := range report.Findings {
					fmt.Printf("- [%s] %s: %s\n", f.Level, f.Code, f.Message)
				}
			}
			if !report.Healthy {
				return &exitError{code: 1, msg: "environment is not healthy"}
			}
			return nil
		},
	}
}

func installedLine(r *pipeline.InstallReport) string {
	if r.DryRun {
		return fmt.Sprintf("verified %s@%s (dry run)", r.Slug, r.Version)
	}
	line := fmt.Sprintf("installed %s@%s to %d agent(s)", r.Slug, r.Version, r.Fanout.SuccessCount)
	if r.Warning != "" {
		line += "\nwarning: " + r.Warning
	}
	return line
}

func batchLine(b *pipeline.BatchResult) string {
	if b.Planned > 0 {
		return fmt.Sprintf("%d verified (dry run), %d skipped, %d failed", b.Planned, b.Skipped, b.Failed)
	}
	return fmt.Sprintf("%d installed, %d skipped, %d failed", b.Success, b.Skipped, b.Failed)
}

func print(jsonOutput bool, payload any, text string) error {
	if jsonOutput {
		blob, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(blob))
		return nil
	}
	if text != "" {
		fmt.Println(text)
	}
	return nil
}
