// File: cmd/run.go
package cmd

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tanvirb/websight-cli/internal/agent"
	"github.com/tanvirb/websight-cli/internal/browser"
	"github.com/tanvirb/websight-cli/internal/llmclient"
	"github.com/tanvirb/websight-cli/internal/observability"
	"github.com/tanvirb/websight-cli/internal/oracle"
	"github.com/tanvirb/websight-cli/internal/reporting"
)

// errTaskNotCompleted distinguishes "the agent gave up" from wiring failures
// so the process exits non-zero either way but with a clear message.
var errTaskNotCompleted = errors.New("task was not completed")

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run \"task description\"",
		Short: "Runs the agent until the task completes or the iteration budget runs out",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags onto their viper keys so CLI overrides win over the
			// config file and environment.
			if err := viper.BindPFlag("agent.max_iterations", cmd.Flags().Lookup("max-iters")); err != nil {
				return err
			}
			if err := viper.BindPFlag("agent.start_url", cmd.Flags().Lookup("start-url")); err != nil {
				return err
			}
			if err := viper.BindPFlag("agent.output_dir", cmd.Flags().Lookup("output")); err != nil {
				return err
			}
			return viper.BindPFlag("agent.save_screenshots", cmd.Flags().Lookup("save-screenshots"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()
			task := args[0]

			// Re-unmarshal so the PreRunE flag bindings take effect.
			if err := viper.Unmarshal(cfg); err != nil {
				return fmt.Errorf("failed to apply flag overrides: %w", err)
			}
			if showBrowser, _ := cmd.Flags().GetBool("show-browser"); showBrowser {
				cfg.Browser.Headless = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger.Info("Running task",
				zap.String("task", task),
				zap.Int("max_iterations", cfg.Agent.MaxIterations),
				zap.String("provider", cfg.LLM.Provider),
			)

			// Oracle side: provider client behind the tier router.
			router, err := llmclient.NewRouterFromConfig(cfg.LLM, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize LLM client: %w", err)
			}
			mind, err := oracle.New(router, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize oracle: %w", err)
			}

			// Actuator side: one Chrome tab for the whole session.
			tab, err := browser.New(ctx, cfg.Browser, logger)
			if err != nil {
				return fmt.Errorf("failed to launch browser: %w", err)
			}
			defer tab.Close()

			if cfg.Agent.StartURL != "" {
				if err := tab.Navigate(ctx, cfg.Agent.StartURL); err != nil {
					return fmt.Errorf("failed to open start page: %w", err)
				}
			}

			runner, err := agent.New(mind, tab, cfg.Agent.MaxIterations, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize agent: %w", err)
			}

			transcript, err := reporting.NewTranscript(cfg.Agent.OutputDir, uuid.New().String(), cfg.Agent.SaveScreenshots, logger)
			if err != nil {
				return fmt.Errorf("failed to prepare run directory: %w", err)
			}
			runner.SetIterationHook(transcript.Hook())

			sess, res := runner.Run(ctx, task)

			if err := transcript.Finalize(sess, res); err != nil {
				logger.Warn("Failed to write transcript", zap.Error(err))
			} else {
				logger.Info("Run artifacts saved", zap.String("dir", transcript.RunDir()))
			}

			switch res.Status {
			case agent.StatusCompleted:
				fmt.Printf("\nResult: %s\n", res.Summary)
				return nil
			case agent.StatusNotCompleted:
				fmt.Printf("\n%s (session %s)\n", res.Summary, sess.ID)
				return errTaskNotCompleted
			default:
				return errors.New(res.Summary)
			}
		},
	}

	runCmd.Flags().IntP("max-iters", "n", 0, "Maximum loop iterations. (Overrides config/env)")
	runCmd.Flags().String("start-url", "", "URL to open before the first iteration. (Overrides config/env)")
	runCmd.Flags().StringP("output", "o", "", "Directory for run transcripts. (Overrides config/env)")
	runCmd.Flags().Bool("save-screenshots", false, "Persist each iteration's screenshot into the run directory.")
	runCmd.Flags().Bool("show-browser", false, "Run Chrome with a visible window.")

	return runCmd
}
