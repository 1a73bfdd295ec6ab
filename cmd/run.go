package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Solarpaletten/dashkavisa/internal/artifacts"
	"github.com/Solarpaletten/dashkavisa/internal/bot"
	"github.com/Solarpaletten/dashkavisa/internal/browser"
	"github.com/Solarpaletten/dashkavisa/internal/config"
	"github.com/Solarpaletten/dashkavisa/internal/observability"
	"github.com/Solarpaletten/dashkavisa/internal/runner"
)

var (
	watchFlag    bool
	bookDateFlag string
)

func buildRunner() (*runner.Runner, error) {
	cfg := config.Get()
	log := observability.GetLogger()

	store, err := artifacts.New(cfg.Artifacts.Dir, cfg.Bot.UsersDir, log)
	if err != nil {
		return nil, fmt.Errorf("creating artifacts store: %w", err)
	}
	manager := browser.NewManager(log, cfg)
	return runner.New(log, cfg, manager, store), nil
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the portal for available appointment slots.",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := buildRunner()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		cfg := config.Get()
		log := observability.GetLogger()

		for {
			res, err := r.CheckSlots(ctx)
			switch {
			case err != nil:
				if !watchFlag {
					return err
				}
				log.Error("Slot check failed", zap.Error(err))
			case res.Failed():
				if !watchFlag {
					return fmt.Errorf("slot check failed: %s", res.Reason)
				}
				log.Error("Slot check failed", zap.String("reason", res.Reason))
			case res.None():
				fmt.Println("No slots available.")
			default:
				fmt.Println("Available dates:")
				for _, d := range res.Dates {
					fmt.Printf("  %s\n", d)
				}
			}

			if !watchFlag {
				return nil
			}
			log.Info("Next check scheduled", zap.Duration("interval", cfg.Check.Interval))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Check.Interval):
			}
		}
	},
}

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Log in, find a slot and book an appointment.",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := buildRunner()
		if err != nil {
			return err
		}
		msg, err := r.Book(cmd.Context(), bookDateFlag)
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a portal account, or verify the configured one.",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := buildRunner()
		if err != nil {
			return err
		}
		res := r.Register(cmd.Context(), 0)
		if !res.Success {
			return fmt.Errorf("%s", res.Message)
		}
		fmt.Printf("Email: %s\nPassword: %s\n%s\n", res.Email, res.Password, res.Message)
		return nil
	},
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the telegram bot until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := buildRunner()
		if err != nil {
			return err
		}
		b, err := bot.New(observability.GetLogger(), config.Get(), r)
		if err != nil {
			return err
		}
		return b.Run(cmd.Context())
	},
}

func init() {
	checkCmd.Flags().BoolVar(&watchFlag, "watch", false, "keep checking at the configured interval")
	bookCmd.Flags().StringVar(&bookDateFlag, "date", "", "preferred date; first available when empty")
}
