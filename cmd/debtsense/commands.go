package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/debtsense/internal/config"
	"github.com/jask/debtsense/internal/database/repository"
	"github.com/jask/debtsense/internal/interest"
	"github.com/jask/debtsense/internal/service"
	"github.com/jask/debtsense/internal/testdata"
	"github.com/jask/debtsense/internal/tui"
)

func newDetectCmd() *cobra.Command {
	var review bool
	var defaultAPR float64
	var postingDay int

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Scan accounts for likely loans and credit lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()
			ctx := cmd.Context()

			candidates, err := e.detector.Detect(ctx)
			if err != nil {
				return err
			}
			if !review {
				fmt.Print(tui.RenderCandidates(candidates, e.cfg.UI.CurrencySymbol))
				return nil
			}
			if len(candidates) == 0 {
				fmt.Println("No debt candidates found.")
				return nil
			}

			model := tui.NewReview(candidates, e.cfg.UI.CurrencySymbol)
			if _, err := tea.NewProgram(model).Run(); err != nil {
				return err
			}
			accepted := model.Accepted()
			if len(accepted) == 0 {
				fmt.Println("Nothing selected.")
				return nil
			}

			categoryID, err := e.categories.EnsureByName(ctx, e.cfg.Interest.CategoryName)
			if err != nil {
				return err
			}
			for _, c := range accepted {
				apr := defaultAPR
				if c.EstimatedAPR != nil {
					apr = *c.EstimatedAPR
				}
				params := repository.DebtParams{
					DebtType:             string(c.SuggestedType),
					APR:                  apr,
					InterestScheme:       e.cfg.Interest.DefaultScheme,
					CompoundingFrequency: "monthly",
					InterestPostingDay:   postingDay,
				}
				if _, err := e.debts.Enable(ctx, c.AccountID, params, categoryID); err != nil {
					return fmt.Errorf("enable %s: %w", c.AccountName, err)
				}
				fmt.Printf("Converted %s (%s, %.2f%% APR)\n", c.AccountName, c.SuggestedType, apr)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&review, "review", false, "interactively confirm candidates and convert them")
	cmd.Flags().Float64Var(&defaultAPR, "apr", 0, "APR to use for converted accounts without an estimate")
	cmd.Flags().IntVar(&postingDay, "posting-day", 0, "day of month to post interest (0 = last day)")
	return cmd
}

func newAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List accounts with debt metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()
			ctx := cmd.Context()

			accounts, err := e.accounts.List(ctx)
			if err != nil {
				return err
			}
			balances := make(map[string]int64, len(accounts))
			for _, a := range accounts {
				b, err := e.transactions.BalanceCents(ctx, a.ID)
				if err != nil {
					return err
				}
				balances[a.ID] = b
			}
			fmt.Print(tui.RenderAccounts(accounts, balances, e.cfg.UI.CurrencySymbol))
			return nil
		},
	}
}

func newEnableCmd() *cobra.Command {
	var debtType, scheme, compounding string
	var apr float64
	var postingDay int

	cmd := &cobra.Command{
		Use:   "enable <account-id>",
		Short: "Mark an account as debt and schedule interest postings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()
			ctx := cmd.Context()

			categoryID, err := e.categories.EnsureByName(ctx, e.cfg.Interest.CategoryName)
			if err != nil {
				return err
			}
			scheduleID, err := e.debts.Enable(ctx, args[0], repository.DebtParams{
				DebtType:             debtType,
				APR:                  apr,
				InterestScheme:       string(interest.ParseScheme(scheme)),
				CompoundingFrequency: compounding,
				InterestPostingDay:   postingDay,
			}, categoryID)
			if err != nil {
				return err
			}
			fmt.Printf("Interest schedule %s active.\n", scheduleID)
			return nil
		},
	}
	cmd.Flags().StringVar(&debtType, "type", string(service.DebtPersonalLoan), "debt type")
	cmd.Flags().Float64Var(&apr, "apr", 0, "annual percentage rate")
	cmd.Flags().StringVar(&scheme, "scheme", string(interest.SchemeCompoundMonthly), "interest scheme")
	cmd.Flags().StringVar(&compounding, "compounding", "monthly", "compounding frequency (informational)")
	cmd.Flags().IntVar(&postingDay, "posting-day", 0, "day of month to post interest (0 = last day)")
	return cmd
}

func newDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <account-id>",
		Short: "Clear the debt flag and remove the interest schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()
			return e.debts.Disable(cmd.Context(), args[0])
		},
	}
}

func newPostCmd() *cobra.Command {
	var apr float64
	var scheme, dateStr string

	cmd := &cobra.Command{
		Use:   "post <account-id>",
		Short: "Post one interest charge now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()
			ctx := cmd.Context()

			account, err := e.accounts.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if account == nil {
				return fmt.Errorf("account %s not found", args[0])
			}
			// Flags override stored metadata.
			if apr == 0 && account.APR != nil {
				apr = *account.APR
			}
			if scheme == "" {
				scheme = account.InterestScheme
			}
			var date time.Time
			if dateStr != "" {
				date, err = time.Parse("2006-01-02", dateStr)
				if err != nil {
					return fmt.Errorf("parse --date: %w", err)
				}
			}
			categoryID, err := e.categories.EnsureByName(ctx, e.cfg.Interest.CategoryName)
			if err != nil {
				return err
			}
			txID, err := e.poster.Post(ctx, account.ID, service.PostParams{
				APR:                  apr,
				Scheme:               interest.ParseScheme(scheme),
				CompoundingFrequency: account.CompoundingFrequency,
				CategoryID:           categoryID,
				Date:                 date,
			})
			if errors.Is(err, service.ErrNothingToPost) {
				return fmt.Errorf("%s: zero balance or zero APR", err)
			}
			if err != nil {
				return err
			}
			fmt.Printf("Posted interest transaction %s.\n", txID)
			return nil
		},
	}
	cmd.Flags().Float64Var(&apr, "apr", 0, "APR override (defaults to the account's stored APR)")
	cmd.Flags().StringVar(&scheme, "scheme", "", "scheme override (defaults to the account's stored scheme)")
	cmd.Flags().StringVar(&dateStr, "date", "", "posting date (YYYY-MM-DD, defaults to today)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import transactions from a CSV export",
		Long: `Import transactions from a CSV export.

Rows are: date, amount, payee, category, notes, account. Amounts are dollars
with an optional minus. The account column may be omitted when --account is
given. Rows already present are skipped, so re-importing is safe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			res, err := e.importer.ImportCSV(cmd.Context(), f, account)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d, skipped %d duplicate(s).\n", res.Imported, res.Skipped)
			for _, rowErr := range res.Errors {
				fmt.Fprintln(os.Stderr, "warning:", rowErr)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "account for rows without an account column")
	return cmd
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Seed a sample ledger to try detection against",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			err = testdata.Seed(cmd.Context(), testdata.Repos{
				Accounts:     e.accounts,
				Payees:       e.payees,
				Categories:   e.categories,
				Transactions: e.transactions,
			})
			if err != nil {
				return err
			}
			fmt.Println("Sample ledger seeded. Try: debtsense detect")
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Printf("database.path         = %s\n", cfg.Database.Path)
			fmt.Printf("interest.category     = %s\n", cfg.Interest.CategoryName)
			fmt.Printf("interest.scheme       = %s\n", cfg.Interest.DefaultScheme)
			fmt.Printf("interest.apr          = %.2f\n", cfg.Interest.DefaultAPR)
			fmt.Printf("ui.currency_symbol    = %s\n", cfg.UI.CurrencySymbol)
			fmt.Printf("log.level             = %s\n", cfg.Log.Level)
			if write {
				if err := config.Save(cfg); err != nil {
					return err
				}
				fmt.Println("Configuration written.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write the effective configuration to the config file")
	return cmd
}

func newResetCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all ledger data, keeping the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("refusing to wipe data without --yes")
			}
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			if err := e.maintenance.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("All data deleted.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm deletion")
	return cmd
}

func newRunCmd() *cobra.Command {
	var asOfStr string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Post interest for every schedule that is due",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			defer e.close()

			asOf := time.Now().UTC()
			if asOfStr != "" {
				asOf, err = time.Parse("2006-01-02", asOfStr)
				if err != nil {
					return fmt.Errorf("parse --as-of: %w", err)
				}
			}
			posted, err := e.runner.RunDue(cmd.Context(), asOf)
			if err != nil {
				return err
			}
			fmt.Printf("Posted %d interest charge(s).\n", posted)
			return nil
		},
	}
	cmd.Flags().StringVar(&asOfStr, "as-of", "", "treat this date as today (YYYY-MM-DD)")
	return cmd
}
