package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jask/debtsense/internal/config"
	"github.com/jask/debtsense/internal/database"
	"github.com/jask/debtsense/internal/database/repository"
	"github.com/jask/debtsense/internal/logging"
	"github.com/jask/debtsense/internal/service"
)

// env holds everything the commands need, wired once per invocation.
type env struct {
	cfg config.Config
	log *logrus.Logger
	db  *sql.DB

	accounts     *repository.AccountRepo
	transactions *repository.TransactionRepo
	payees       *repository.PayeeRepo
	categories   *repository.CategoryRepo

	detector    *service.DebtDetector
	schedules   *service.ScheduleManager
	poster      *service.InterestPoster
	debts       *service.DebtService
	runner      *service.ScheduleRunner
	importer    *service.ImportService
	maintenance *service.MaintenanceService
}

func newEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log := logging.New(cfg.Log.Level)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := database.SeedDefaults(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	e := &env{cfg: cfg, log: log, db: db}
	e.accounts = repository.NewAccountRepo(db)
	e.transactions = repository.NewTransactionRepo(db)
	e.payees = repository.NewPayeeRepo(db)
	e.categories = repository.NewCategoryRepo(db)

	e.detector = &service.DebtDetector{Accounts: e.accounts, Transactions: e.transactions, Log: log}
	e.schedules = &service.ScheduleManager{DB: db, Log: log}
	e.poster = &service.InterestPoster{Transactions: e.transactions, Payees: e.payees, Log: log}
	e.debts = &service.DebtService{DB: db, Accounts: e.accounts, Schedules: e.schedules, Log: log}
	e.runner = &service.ScheduleRunner{DB: db, Accounts: e.accounts, Poster: e.poster, Log: log}
	e.importer = &service.ImportService{
		Transactions: e.transactions,
		Payees:       e.payees,
		Categories:   e.categories,
		Accounts:     e.accounts,
		Log:          log,
	}
	e.maintenance = &service.MaintenanceService{DB: db}
	return e, nil
}

func (e *env) close() {
	if e.db != nil {
		_ = e.db.Close()
	}
}

func main() {
	root := &cobra.Command{
		Use:           "debtsense",
		Short:         "Detect likely debt accounts and automate interest accrual",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newDetectCmd(),
		newAccountsCmd(),
		newEnableCmd(),
		newDisableCmd(),
		newPostCmd(),
		newRunCmd(),
		newImportCmd(),
		newDemoCmd(),
		newResetCmd(),
		newConfigCmd(),
	)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
