package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dcreceiving/internal/config"
	"dcreceiving/internal/domain/auth"
	"dcreceiving/internal/domain/inventory"
)

var (
	seedFile          string
	seedAdminUser     string
	seedAdminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin operator and load a YAML hierarchy fixture",
	Long: `seed creates the admin operator if it does not exist yet and, when --file is
given, loads projects, orders, delivery notes and equipment from a YAML fixture
into the relational store.

Example:
  receiving seed --file fixtures/sample.yaml --admin-user admin`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "YAML fixture to load")
	seedCmd.Flags().StringVar(&seedAdminUser, "admin-user", "admin", "username of the admin operator")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "", "admin password (defaults to $SEED_ADMIN_PASSWORD)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if seedFile != "" && cfg.StoreDriver != config.StoreGorm {
		return errors.New("seed --file needs STORE_DRIVER=gorm; the memory store loads FIXTURE_PATH at startup")
	}

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	password := seedAdminPassword
	if password == "" {
		password = os.Getenv("SEED_ADMIN_PASSWORD")
	}
	if password == "" {
		return errors.New("admin password is required (--admin-password or SEED_ADMIN_PASSWORD)")
	}

	authService := auth.NewService(auth.NewRepository(db), nil)
	op, created, err := authService.EnsureOperator(ctx, auth.CreateOperatorRequest{
		Username:    seedAdminUser,
		DisplayName: "Administrator",
		Password:    password,
		Role:        auth.RoleAdmin,
	})
	if err != nil {
		return err
	}
	logger.Info("admin operator", zap.String("username", op.Username), zap.Bool("created", created))

	if seedFile == "" {
		return nil
	}
	fixture, err := inventory.LoadFixtureFile(seedFile)
	if err != nil {
		return err
	}
	counts, err := fixture.Apply(ctx, inventory.NewService(inventory.NewGormStore(db)))
	if err != nil {
		return err
	}
	logger.Info("fixture loaded",
		zap.String("file", seedFile),
		zap.Int("projects", counts.Projects),
		zap.Int("orders", counts.Orders),
		zap.Int("delivery_notes", counts.DeliveryNotes),
		zap.Int("equipment", counts.Equipment),
	)
	return nil
}
