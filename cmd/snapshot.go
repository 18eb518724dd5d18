package cmd

import (
	"fmt"

	"region-sync/core/storage"
	"region-sync/feature/snapshot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export and restore region snapshots",
	Long:  `Copies the regions of a world between MongoDB and the snapshot bucket.`,
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export <world>",
	Short: "Write the stored regions of a world to a new snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshots(cmd, func(svc *snapshot.Service, logg *zap.Logger) error {
			res, err := svc.Export(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			fmt.Printf("Exported %d regions to %s\n", res.Regions, res.Object)
			for _, name := range res.Pruned {
				fmt.Printf("Pruned %s\n", name)
			}
			return nil
		})
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import <world> <object>",
	Short: "Upsert the regions of a snapshot into a world",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshots(cmd, func(svc *snapshot.Service, logg *zap.Logger) error {
			res, err := svc.Import(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			fmt.Printf("Imported %d regions from %s (%d skipped)\n", res.Regions, res.Object, res.Skipped)
			return nil
		})
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list <world>",
	Short: "List the snapshots of a world",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSnapshots(cmd, func(svc *snapshot.Service, logg *zap.Logger) error {
			names, err := svc.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			logg.Debug("Listed snapshots", zap.Int("count", len(names)))
			return nil
		})
	},
}

func withSnapshots(cmd *cobra.Command, fn func(*snapshot.Service, *zap.Logger) error) error {
	env, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer env.Close(cmd.Context())

	client, err := storage.NewClient(env.cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}
	return fn(snapshot.NewService(client, env.cfg.Storage, env.driver, nil, env.logger), env.logger)
}

func init() {
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotImportCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	RootCmd.AddCommand(snapshotCmd)
}
