package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dedirosandiaj/problem-log-new/internal/repository"
	"github.com/dedirosandiaj/problem-log-new/internal/service"
)

// NewLocationsCommand exchanges terminal sites as CSV.
func NewLocationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Import or export terminal locations",
	}

	importCmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import locations from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			return withLocations(cmd, func(locations *service.LocationService) error {
				result, err := locations.Import(cmd.Context(), systemActor, file)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "imported %d locations\n", result.Success)
				for _, s := range result.Skipped {
					fmt.Fprintf(out, "skipped duplicate: %s\n", s)
				}
				return nil
			})
		},
	}

	var outPath string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export every location as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withLocations(cmd, func(locations *service.LocationService) error {
				var buf bytes.Buffer
				filename, err := locations.Export(cmd.Context(), systemActor, &buf)
				if err != nil {
					return err
				}
				if outPath == "" {
					_, err = cmd.OutOrStdout().Write(buf.Bytes())
					return err
				}
				if outPath == "." {
					outPath = filename
				}
				if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", outPath)
				return nil
			})
		},
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", `Output file; "." uses the dated default name; stdout when empty`)

	cmd.AddCommand(importCmd, exportCmd)
	return cmd
}

func withLocations(cmd *cobra.Command, fn func(*service.LocationService) error) error {
	rt, err := bootstrap(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer rt.close()
	if err := rt.requireDatabase(); err != nil {
		return err
	}
	activity := service.NewActivityService(repository.NewActivityRepository(rt.redis.Client), rt.logger, nil)
	return fn(service.NewLocationService(repository.NewLocationRepository(rt.pg.PoolHandle()), activity))
}
