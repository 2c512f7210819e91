package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jengzang/patroliq-backend-go/internal/config"
	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/registry"
	"github.com/jengzang/patroliq-backend-go/internal/repository"
	"github.com/jengzang/patroliq-backend-go/internal/service"
)

var (
	hotspotsDistrict string
	hotspotsJSON     bool
)

var hotspotsCmd = &cobra.Command{
	Use:   "hotspots",
	Short: "Print the highest-risk (geo, temporal) cluster cells",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg, db, err := setup(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		svc := service.NewPatrolService(repository.NewIncidentRepository(db), registry.New(db, nil), service.PatrolConfig{
			GeoModel:  cfg.GeoModel,
			TempModel: cfg.TempModel,
			Hotspot:   cfg.Hotspot,
		}, nil)

		resp, err := svc.Hotspots(ctx, models.HotspotQuery{
			IncidentFilter: models.IncidentFilter{District: hotspotsDistrict},
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if hotspotsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RANK\tGEO\tTEMP\tCOUNT\tLAT\tLON\tGEO_RISK\tTEMP_RISK\tFINAL_RISK")
		for i, c := range resp.Hotspots {
			fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.5f\t%.5f\t%.3f\t%.3f\t%.3f\n",
				i+1, c.GeoCluster, c.TempCluster, c.CrimeCount, c.MeanLatitude, c.MeanLongitude,
				c.GeoRisk, c.TempRisk, c.FinalRisk)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d of %d cells from %d incidents\n", resp.Count, resp.TotalCells, resp.RecordCount)
		return nil
	},
}

func init() {
	flags := hotspotsCmd.Flags()
	flags.Int("top-n", 10, "number of cells to print")
	flags.Int("sample", 10000, "random sample size, 0 for all incidents")
	flags.Int64("seed", 42, "sampling seed")
	flags.Bool("exclude-noise", false, "drop incidents labelled as spatial noise")
	flags.StringVar(&hotspotsDistrict, "district", "", "restrict to one police district")
	flags.BoolVar(&hotspotsJSON, "json", false, "print JSON instead of a table")

	bindFlags(hotspotsCmd, false, map[string]string{
		config.KeyHotspotTopN:         "top-n",
		config.KeyHotspotSampleSize:   "sample",
		config.KeyHotspotSampleSeed:   "seed",
		config.KeyHotspotExcludeNoise: "exclude-noise",
	})
}
