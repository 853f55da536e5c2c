package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/opsfabric/premise/modules/facilities/domain/location"
	"github.com/opsfabric/premise/modules/facilities/services"
	"github.com/opsfabric/premise/pkg/composables"
	"github.com/opsfabric/premise/pkg/formflow"
)

// seedTree is a small demo campus covering every level of the hierarchy.
var seedTree = []struct {
	name   string
	level  formflow.Level
	parent string // name of the parent entry, "" for sites
}{
	{"Riverside Campus", formflow.LevelSite, ""},
	{"Harbor Campus", formflow.LevelSite, ""},
	{"North Block", formflow.LevelBuilding, "Riverside Campus"},
	{"South Block", formflow.LevelBuilding, "Riverside Campus"},
	{"Pier House", formflow.LevelBuilding, "Harbor Campus"},
	{"West Wing", formflow.LevelWing, "North Block"},
	{"East Wing", formflow.LevelWing, "North Block"},
	{"Assembly Area", formflow.LevelArea, "West Wing"},
	{"Storage Area", formflow.LevelArea, "West Wing"},
	{"Ground Floor", formflow.LevelFloor, "Assembly Area"},
	{"First Floor", formflow.LevelFloor, "Assembly Area"},
	{"Room 101", formflow.LevelRoom, "Ground Floor"},
	{"Room 102", formflow.LevelRoom, "Ground Floor"},
}

func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with a demo location tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			app, pool, err := loadApp(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			ctx = composables.WithPool(ctx, pool)
			locationService := app.Service(services.LocationService{}).(*services.LocationService)

			ids := make(map[string]uuid.UUID, len(seedTree))
			for _, entry := range seedTree {
				loc := &location.Location{
					Name:  entry.name,
					Level: entry.level,
				}
				if entry.parent != "" {
					parentID := ids[entry.parent]
					loc.ParentID = &parentID
				}
				id, err := locationService.Create(ctx, loc)
				if err != nil {
					return err
				}
				ids[entry.name] = id
			}
			app.Logger().Infof("seeded %d locations", len(seedTree))
			return nil
		},
	}
}
