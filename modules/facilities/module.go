package facilities

import (
	"embed"
	"io/fs"

	"github.com/opsfabric/premise/modules/facilities/infrastructure/persistence"
	"github.com/opsfabric/premise/modules/facilities/presentation/controllers"
	"github.com/opsfabric/premise/modules/facilities/services"
	"github.com/opsfabric/premise/pkg/application"
)

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	locationRepo := persistence.NewLocationRepository()
	mappingRepo := persistence.NewMappingRepository()

	app.RegisterServices(
		services.NewLocationService(locationRepo),
		services.NewMappingService(mappingRepo, app.EventPublisher()),
	)
	app.RegisterControllers(
		controllers.NewFacilitiesAPIController(app),
	)

	schema, err := fs.Sub(migrationFiles, "infrastructure/persistence/schema")
	if err != nil {
		return err
	}
	app.Migrations().RegisterSchema(schema)
	return nil
}

func (m *Module) Name() string {
	return "facilities"
}
