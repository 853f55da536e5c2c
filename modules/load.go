package modules

import (
	"slices"

	"github.com/opsfabric/premise/modules/facilities"
	"github.com/opsfabric/premise/pkg/application"
)

var BuiltInModules = []application.Module{
	facilities.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	modules := slices.Concat(BuiltInModules, externalModules)
	return application.Load(app, modules...)
}
