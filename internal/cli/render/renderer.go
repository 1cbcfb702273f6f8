package render

import (
	"github.com/everest-dex/everest-deploy/internal/domain/models"
	"github.com/everest-dex/everest-deploy/internal/usecase"
)

type Renderer[T any] interface {
	Render(result T) error
}

var (
	_ Renderer[*models.DeploymentPlan]      = (*PlanRenderer)(nil)
	_ Renderer[*usecase.ListNetworksResult] = (*NetworksRenderer)(nil)
	_ Renderer[*usecase.ChargeBackResult]   = (*MigrateRenderer)(nil)
)
