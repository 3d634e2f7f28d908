package handlers

import (
	"github.com/qondlabs/qad-assistant/internal/analytics"
	"github.com/qondlabs/qad-assistant/internal/auth"
	"github.com/qondlabs/qad-assistant/internal/config"
	"github.com/qondlabs/qad-assistant/internal/kpi"
	"github.com/qondlabs/qad-assistant/internal/store/rabbitmq"
	"github.com/qondlabs/qad-assistant/internal/store/redisstore"
	"github.com/qondlabs/qad-assistant/internal/workflow"
)

type Handler struct {
	Cfg       config.Config
	Creds     *auth.Credentials
	Analytics *analytics.Service
	Workflow  *workflow.Client
	KPI       *kpi.Service

	// Optional collaborators; nil disables the feature (async KPI jobs,
	// login throttle).
	Rabbit *rabbitmq.Publisher
	Redis  *redisstore.Store
}

func NewHandler(
	cfg config.Config,
	creds *auth.Credentials,
	analyticsSvc *analytics.Service,
	workflowClient *workflow.Client,
	kpiSvc *kpi.Service,
	rabbit *rabbitmq.Publisher,
	rds *redisstore.Store,
) *Handler {
	return &Handler{
		Cfg:       cfg,
		Creds:     creds,
		Analytics: analyticsSvc,
		Workflow:  workflowClient,
		KPI:       kpiSvc,
		Rabbit:    rabbit,
		Redis:     rds,
	}
}
