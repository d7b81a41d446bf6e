package handler

import (
	"github.com/undarez/camper-splatchs-sub001/config"
	"github.com/undarez/camper-splatchs-sub001/internal/service"
)

// Handler aggregate entry point of all handlers
type Handler struct {
	Auth    *AuthHandler
	Station *StationHandler
	Review  *ReviewHandler
	Admin   *AdminHandler
	Export  *ExportHandler
}

// NewHandler creates the Handler aggregate
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth, &cfg.Auth),
		Station: NewStationHandler(svc.Station),
		Review:  NewReviewHandler(svc.Review),
		Admin:   NewAdminHandler(svc.Validation),
		Export:  NewExportHandler(svc.Export),
	}
}
