package controllers

import (
	"github.com/shashiranjanraj/paintpos/app/services"
	"github.com/shashiranjanraj/paintpos/pkg/ctx"
)

type DashboardController struct {
	dashboard *services.DashboardService
}

func NewDashboardController(dashboard *services.DashboardService) *DashboardController {
	return &DashboardController{dashboard: dashboard}
}

func (d *DashboardController) Show(c *ctx.Context) {
	summary, err := d.dashboard.Summary(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(summary)
}
