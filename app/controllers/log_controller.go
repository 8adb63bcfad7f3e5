package controllers

import (
	"github.com/shashiranjanraj/paintpos/app/services"
	"github.com/shashiranjanraj/paintpos/pkg/ctx"
)

type LogController struct {
	logs *services.LogService
}

func NewLogController(logs *services.LogService) *LogController {
	return &LogController{logs: logs}
}

func (l *LogController) Index(c *ctx.Context) {
	logs, err := l.logs.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(logs)
}

func (l *LogController) Destroy(c *ctx.Context) {
	if err := l.logs.Delete(c.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Message("Log deleted")
}
