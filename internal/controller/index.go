package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/notifero/mail-service/internal/constant"
	"github.com/notifero/mail-service/internal/util"
)

type IndexController struct {
	*baseController
}

func (ic IndexController) Index(ctx *gin.Context) {
	util.ResponseSuccess(ctx, gin.H{
		"service": constant.APP_NAME,
		"env":     ic.app.Config.ENV,
	})
}
