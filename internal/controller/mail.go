package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/notifero/mail-service/internal/service"
	"github.com/notifero/mail-service/internal/util"
)

type MailController struct {
	*baseController
}

// SendMail accepts one mail request and always acknowledges it; delivery
// failures surface on the error channel, not here.
func (mc MailController) SendMail(ctx *gin.Context) {
	var req service.MailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid mail request", err, nil)
		return
	}

	out := mc.app.Sender.ProcessMail(ctx.Request.Context(), req)

	util.ResponseSuccess(ctx, out)
}

// SendFeedMail accepts the feed-ingestion request shape, whose sender
// address overrides the configured one.
func (mc MailController) SendFeedMail(ctx *gin.Context) {
	var req service.FeedMailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid feed mail request", err, nil)
		return
	}

	out := mc.app.Sender.ProcessFeedMail(ctx.Request.Context(), req)

	util.ResponseSuccess(ctx, out)
}

// ValidateTemplate runs a strict pre-flight merge of a stored template
// against its default field schema.
func (mc MailController) ValidateTemplate(ctx *gin.Context) {
	var req service.ValidateTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid validate request", err, nil)
		return
	}

	if err := mc.app.Sender.ValidateTemplate(ctx.Request.Context(), req.Template); err != nil {
		util.ResponseFailed(ctx, http.StatusUnprocessableEntity, "Template validation failed", err, gin.H{
			"template": req.Template,
		})
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"template": req.Template,
		"valid":    true,
	})
}
