package route

import (
	"github.com/gin-gonic/gin"
	"github.com/notifero/mail-service/internal/controller"
)

func V1_Mail(r *gin.RouterGroup, mailController *controller.MailController) {
	v1 := r.Group("/v1/mail")
	{
		v1.POST("/send", mailController.SendMail)
		v1.POST("/feed", mailController.SendFeedMail)
		v1.POST("/validate", mailController.ValidateTemplate)
	}
}
