package controller

import (
	appcontext "github.com/notifero/mail-service/internal/app_context"
)

type baseController struct {
	app *appcontext.Application
}

type Controller struct {
	Index *IndexController
	Mail  *MailController
}

func newBaseController(app *appcontext.Application) *baseController {
	return &baseController{app: app}
}

func NewController(app *appcontext.Application) *Controller {
	bc := newBaseController(app)

	return &Controller{
		Index: &IndexController{baseController: bc},
		Mail:  &MailController{baseController: bc},
	}
}
