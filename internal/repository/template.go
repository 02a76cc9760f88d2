package repository

import (
	"context"

	"github.com/notifero/mail-service/internal/constant"
	"github.com/notifero/mail-service/internal/model"
)

type TemplateRepository struct {
	*baseRepository
}

// GetByName looks a template up by its unique catalog name. Returns
// gorm.ErrRecordNotFound when the catalog has no such template.
func (tr TemplateRepository) GetByName(ctx context.Context, name string) (*model.Template, error) {
	tr.logger.Debugf("Get template by name: %s \n", name)

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var template model.Template
	if err := tr.db.WithContext(ctx).Model(&model.Template{}).Where(&model.Template{
		Name: name,
	}).First(&template).Error; err != nil {
		return nil, err
	}

	return &template, nil
}
