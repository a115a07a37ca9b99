package implementation

import (
	"context"
	"errors"

	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/mapper"
	"agent-chat-be/internal/model"
	"agent-chat-be/internal/repository/contract"
	"agent-chat-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ThreadRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewThreadRepository(db *gorm.DB) contract.ThreadRepository {
	return &ThreadRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ThreadRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ThreadRepositoryImpl) Create(ctx context.Context, thread *entity.Thread) error {
	m := r.mapper.ThreadToModel(thread)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*thread = *r.mapper.ThreadToEntity(m)
	return nil
}

func (r *ThreadRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Thread{}, id).Error
}

func (r *ThreadRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Thread, error) {
	var m model.Thread
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ThreadToEntity(&m), nil
}

func (r *ThreadRepositoryImpl) FindOneWithSession(ctx context.Context, id uint) (*entity.Thread, error) {
	var m model.Thread
	err := r.db.WithContext(ctx).Preload("Session").Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ThreadToEntity(&m), nil
}

func (r *ThreadRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Thread, error) {
	var models []*model.Thread
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Thread, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ThreadToEntity(m)
	}
	return entities, nil
}

func (r *ThreadRepositoryImpl) UpdateTitle(ctx context.Context, id uint, title *string) error {
	return r.db.WithContext(ctx).Model(&model.Thread{}).Where("id = ?", id).Update("title", title).Error
}
