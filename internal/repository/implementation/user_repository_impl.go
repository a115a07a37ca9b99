package implementation

import (
	"context"
	"errors"
	"time"

	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/mapper"
	"agent-chat-be/internal/model"
	"agent-chat-be/internal/repository/contract"
	"agent-chat-be/internal/repository/specification"

	"gorm.io/gorm"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	m := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var m model.User
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&m), nil
}

func (r *UserRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.User{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UserRepositoryImpl) UpdatePassword(ctx context.Context, userId uint, hash string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userId).
		Updates(map[string]interface{}{
			"password_hash": hash,
			"updated_at":    time.Now(),
		}).Error
}

func (r *UserRepositoryImpl) MarkVerified(ctx context.Context, userId uint) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userId).
		Updates(map[string]interface{}{
			"is_verified": true,
			"updated_at":  time.Now(),
		}).Error
}

// Verification token ledger

func (r *UserRepositoryImpl) CreateVerificationToken(ctx context.Context, token *entity.EmailVerificationToken) error {
	m := r.mapper.VerificationTokenToModel(token)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*token = *r.mapper.VerificationTokenToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) FindVerificationToken(ctx context.Context, specs ...specification.Specification) (*entity.EmailVerificationToken, error) {
	var m model.EmailVerificationToken
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.VerificationTokenToEntity(&m), nil
}

// ConsumeVerificationToken is a conditional UPDATE so that two concurrent
// redemption attempts cannot both succeed.
func (r *UserRepositoryImpl) ConsumeVerificationToken(ctx context.Context, token string, now time.Time) (*entity.EmailVerificationToken, error) {
	res := r.db.WithContext(ctx).Model(&model.EmailVerificationToken{}).
		Where("token = ? AND used_at IS NULL AND expires_at > ?", token, now).
		Update("used_at", now)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindVerificationToken(ctx, specification.ByToken{Token: token})
}

func (r *UserRepositoryImpl) DeleteExpiredVerificationTokens(ctx context.Context, now time.Time) (int64, error) {
	res := r.applySpecifications(r.db.WithContext(ctx), specification.ExpiredBefore{Now: now}).
		Delete(&model.EmailVerificationToken{})
	return res.RowsAffected, res.Error
}

// Reset token ledger

func (r *UserRepositoryImpl) CreateResetToken(ctx context.Context, token *entity.PasswordResetToken) error {
	m := r.mapper.ResetTokenToModel(token)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*token = *r.mapper.ResetTokenToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) FindResetToken(ctx context.Context, specs ...specification.Specification) (*entity.PasswordResetToken, error) {
	var m model.PasswordResetToken
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ResetTokenToEntity(&m), nil
}

func (r *UserRepositoryImpl) ConsumeResetToken(ctx context.Context, token string, now time.Time) (*entity.PasswordResetToken, error) {
	res := r.db.WithContext(ctx).Model(&model.PasswordResetToken{}).
		Where("token = ? AND used_at IS NULL AND expires_at > ?", token, now).
		Update("used_at", now)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindResetToken(ctx, specification.ByToken{Token: token})
}

func (r *UserRepositoryImpl) InvalidateUnusedResetTokens(ctx context.Context, userId uint, now time.Time) error {
	return r.db.WithContext(ctx).Model(&model.PasswordResetToken{}).
		Where("user_id = ? AND used_at IS NULL", userId).
		Update("used_at", now).Error
}

func (r *UserRepositoryImpl) DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res := r.applySpecifications(r.db.WithContext(ctx), specification.ExpiredBefore{Now: now}).
		Delete(&model.PasswordResetToken{})
	return res.RowsAffected, res.Error
}
