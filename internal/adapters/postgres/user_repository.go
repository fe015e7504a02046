package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/domain"
	"github.com/scribeworks/notes-service/internal/ports"
	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) CreateWithOutboxTx(ctx context.Context, params ports.CreateUserTxParams, outboxEvent ports.OutboxEvent) (domain.User, error) {
	var result domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := userModel{
			Username:      params.Username,
			UsernameLower: strings.ToLower(params.Username),
			PasswordHash:  params.PasswordHash,
			Roles:         encodeRoles(params.Roles),
			Profile:       encodeProfile(params.Profile),
			CreatedAt:     params.RegisteredAtUTC,
			UpdatedAt:     params.RegisteredAtUTC,
		}
		if err := tx.Create(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return err
		}

		payload := outboxEvent.Payload
		if len(payload) == 0 {
			payload = []byte(`{}`)
		}
		var payloadObj map[string]any
		if err := json.Unmarshal(payload, &payloadObj); err == nil {
			payloadObj["user_id"] = rec.UserID.String()
			if adjusted, mErr := json.Marshal(payloadObj); mErr == nil {
				payload = adjusted
			}
		}

		outbox := outboxModel{
			OutboxID:     outboxEvent.EventID,
			EventType:    outboxEvent.EventType,
			PartitionKey: rec.UserID.String(),
			Payload:      string(payload),
			CreatedAt:    outboxEvent.OccurredAt,
		}
		if err := tx.Create(&outbox).Error; err != nil {
			return err
		}

		result = toDomainUser(rec)
		return nil
	})
	if err != nil {
		return domain.User{}, err
	}
	return result, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	var rec userModel
	if err := r.db.WithContext(ctx).Where("username_lower = ?", strings.ToLower(username)).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return toDomainUser(rec), nil
}

func (r *userRepository) GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	var rec userModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return toDomainUser(rec), nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&userModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []userModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	result := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainUser(row))
	}
	return result, total, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, profile domain.Profile, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"profile":    encodeProfile(profile),
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdateRoles(ctx context.Context, userID uuid.UUID, roles []domain.Role, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"roles":      encodeRoles(roles),
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"password_hash": passwordHash,
			"updated_at":    updatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&userModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) FindByRefreshToken(ctx context.Context, token string) (domain.User, error) {
	var session refreshTokenModel
	if err := r.db.WithContext(ctx).Where("token = ?", token).Take(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	return r.GetByID(ctx, session.UserID)
}

func (r *userRepository) AddRefreshToken(ctx context.Context, userID uuid.UUID, token string, createdAt, expiresAt time.Time) error {
	rec := refreshTokenModel{
		Token:     token,
		UserID:    userID,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

// ConsumeRefreshToken is a single DELETE; the rows-affected count decides
// which of two racing refreshes actually rotated the token.
func (r *userRepository) ConsumeRefreshToken(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("token = ?", token).
		Delete(&refreshTokenModel{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) ClearRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&refreshTokenModel{}).Error
}
