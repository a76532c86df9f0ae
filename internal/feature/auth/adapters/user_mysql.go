// Package adapters はauthフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"storefront/internal/feature/auth/domain/entity"
	"storefront/internal/feature/auth/usecase"
)

const (
	mysqlDuplicateEntry   = 1062
	postgresUniqueViolate = "23505"
)

// userMySQL はUserRepositoryインターフェースのGORM実装です。
// MySQL（既定）とPostgreSQLのどちらでも動作します。
type userMySQL struct {
	db *gorm.DB
}

// userMySQLがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userMySQL)(nil)

// NewUserMySQL は指定されたgorm.DB接続でuserMySQLの新しいインスタンスを生成します。
func NewUserMySQL(db *gorm.DB) *userMySQL {
	return &userMySQL{db: db}
}

// isDuplicateKey reports whether err is a unique constraint violation on any supported driver.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == postgresUniqueViolate
}

// Create はユーザーをデータベースに追加します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyExistsを返します。
func (r *userMySQL) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return gorm.ErrInvalidValue
	}
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicateKey(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

// FindByEmail はメールアドレスに完全一致するユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
// MySQLの既定照合順序は大文字小文字を区別しないため、取得後にバイト単位で比較します。
func (r *userMySQL) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	if u.Email != email {
		return nil, usecase.ErrUserNotFound
	}
	return &u, nil
}

// FindByID はIDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userMySQL) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Activate は有効化トークンを消費します。is_activeの設定とトークンの削除は1つのUPDATE文で行われます。
func (r *userMySQL) Activate(ctx context.Context, token string) error {
	result := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("activation_token = ?", token).
		Updates(map[string]any{
			"is_active":        true,
			"activation_token": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// SetResetToken はパスワードリセットトークンと有効期限を保存します。
func (r *userMySQL) SetResetToken(ctx context.Context, userID uint, token string, expires time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"reset_token":   token,
			"reset_expires": expires,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// ResetPassword は有効なリセットトークンを持つユーザーのパスワードを更新します。
// 読み取り後の条件付きUPDATEでトークンと有効期限を同時にクリアするため、トークンは一度しか使えません。
func (r *userMySQL) ResetPassword(ctx context.Context, token, passwordHash string, now time.Time) (uint, error) {
	var userID uint
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u entity.User
		if err := tx.Where("reset_token = ? AND reset_expires > ?", token, now).
			First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return usecase.ErrUserNotFound
			}
			return err
		}

		result := tx.Model(&entity.User{}).
			Where("id = ? AND reset_token = ? AND reset_expires > ?", u.ID, token, now).
			Updates(map[string]any{
				"password":      passwordHash,
				"reset_token":   nil,
				"reset_expires": nil,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return usecase.ErrUserNotFound
		}
		userID = u.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// ClearExpiredResetTokens は期限切れのリセットトークンと有効期限をまとめてクリアします。
func (r *userMySQL) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("reset_expires IS NOT NULL AND reset_expires <= ?", now).
		Updates(map[string]any{
			"reset_token":   nil,
			"reset_expires": nil,
		})
	return result.RowsAffected, result.Error
}
