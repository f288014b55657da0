// Package adapters はassetsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kaligetsagency/aifx/internal/feature/assets/domain/entity"
	"github.com/Kaligetsagency/aifx/internal/feature/assets/usecase"
)

// assetRepository はAssetRepositoryインターフェースのgorm実装です（SQLite/PostgreSQL）。
type assetRepository struct {
	db *gorm.DB
}

var _ usecase.AssetRepository = (*assetRepository)(nil)

// NewAssetRepository は指定されたDB接続でassetRepositoryの新しいインスタンスを生成します。
func NewAssetRepository(db *gorm.DB) *assetRepository {
	return &assetRepository{db: db}
}

// ListActive はsort_key順に指定ソースのアクティブな銘柄を返します。sourceが空なら全ソースを返します。
func (r *assetRepository) ListActive(ctx context.Context, source string) ([]entity.Asset, error) {
	q := r.db.WithContext(ctx).Where("is_active = ?", true)
	if source != "" {
		q = q.Where("source = ?", source)
	}

	var assets []entity.Asset
	if err := q.Order("sort_key ASC").Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

// Seed は銘柄を登録します。既に存在する (source, code) は変更しません。
func (r *assetRepository) Seed(ctx context.Context, assets []entity.Asset) error {
	if len(assets) == 0 {
		return nil
	}
	// Createは主キーを書き戻すため、呼び出し元のスライスを汚さないようコピーする
	rows := make([]entity.Asset, len(assets))
	for i, a := range assets {
		a.ID = 0
		rows[i] = a
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source"}, {Name: "code"}},
			DoNothing: true,
		}).
		Create(&rows).Error
}
