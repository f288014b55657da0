package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kaligetsagency/aifx/internal/feature/assets/domain/entity"
	"github.com/Kaligetsagency/aifx/internal/feature/assets/usecase"
)

// mockAssetRepository はAssetRepositoryインターフェースのモック実装です。
type mockAssetRepository struct {
	ListActiveFunc func(ctx context.Context, source string) ([]entity.Asset, error)
}

// ListActive はモックのListActive関数を呼び出します。
func (m *mockAssetRepository) ListActive(ctx context.Context, source string) ([]entity.Asset, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx, source)
	}
	return nil, nil
}

// TestAssetUsecase_ListAssets は設定されたソースで一覧を取得することを検証します。
func TestAssetUsecase_ListAssets(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mockList func(ctx context.Context, source string) ([]entity.Asset, error)
		expected []entity.Asset
		wantErr  bool
	}{
		{
			name: "success: passes configured source",
			mockList: func(ctx context.Context, source string) ([]entity.Asset, error) {
				assert.Equal(t, "deriv", source)
				return []entity.Asset{{Code: "R_100", Source: "deriv"}}, nil
			},
			expected: []entity.Asset{{Code: "R_100", Source: "deriv"}},
		},
		{
			name: "failure: repository error",
			mockList: func(ctx context.Context, source string) ([]entity.Asset, error) {
				return nil, errors.New("database connection failed")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			uc := usecase.NewAssetUsecase(&mockAssetRepository{ListActiveFunc: tt.mockList}, "deriv")
			assets, err := uc.ListAssets(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, assets)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, assets)
		})
	}
}

// TestAssetUsecase_Timeframes は時間足ラベルと秒数の対応を検証します。
func TestAssetUsecase_Timeframes(t *testing.T) {
	t.Parallel()

	uc := usecase.NewAssetUsecase(&mockAssetRepository{}, "deriv")

	assert.Equal(t, []entity.Timeframe{
		{Label: "1m", Granularity: 60},
		{Label: "5m", Granularity: 300},
		{Label: "15m", Granularity: 900},
		{Label: "30m", Granularity: 1800},
		{Label: "1H", Granularity: 3600},
		{Label: "4H", Granularity: 14400},
		{Label: "1D", Granularity: 86400},
	}, uc.Timeframes())
}
