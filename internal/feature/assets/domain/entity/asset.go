// Package entity defines the domain models for the assets feature.
package entity

import "time"

// Asset is an instrument offered in the asset dropdown. Source names the
// candle source able to serve its code, since the three upstreams use
// different symbol conventions ("frxEURUSD", "EUR/USD", "BTCUSDT").
type Asset struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"size:40;not null;uniqueIndex:idx_asset_source_code"`
	Source    string    `gorm:"size:20;not null;uniqueIndex:idx_asset_source_code"`
	Name      string    `gorm:"size:255;not null"`
	Market    string    `gorm:"size:100;not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Timeframe is a selectable candle width.
type Timeframe struct {
	Label       string
	Granularity int
}
