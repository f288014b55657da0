package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"
	"github.com/Kaligetsagency/aifx/internal/feature/candles/usecase"
	"github.com/Kaligetsagency/aifx/internal/platform/externalapi/twelvedata/dto"
)

// intervals はローソク足の秒数をTwelve Dataのinterval表記に対応付けます。
var intervals = map[int]string{
	60:     "1min",
	300:    "5min",
	900:    "15min",
	1800:   "30min",
	2700:   "45min",
	3600:   "1h",
	7200:   "2h",
	14400:  "4h",
	86400:  "1day",
	604800: "1week",
}

// Interval は秒数に対応するTwelve Dataのinterval表記を返します。
func Interval(granularity int) (string, bool) {
	iv, ok := intervals[granularity]
	return iv, ok
}

// TwelveDataMarket はTwelve Data外部APIからローソク足を取得するCandleSource実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがCandleSourceを実装していることをコンパイル時に検証します。
var _ usecase.CandleSource = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// FetchCandles はTwelve Data APIから直近count本のローソク足を取得します。
// 時刻はUTCで要求し、Unix秒に変換して返します。
func (t *TwelveDataMarket) FetchCandles(ctx context.Context, symbol string, granularity, count int) ([]entity.Candle, error) {
	interval, ok := Interval(granularity)
	if !ok {
		return nil, fmt.Errorf("twelvedata: %w: %ds", entity.ErrUnsupportedGranularity, granularity)
	}

	q := url.Values{}
	// クエリパラメータを追加
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", strconv.Itoa(count))
	q.Set("timezone", "UTC")
	q.Set("apikey", t.cfg.APIKey)

	// URLを生成
	u := fmt.Sprintf("%s/time_series?%s", strings.TrimRight(t.cfg.BaseURL, "/"), q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	// リクエストを実行
	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	// JSONレスポンスをDTOにデコード
	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	candles := make([]entity.Candle, 0, len(body.Values))
	for _, v := range body.Values {
		// タイムスタンプをパース
		tm, err := time.ParseInLocation("2006-01-02 15:04:05", v.Datetime, time.UTC)
		if err != nil {
			tm, err = time.ParseInLocation("2006-01-02", v.Datetime, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v.Datetime, err)
			}
		}
		// 始値をパース
		o, err := strconv.ParseFloat(v.Open, 64)
		if err != nil {
			return nil, fmt.Errorf("parse open %q: %w", v.Open, err)
		}
		// 高値をパース
		h, err := strconv.ParseFloat(v.High, 64)
		if err != nil {
			return nil, fmt.Errorf("parse high %q: %w", v.High, err)
		}
		// 安値をパース
		l, err := strconv.ParseFloat(v.Low, 64)
		if err != nil {
			return nil, fmt.Errorf("parse low %q: %w", v.Low, err)
		}
		// 終値をパース
		c, err := strconv.ParseFloat(v.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("parse close %q: %w", v.Close, err)
		}
		// 出来高をパース（為替ペアでは空）
		var vol float64
		if v.Volume != "" {
			vol, err = strconv.ParseFloat(v.Volume, 64)
			if err != nil {
				return nil, fmt.Errorf("parse volume %q: %w", v.Volume, err)
			}
		}

		// ドメインエンティティに変換
		candles = append(candles, entity.Candle{
			Timestamp: tm.Unix(),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    vol,
		})
	}
	return candles, nil
}
