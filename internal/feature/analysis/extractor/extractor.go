// Package extractor はAIの自由記述の応答から売買提案のJSONを取り出して検証します。
//
// 取り出しは2段階のフォールバックです。
//  1. 最初のコードフェンス（jsonタグ付きまたはタグなし）の中身
//  2. テキスト全体の最初の '{' から最後の '}' まで
//
// 最初にJSONオブジェクトとして解釈できた候補を採用します。壊れたJSONの修復は行いません。
package extractor

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Kaligetsagency/aifx/internal/feature/analysis/domain"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/domain/entity"
)

const codeFence = "```"

const (
	keyEntryPoint      = "entryPoint"
	keyStopLoss        = "stopLoss"
	keyTakeProfit      = "takeProfit"
	keyRationale       = "rationale"
	keyConfidenceScore = "confidenceScore"
)

const (
	minConfidence = 1
	maxConfidence = 10
)

// Extract はAIの応答テキストからRecommendationを取り出します。
// 失敗はdomain.ErrNoJSONRegion、domain.ErrInvalidJSON、
// domain.ErrMissingField、domain.ErrNonNumericFieldのいずれかをラップします。
func Extract(raw string) (entity.Recommendation, error) {
	candidates := candidateRegions(raw)
	if len(candidates) == 0 {
		return entity.Recommendation{}, domain.ErrNoJSONRegion
	}

	for _, c := range candidates {
		if !gjson.Valid(c) {
			continue
		}
		obj := gjson.Parse(c)
		if !obj.IsObject() {
			continue
		}
		return toRecommendation(obj)
	}
	return entity.Recommendation{}, domain.ErrInvalidJSON
}

// candidateRegions は優先順にJSON候補の文字列を返します。
func candidateRegions(raw string) []string {
	var out []string
	if block, ok := fencedBlock(raw); ok {
		out = append(out, block)
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		out = append(out, raw[start:end+1])
	}
	return out
}

// fencedBlock は最初のjsonタグ付きまたはタグなしのコードフェンスの中身を返します。
// 他の言語タグのフェンスや空のフェンスは読み飛ばして次のフェンスを探します。
func fencedBlock(raw string) (string, bool) {
	rest := raw
	for {
		start := strings.Index(rest, codeFence)
		if start == -1 {
			return "", false
		}
		rest = rest[start+len(codeFence):]
		end := strings.Index(rest, codeFence)
		if end == -1 {
			return "", false
		}
		block := rest[:end]
		rest = rest[end+len(codeFence):]

		if body, ok := fenceBody(block); ok {
			return body, true
		}
	}
}

// fenceBody はフェンス内側の文字列から言語タグを除いた中身を返します。
func fenceBody(block string) (string, bool) {
	first, body, found := strings.Cut(block, "\n")
	tag := strings.TrimSpace(first)
	switch {
	case !found:
		// ```{...}``` のような1行フェンス
		if strings.EqualFold(tag, "json") {
			return "", false
		}
	case tag == "" || strings.EqualFold(tag, "json"):
		block = body
	case strings.ContainsAny(tag, "{["):
		// 1行目から中身が始まっている
	default:
		return "", false
	}

	block = strings.TrimSpace(block)
	if block == "" {
		return "", false
	}
	return block, true
}

// toRecommendation はJSONオブジェクトを検証して変換します。
// キーが重複する場合は encoding/json と同じく最後の値を採用します。
func toRecommendation(obj gjson.Result) (entity.Recommendation, error) {
	var rec entity.Recommendation

	fields := make(map[string]gjson.Result)
	obj.ForEach(func(key, value gjson.Result) bool {
		fields[key.String()] = value
		return true
	})

	required := []struct {
		key string
		dst *float64
	}{
		{keyEntryPoint, &rec.EntryPoint},
		{keyStopLoss, &rec.StopLoss},
		{keyTakeProfit, &rec.TakeProfit},
	}
	for _, r := range required {
		v, ok := fields[r.key]
		if !ok || v.Type == gjson.Null {
			return entity.Recommendation{}, fmt.Errorf("%w: %s", domain.ErrMissingField, r.key)
		}
		f, ok := toFloat(v)
		if !ok {
			return entity.Recommendation{}, fmt.Errorf("%w: %s=%s", domain.ErrNonNumericField, r.key, v.Raw)
		}
		*r.dst = f
	}

	if v, ok := fields[keyRationale]; ok && v.Type != gjson.Null {
		s := v.Raw
		if v.Type == gjson.String {
			s = v.String()
		}
		rec.Rationale = &s
	}

	if v, ok := fields[keyConfidenceScore]; ok {
		if f, ok := toFloat(v); ok {
			score := int(math.Round(f))
			if score >= minConfidence && score <= maxConfidence {
				rec.ConfidenceScore = &score
			}
		}
	}

	for key, value := range fields {
		switch key {
		case keyEntryPoint, keyStopLoss, keyTakeProfit, keyRationale, keyConfidenceScore:
			continue
		}
		if rec.Extra == nil {
			rec.Extra = make(map[string]json.RawMessage)
		}
		rec.Extra[key] = json.RawMessage(value.Raw)
	}

	return rec, nil
}

// toFloat は数値、またはJSONの数値表記の文字列をfloat64に変換します。
func toFloat(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Float(), !math.IsInf(v.Float(), 0)
	case gjson.String:
		s := strings.TrimSpace(v.String())
		if !gjson.Valid(s) {
			return 0, false
		}
		n := gjson.Parse(s)
		if n.Type != gjson.Number {
			return 0, false
		}
		f := n.Float()
		if math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
