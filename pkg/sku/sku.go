// Package sku derives the content-addressed variant identifiers that join
// source-site variants to catalog entries on the target platform. The rules
// here are a contract shared with the catalog-build tooling: changing the
// hash, the prefix, or the order of the color table breaks every identifier
// already stored in the reference sheets.
package sku

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

const (
	prefix = "FS"

	// UnknownColorCode is returned for colors with no table entry. Lossy on
	// purpose: the hash part still disambiguates the variant.
	UnknownColorCode = "UNK"
)

// colorCodes maps source color labels to short alphabetic codes. Evaluated in
// order with substring containment, first match wins, so table order is part
// of the identifier contract. Compound labels listed after their base color
// are shadowed by it (ライトブルー compresses to BLU because ブルー precedes
// it); those entries stay in place because the stored identifiers were built
// against exactly this table.
var colorCodes = []struct {
	Pattern string
	Code    string
}{
	{"ブラック", "BLK"},
	{"ホワイト", "WHT"},
	{"グレー", "GRY"},
	{"チャコール", "CHC"},
	{"ネイビー", "NVY"},
	{"ブルー", "BLU"},
	{"ライトブルー", "LBL"},
	{"ベージュ", "BEI"},
	{"ブラウン", "BRN"},
	{"カーキ", "KHA"},
	{"オリーブ", "OLV"},
	{"グリーン", "GRN"},
	{"ダークグリーン", "DGN"},
	{"イエロー", "YEL"},
	{"マスタード", "MUS"},
	{"オレンジ", "ORG"},
	{"レッド", "RED"},
	{"ピンク", "PNK"},
	{"パープル", "PUR"},
	{"ワイン", "WIN"},
	{"アイボリー", "IVY"},
	{"シルバー", "SLV"},
	{"ゴールド", "GLD"},
	{"ミント", "MNT"},
	{"サックス", "SAX"},
	{"モカ", "MOC"},
	{"テラコッタ", "TER"},
	{"ラベンダー", "LAV"},
	{"スモーキーピンク", "SPK"},
	{"スモーキーブルー", "SBL"},
	{"スモーキーグリーン", "SGN"},
}

// displayColors localizes source color labels for operator-facing output.
// Exact-key lookup; unmapped labels pass through unchanged.
var displayColors = map[string]string{
	"ブラック":     "黑色",
	"ホワイト":     "白色",
	"グレー":      "灰色",
	"チャコールグレー": "鐵灰",
	"ライトグレー":   "亮灰",
	"ネイビー":     "深藍",
	"ブルー":      "藍色",
	"ライトブルー":   "天空藍",
	"サックスブルー":  "靛藍",
	"ベージュ":     "奶茶",
	"ブラウン":     "棕色",
	"カーキ":      "卡其",
	"オリーブ":     "軍綠",
	"グリーン":     "綠色",
	"ダークグリーン":  "深綠",
	"イエロー":     "黃色",
	"マスタード":    "奶黃",
	"オレンジ":     "橘色",
	"レッド":      "紅色",
	"ピンク":      "淡粉",
	"パープル":     "紫色",
	"ワイン":      "酒紅",
	"ワインレッド":   "酒紅",
	"アイボリー":    "象牙白",
	"シルバー":     "銀色",
	"ゴールド":     "金色",
	"ミント":      "薄荷綠",
	"サックス":     "丹寧藍",
	"モカ":       "摩卡",
	"ラベンダー":    "薰衣草紫",
}

// ColorCode compresses a source color label to its short code. The first
// table pattern contained in the label wins; unmatched labels compress to
// UnknownColorCode.
func ColorCode(color string) string {
	for _, c := range colorCodes {
		if strings.Contains(color, c.Pattern) {
			return c.Code
		}
	}
	return UnknownColorCode
}

// DisplayColor returns the localized label for a source color label, or the
// label itself when no localization exists.
func DisplayColor(source string) string {
	if d, ok := displayColors[source]; ok {
		return d
	}
	return source
}

// Generate builds the variant identifier for (name, color, size). The color
// must be the source label as it appears on the product page, not the
// localized display label, or the digest will not match historical
// identifiers. Deterministic: same inputs, same identifier, always.
func Generate(name, color, size string) string {
	return prefix + "-" + shortHash(name+"-"+color+"-"+size) + "-" + ColorCode(color) + "-" + size
}

// shortHash renders the first 4 bytes of the md5 digest as 8 uppercase hex
// characters. md5 is fine here: the digest is a join key, not a security
// boundary, and the stored reference sheets were built with it.
func shortHash(text string) string {
	sum := md5.Sum([]byte(text))
	return strings.ToUpper(hex.EncodeToString(sum[:4]))
}
