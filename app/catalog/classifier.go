package catalog

import (
	"strings"
)

const (
	CategoryAI      = "Artificial_Intelligence"
	CategoryProduct = "Product_Development"
	CategoryTech    = "Programming_Technology"

	LanguageChinese = "zh_CN"
	LanguageEnglish = "en_US"
)

// Keyword sets are tested in fixed priority order; first match wins.
var (
	aiKeywords = []string{"ai", "deepmind", "openai", "machine learning", "llm", "gpt",
		"人工智能", "机器学习", "深度学习", "智能"}
	productKeywords = []string{"product", "ux", "design", "产品", "设计"}
	techKeywords    = []string{"engineering", "tech", "developer", "技术", "开发"}
)

// Categorize derives a category from the source name. Deterministic: the
// same name always classifies the same way.
func Categorize(name string) string {
	lower := strings.ToLower(name)

	for _, keyword := range aiKeywords {
		if strings.Contains(lower, keyword) {
			return CategoryAI
		}
	}
	for _, keyword := range productKeywords {
		if strings.Contains(lower, keyword) {
			return CategoryProduct
		}
	}
	for _, keyword := range techKeywords {
		if strings.Contains(lower, keyword) {
			return CategoryTech
		}
	}

	return CategoryTech
}

// DetectLanguage scans the name for CJK unified ideographs (U+4E00..U+9FFF).
func DetectLanguage(name string) string {
	for _, r := range name {
		if r >= 0x4e00 && r <= 0x9fff {
			return LanguageChinese
		}
	}
	return LanguageEnglish
}
