package sentiment

// Default keyword lists seeded into new project configurations.
var (
	DefaultNegative = []string{
		"漏", "损耗", "存不住", "轻视", "过期", "废弃", "忽略", "叹气", "抱怨", "掏空",
		"心疼", "智商税", "陷阱", "伪勤奋", "没做成", "忙", "团团转", "暗漏", "关不紧",
		"大主见", "贪小利", "错失", "强撑", "面子",
	}

	DefaultPositive = []string{
		"财库", "开源", "变富", "财神", "新财", "丰盛", "福气", "越来越富", "磁场", "财富",
		"能量", "高手", "心流", "聚焦", "刀刃", "配得感", "禄勋", "气场", "通透", "稳住",
	}

	DefaultBackground = []string{"搞钱", "能量", "发财", "暴富", "上岸", "财运"}
)

// Keywords bundles the lists every classifier caller passes along.
type Keywords struct {
	Positive   []string `json:"positiveWords" yaml:"positive" toml:"positive"`
	Negative   []string `json:"negativeWords" yaml:"negative" toml:"negative"`
	Background []string `json:"bgKeywords" yaml:"background" toml:"background"`
}

// Classify runs Classify with the bundled lists.
func (k Keywords) Classify(word string) Sentiment {
	return Classify(word, k.Positive, k.Negative)
}

// WithDefaults fills absent (nil) lists from the package defaults. An empty
// but present list is a deliberate choice and is kept.
func (k Keywords) WithDefaults() Keywords {
	if k.Positive == nil {
		k.Positive = clone(DefaultPositive)
	}
	if k.Negative == nil {
		k.Negative = clone(DefaultNegative)
	}
	if k.Background == nil {
		k.Background = clone(DefaultBackground)
	}
	return k
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
