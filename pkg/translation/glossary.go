package translation

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// RelevantTerms 从术语表中筛选与文本相关的条目
// 源术语作为大小写不敏感的子串出现在文本中即视为相关，保持术语表原有顺序
func RelevantTerms(text string, glossary []GlossaryEntry) []GlossaryEntry {
	lower := strings.ToLower(text)

	var relevant []GlossaryEntry
	for _, entry := range glossary {
		if entry.Source == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(entry.Source)) {
			relevant = append(relevant, entry)
		}
	}

	return relevant
}

// LocateTerms 在译文中定位术语表条目的目标术语
//
// 对每个条目做大小写敏感的子串扫描，从左到右记录出现位置；
// 每次命中后前进一个rune继续扫描，以覆盖自重叠的出现。
// 返回的偏移量是译文的rune下标。
func LocateTerms(translated string, terms []GlossaryEntry) []TermMatch {
	runes := []rune(translated)

	var matches []TermMatch
	for _, entry := range terms {
		target := []rune(entry.Target)
		if len(target) == 0 {
			continue
		}

		for start := 0; start+len(target) <= len(runes); {
			idx := indexRunes(runes, target, start)
			if idx < 0 {
				break
			}
			matches = append(matches, TermMatch{
				Source: entry.Source,
				Target: entry.Target,
				Start:  idx,
				End:    idx + len(target),
			})
			start = idx + 1
		}
	}

	return matches
}

// indexRunes 在runes中从from位置起查找sub，返回rune下标，未找到返回-1
func indexRunes(runes, sub []rune, from int) int {
	for i := from; i+len(sub) <= len(runes); i++ {
		found := true
		for j := range sub {
			if runes[i+j] != sub[j] {
				found = false
				break
			}
		}
		if found {
			return i
		}
	}
	return -1
}

// LoadGlossary 从JSON文件加载术语表
// 文件格式为 [{"source": "...", "target": "..."}, ...]
func LoadGlossary(path string) ([]GlossaryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary file: %w", err)
	}

	var entries []GlossaryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse glossary file %s: %w", path, err)
	}

	valid := make([]GlossaryEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Source == "" || entry.Target == "" {
			continue
		}
		valid = append(valid, entry)
	}

	return valid, nil
}
