// Package binding 负责场景文本中的 ${path} 占位符替换，
// 例如 "${brand.name}" 或带默认值的 "${brand.tagline|Since 2024}"。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的占位符替换为 data 中的值。
// 路径不存在时使用 | 后的默认值；没有默认值则保留原占位符。
func Interpolate(text string, data any) string {
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path, fallback, hasFallback := strings.Cut(groups[1], "|")
		path = strings.TrimSpace(path)
		if path != "" && data != nil {
			if val, ok := Lookup(data, path); ok {
				return format(val)
			}
		}
		if hasFallback {
			return strings.TrimSpace(fallback)
		}
		return match
	})
}

// Lookup 按 a.b[0].c 形式的路径在解码后的 JSON 数据中取值。
func Lookup(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes, ok := parseSegment(segment)
		if !ok {
			return nil, false
		}
		if name != "" {
			m, isMap := current.(map[string]any)
			if !isMap {
				return nil, false
			}
			if current, ok = m[name]; !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			arr, isArr := current.([]any)
			if !isArr || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []int, bool) {
	name, rest, _ := strings.Cut(segment, "[")
	if rest == "" {
		return strings.TrimSpace(name), nil, true
	}
	rest = "[" + rest
	var indexes []int
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			return "", nil, false
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, idx)
		rest = rest[end+1:]
	}
	return strings.TrimSpace(name), indexes, true
}

// format 输出值；JSON 数字整数部分不带小数。
func format(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
