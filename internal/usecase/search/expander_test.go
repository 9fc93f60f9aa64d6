package search

import (
	"reflect"
	"testing"

	"github.com/sydlabs/noteseek/internal/domain/keyword"
)

func TestExpand(t *testing.T) {
	e := NewExpander(keyword.NewWithDefaults())

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "two seeds",
			query: "悉尼 咖啡",
			want: []string{
				"悉尼 咖啡",
				"Sydney", "雪梨", "澳洲", "澳大利亚", "新南威尔士",
				"咖啡馆", "咖啡店", "咖啡厅", "咖啡师", "手冲", "精品咖啡", "拉花",
			},
		},
		{
			name:  "overlapping expansions deduped",
			query: "咖啡 咖啡店",
			want: []string{
				"咖啡 咖啡店",
				"咖啡馆", "咖啡店", "咖啡厅", "咖啡师", "手冲", "精品咖啡", "拉花",
				"手冲咖啡", "咖啡豆", "烘焙",
			},
		},
		{
			name:  "unknown word passes through",
			query: "歌剧院",
			want:  []string{"歌剧院"},
		},
		{
			name:  "expansion equal to query deduped",
			query: "攻略",
			want:  []string{"攻略", "指南", "路线", "行程", "玩法", "推荐", "经验"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := e.Expand(tc.query)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Expand(%q) = %v, want %v", tc.query, got, tc.want)
			}
		})
	}
}

func TestExpandQueryAlwaysFirst(t *testing.T) {
	e := NewExpander(keyword.New())
	got := e.Expand("任何查询")
	if len(got) != 1 || got[0] != "任何查询" {
		t.Errorf("Expand on empty catalog = %v, want just the query", got)
	}
}
