package keyword

// Built-in vocabulary, tuned for lifestyle-note content (travel, food,
// coffee, photography, fashion retail). Config can extend or override it.

var defaultSeedOrder = []string{
	"拍照", "摄影", "美食", "攻略", "旅游", "悉尼",
	"买手店", "购物", "时尚", "咖啡", "咖啡店",
}

var defaultExpansions = map[string][]string{
	"拍照":  {"摄影", "机位", "拍摄", "照相", "角度", "景点", "美景", "风景"},
	"摄影":  {"拍照", "机位", "拍摄", "镜头", "角度", "照片", "相片"},
	"美食":  {"餐厅", "吃", "美食", "探店", "必吃", "推荐", "美食攻略"},
	"攻略":  {"指南", "路线", "行程", "玩法", "推荐", "经验", "攻略"},
	"旅游":  {"旅行", "游览", "景点", "路线", "攻略", "玩法"},
	"悉尼":  {"Sydney", "雪梨", "澳洲", "澳大利亚", "新南威尔士"},
	"买手店": {"精品店", "购物", "时尚", "品牌", "选品", "设计师", "独立设计师", "时尚买手", "概念店", "潮流"},
	"购物":  {"买手店", "精品店", "商场", "品牌店", "消费", "采购", "选购"},
	"时尚":  {"买手店", "精品店", "潮流", "品牌", "设计师", "时装", "穿搭"},
	"咖啡":  {"咖啡馆", "咖啡店", "咖啡厅", "咖啡师", "手冲", "精品咖啡", "拉花"},
	"咖啡店": {"咖啡馆", "咖啡厅", "咖啡师", "手冲咖啡", "精品咖啡", "拉花", "咖啡豆", "烘焙"},
}

var defaultThemeOrder = []string{
	"买手店", "购物", "美食", "咖啡", "拍照", "摄影", "旅游", "攻略",
}

var defaultThemeTerms = map[string][]string{
	"买手店": {"精品店", "购物", "时尚", "品牌", "选品", "设计师", "时装", "穿搭", "潮流"},
	"购物":  {"商场", "品牌店", "消费", "采购", "选购", "折扣", "促销"},
	"美食":  {"餐厅", "吃饭", "菜品", "口味", "厨师", "菜单", "食材"},
	"咖啡":  {"咖啡馆", "咖啡店", "咖啡厅", "拉花", "手冲", "豆子", "烘焙", "咖啡师", "精品咖啡", "咖啡豆"},
	"拍照":  {"摄影", "机位", "角度", "镜头", "光线", "构图", "拍摄"},
	"摄影":  {"拍照", "机位", "拍摄", "镜头", "角度", "照片", "相片"},
	"旅游":  {"旅行", "游览", "景点", "路线", "攻略", "玩法"},
	"攻略":  {"指南", "路线", "行程", "玩法", "推荐", "经验"},
}
