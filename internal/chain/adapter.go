package chain

// 历史合约版本的事件字段名与当前版本不一致（goal/targetAmount、
// deadline/endTime、contributor/funder）。统一在链边界做一次归一化，
// 读路径只认规范字段名。

// legacyFieldAlias 旧字段名 -> 规范字段名
var legacyFieldAlias = map[string]string{
	"targetAmount": "goal",
	"endTime":      "deadline",
	"funder":       "contributor",
	"owner":        "creator",
}

// NormalizeEventData 归一化事件载荷字段名
// 规范字段已存在时不被旧字段覆盖
func NormalizeEventData(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return map[string]interface{}{}
	}

	normalized := make(map[string]interface{}, len(data))
	for k, v := range data {
		if canonical, ok := legacyFieldAlias[k]; ok {
			if _, exists := data[canonical]; !exists {
				normalized[canonical] = v
			}
			continue
		}
		normalized[k] = v
	}
	return normalized
}
