package types

// BulkFields CSV 里可以映射到查询条件的字段
var BulkFields = []string{
	"q", "firstName", "lastName", "legalName", "sex", "birthDate", "birthCity", "birthDepartment", "birthCountry",
	"birthGeoPoint", "deathDate", "deathCity", "deathDepartment", "deathCountry", "deathGeoPoint", "deathAge",
	"lastSeenAliveDate",
}

// BulkOptions 批量匹配任务参数
type BulkOptions struct {
	Sep       string `json:"sep"`
	ChunkSize int    `json:"chunkSize"`
	Size      int    `json:"size"`
	// Mapping 查询字段 -> CSV 列名，未给出时列名与字段同名
	Mapping map[string]string `json:"mapping,omitempty"`
	ScoreParams
}

// WithDefaults 补齐默认值
func (o BulkOptions) WithDefaults(chunkSize int) BulkOptions {
	if o.Sep == "" {
		o.Sep = ","
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = chunkSize
	}
	if o.Size <= 0 {
		o.Size = 10
	}
	return o
}

// Column 查询字段对应的 CSV 列名
func (o BulkOptions) Column(field string) string {
	if col, ok := o.Mapping[field]; ok && col != "" {
		return col
	}
	return field
}

// BulkRecord CSV 一行的处理结果
type BulkRecord struct {
	Source map[string]string `json:"source"` // 原始列
	Query  Query             `json:"-"`
	Match  *Person           `json:"match,omitempty"` // 最优候选，没有则为空
}

// BulkResult 解密后的完整结果
type BulkResult struct {
	Header  []string     `json:"header"`
	Records []BulkRecord `json:"records"`
	Sep     string       `json:"-"` // 取自任务记录，不进密文
}

// JobStatus 任务状态
type JobStatus struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	Rows     int     `json:"rows"`
	Progress float64 `json:"progress"`
	Error    string  `json:"error,omitempty"`
}
