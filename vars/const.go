package vars

import (
	"os"
	"strconv"
	"time"
)

// GetEnv 获取环境变量，如果不存在则返回默认值
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetEnvInt 获取整数型环境变量，解析失败时返回默认值
func GetEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvDuration 获取时长型环境变量 (如 "1h", "30m")
func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

const (
	// API 前缀
	API_PREFIX = "/deces/api/v1"

	// 批量任务状态
	JobQueued    = "queued"
	JobActive    = "active"
	JobCompleted = "completed"
	JobFailed    = "failed"
	JobCancelled = "cancelled"

	// 单次检索最大返回数
	MAX_SIZE = 1000
)

// 环境变量配置（支持 Docker 部署）
var (
	// PG
	PGUSER = GetEnv("PGUSER", "deces")
	PGPWD  = GetEnv("PGPWD", "deces")
	PGDB   = GetEnv("PGDB", "deces")
	PGHOST = GetEnv("PGHOST", "localhost")
	PGPORT = GetEnv("PGPORT", "5432")

	// ES
	ESADDR   = GetEnv("ESADDR", "http://localhost:9200")
	ES_INDEX = GetEnv("ES_INDEX", "deces")

	// HTTP
	PORT = GetEnv("PORT", "8080")

	// 批量匹配
	BULK_WORKERS    = GetEnvInt("BULK_WORKERS", 4)
	BULK_CHUNK_SIZE = GetEnvInt("BULK_CHUNK_SIZE", 20)
	BULK_RESULT_TTL = GetEnvDuration("BULK_RESULT_TTL", time.Hour)

	// 结果加密
	PBKDF2_ITER = GetEnvInt("PBKDF2_ITER", 4096)
)
