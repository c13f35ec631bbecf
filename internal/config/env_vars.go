package config

import (
	"os"
	"strconv"
	"time"
)

const (
	apiURLEnvVar    = "CHATBOT_API_URL"
	envNameEnvVar   = "CHATBOT_ENV"
	useProxyEnvVar  = "CHATBOT_USE_PROXY"
	debugEnvVar     = "CHATBOT_DEBUG"
	logLevelEnvVar  = "CHATBOT_LOG_LEVEL"
	hotReloadEnvVar = "CHATBOT_HOT_RELOAD"
	timeoutEnvVar   = "CHATBOT_TIMEOUT_MS"
	retriesEnvVar   = "CHATBOT_RETRY_ATTEMPTS"
	storeEnvVar     = "CHATBOT_STORE"
	stateFileEnvVar = "CHATBOT_STATE_FILE"
	redisAddrVar    = "CHATBOT_REDIS_ADDR"
	redisPassVar    = "CHATBOT_REDIS_PASSWORD"
	redisDBVar      = "CHATBOT_REDIS_DB"
	redisPrefixVar  = "CHATBOT_REDIS_PREFIX"
)

const (
	developmentAPIURL = "http://localhost:8080"
	productionAPIURL  = "https://chatbot-challenge-production-03c8.up.railway.app"

	defaultTimeoutMS     = 30000
	defaultRetryAttempts = 3
)

type EnvVars struct {
	file *File
}

var _ Config = EnvVars{}

func (e EnvVars) GetEnvironment() string {
	if env := os.Getenv(envNameEnvVar); env != "" {
		return env
	}
	if e.file != nil && e.file.Environment != "" {
		return e.file.Environment
	}
	return "development"
}

func (e EnvVars) GetAPIURL() string {
	if url := os.Getenv(apiURLEnvVar); url != "" {
		return url
	}
	if e.file != nil && e.file.APIURL != "" {
		return e.file.APIURL
	}
	if e.GetEnvironment() == "production" {
		return productionAPIURL
	}
	return developmentAPIURL
}

func (e EnvVars) GetUseProxy() bool {
	return e.boolSetting(useProxyEnvVar, e.fileBool(func(f *File) *bool { return f.UseProxy }), e.GetEnvironment() == "development")
}

func (e EnvVars) GetDebug() bool {
	return e.boolSetting(debugEnvVar, e.fileBool(func(f *File) *bool { return f.Debug }), e.GetEnvironment() == "development")
}

func (e EnvVars) GetLogLevel() string {
	if level := os.Getenv(logLevelEnvVar); level != "" {
		return level
	}
	if e.file != nil && e.file.LogLevel != "" {
		return e.file.LogLevel
	}
	if e.GetEnvironment() == "development" {
		return "debug"
	}
	return "error"
}

func (e EnvVars) GetHotReload() bool {
	return e.boolSetting(hotReloadEnvVar, e.fileBool(func(f *File) *bool { return f.HotReload }), e.GetEnvironment() == "development")
}

func (e EnvVars) GetRequestTimeout() time.Duration {
	ms := defaultTimeoutMS
	if e.file != nil && e.file.TimeoutMS > 0 {
		ms = e.file.TimeoutMS
	}
	if v, err := strconv.Atoi(os.Getenv(timeoutEnvVar)); err == nil && v > 0 {
		ms = v
	}
	return time.Duration(ms) * time.Millisecond
}

func (e EnvVars) GetRetryAttempts() int {
	attempts := defaultRetryAttempts
	if e.file != nil && e.file.RetryAttempts > 0 {
		attempts = e.file.RetryAttempts
	}
	if v, err := strconv.Atoi(os.Getenv(retriesEnvVar)); err == nil && v >= 0 {
		attempts = v
	}
	return attempts
}

func (e EnvVars) GetStoreBackend() string {
	if backend := os.Getenv(storeEnvVar); backend != "" {
		return backend
	}
	if e.file != nil && e.file.Store.Backend != "" {
		return e.file.Store.Backend
	}
	return "file"
}

func (e EnvVars) GetStateFile() string {
	if path := os.Getenv(stateFileEnvVar); path != "" {
		return path
	}
	if e.file != nil && e.file.Store.File != "" {
		return e.file.Store.File
	}
	return ""
}

func (e EnvVars) GetRedisAddr() string {
	if addr := os.Getenv(redisAddrVar); addr != "" {
		return addr
	}
	if e.file != nil && e.file.Redis.Addr != "" {
		return e.file.Redis.Addr
	}
	return "localhost:6379"
}

func (e EnvVars) GetRedisPassword() string {
	if pass := os.Getenv(redisPassVar); pass != "" {
		return pass
	}
	if e.file != nil {
		return e.file.Redis.Password
	}
	return ""
}

func (e EnvVars) GetRedisDB() int {
	if v, err := strconv.Atoi(os.Getenv(redisDBVar)); err == nil {
		return v
	}
	if e.file != nil {
		return e.file.Redis.DB
	}
	return 0
}

func (e EnvVars) GetRedisPrefix() string {
	if prefix := os.Getenv(redisPrefixVar); prefix != "" {
		return prefix
	}
	if e.file != nil && e.file.Redis.Prefix != "" {
		return e.file.Redis.Prefix
	}
	return "chatbot:"
}

func (e EnvVars) boolSetting(envVar string, fileValue *bool, defaultValue bool) bool {
	if v := os.Getenv(envVar); v != "" {
		return v == "true"
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

func (e EnvVars) fileBool(pick func(*File) *bool) *bool {
	if e.file == nil {
		return nil
	}
	return pick(e.file)
}

// GetEnv returns the value of an environment variable, or the default when
// the variable is unset or empty.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
