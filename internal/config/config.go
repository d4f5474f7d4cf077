// internal/config/config.go

package config

import (
	"encoding/json"
	"os"
	"strconv"

	"hotelac/internal/types"
)

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// EngineConfig 温控引擎配置, 启动后不再修改
type EngineConfig struct {
	ACTotalCount     int     `json:"ac_total_count"`     // 中央空调可同时服务的房间数 C
	TimeSliceSeconds float64 `json:"time_slice_seconds"` // 时间片长度 T (逻辑秒)
	RoomCount        int     `json:"room_count"`         // 初始化房间数量
	DefaultTemp      float64 `json:"default_temp"`       // 房间初始温度缺省值

	CoolingMinTemp       float64 `json:"cooling_min_temp"`
	CoolingMaxTemp       float64 `json:"cooling_max_temp"`
	CoolingDefaultTarget float64 `json:"cooling_default_target"`
	HeatingMinTemp       float64 `json:"heating_min_temp"`
	HeatingMaxTemp       float64 `json:"heating_max_temp"`
	HeatingDefaultTarget float64 `json:"heating_default_target"`

	FanRateLow    float64 `json:"fan_rate_low"`    // 低风速变温速率 (摄氏度/逻辑分钟)
	FanRateMedium float64 `json:"fan_rate_medium"` // 中风速变温速率
	FanRateHigh   float64 `json:"fan_rate_high"`   // 高风速变温速率
	RewarmRate    float64 `json:"rewarm_rate"`     // 停止送风后回温速率

	// 计费: TempFeeRate 为每摄氏度有效变温的费用, RoomRate 为缺省每日房费
	TempFeeRate            float64 `json:"temp_fee_rate"`
	RoomRate               float64 `json:"room_rate"`
	EnableACCycleDailyFee  bool    `json:"enable_ac_cycle_daily_fee"`
	TimeAccelerationFactor float64 `json:"time_acceleration_factor"`
}

// Config 应用配置
type Config struct {
	Server ServerConfig `json:"server"`
	Engine EngineConfig `json:"engine"`
	DBPath string       `json:"db_path"`
}

// Default 返回缺省配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Engine: EngineConfig{
			ACTotalCount:     3,
			TimeSliceSeconds: 120,
			RoomCount:        5,
			DefaultTemp:      25,

			CoolingMinTemp:       18,
			CoolingMaxTemp:       28,
			CoolingDefaultTarget: 25,
			HeatingMinTemp:       18,
			HeatingMaxTemp:       25,
			HeatingDefaultTarget: 22,

			FanRateLow:    1.0 / 3.0,
			FanRateMedium: 0.5,
			FanRateHigh:   1.0,
			RewarmRate:    0.5,

			TempFeeRate:            1.0,
			RoomRate:               100.0,
			EnableACCycleDailyFee:  false,
			TimeAccelerationFactor: 1.0,
		},
		DBPath: "hotel.db",
	}
}

// LoadFromFile 从 JSON 文件加载配置, 未出现的字段保持缺省值
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv 应用环境变量覆盖
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	envInt("SERVER_PORT", &cfg.Server.Port)
	if v := os.Getenv("HOTEL_DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	envInt("HOTEL_AC_TOTAL_COUNT", &cfg.Engine.ACTotalCount)
	envFloat("HOTEL_TIME_SLICE", &cfg.Engine.TimeSliceSeconds)
	envInt("HOTEL_ROOM_COUNT", &cfg.Engine.RoomCount)
	envFloat("HOTEL_DEFAULT_TEMP", &cfg.Engine.DefaultTemp)

	envFloat("COOLING_MIN_TEMP", &cfg.Engine.CoolingMinTemp)
	envFloat("COOLING_MAX_TEMP", &cfg.Engine.CoolingMaxTemp)
	envFloat("COOLING_DEFAULT_TARGET", &cfg.Engine.CoolingDefaultTarget)
	envFloat("HEATING_MIN_TEMP", &cfg.Engine.HeatingMinTemp)
	envFloat("HEATING_MAX_TEMP", &cfg.Engine.HeatingMaxTemp)
	envFloat("HEATING_DEFAULT_TARGET", &cfg.Engine.HeatingDefaultTarget)

	envFloat("BILLING_TEMP_RATE", &cfg.Engine.TempFeeRate)
	envFloat("BILLING_ROOM_RATE", &cfg.Engine.RoomRate)
	envBool("ENABLE_AC_CYCLE_DAILY_FEE", &cfg.Engine.EnableACCycleDailyFee)
	envFloat("TIME_ACCELERATION_FACTOR", &cfg.Engine.TimeAccelerationFactor)
}

// Load 组合缺省值, 可选配置文件 (CONFIG_FILE) 与环境变量
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	LoadFromEnv(cfg)
	return cfg, nil
}

// TempRange 返回指定模式允许的目标温度范围
func (e *EngineConfig) TempRange(mode types.Mode) types.TempRange {
	if mode == types.ModeHeating {
		return types.TempRange{Min: e.HeatingMinTemp, Max: e.HeatingMaxTemp}
	}
	return types.TempRange{Min: e.CoolingMinTemp, Max: e.CoolingMaxTemp}
}

// DefaultTarget 返回指定模式的缺省目标温度
func (e *EngineConfig) DefaultTarget(mode types.Mode) float64 {
	if mode == types.ModeHeating {
		return e.HeatingDefaultTarget
	}
	return e.CoolingDefaultTarget
}

// FanRate 返回指定风速的变温速率 (摄氏度/逻辑分钟)
func (e *EngineConfig) FanRate(speed types.Speed) float64 {
	switch speed {
	case types.SpeedHigh:
		return e.FanRateHigh
	case types.SpeedMedium:
		return e.FanRateMedium
	case types.SpeedLow:
		return e.FanRateLow
	}
	return e.FanRateMedium
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
