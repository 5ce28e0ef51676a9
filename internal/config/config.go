package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	API        APIConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Geofence   GeofenceConfig
	Detection  DetectionConfig
	Providers  ProvidersConfig
	RateLimit  RateLimitConfig
	Security   SecurityConfig
	Monitoring MonitoringConfig
}

type APIConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	URL          string
	MaxConns     int
	MaxIdleConns int
}

type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	TargetTTL time.Duration
}

// GeofenceConfig bounds target registration and enables vectors.
type GeofenceConfig struct {
	MinRadiusMeters float64
	MaxRadiusMeters float64
	EnabledMethods  []string
	// Region is the designated service rectangle reported in outcome details.
	RegionNorth float64
	RegionSouth float64
	RegionEast  float64
	RegionWest  float64
}

// DetectionConfig holds the tunable windows and thresholds for the
// cross-attempt spoofing checks. The defaults mirror the values the
// checks were originally calibrated with.
type DetectionConfig struct {
	RelocationWindow    time.Duration
	RelocationSamples   int
	RapidSpeedMPS       float64
	AccuracyWindow      time.Duration
	AccuracySamples     int
	AccuracyMinVariance float64
	ImpossibleSpeedMPS  float64
	MaxClockSkew        time.Duration
}

type ProvidersConfig struct {
	GeolocationURL    string
	GeolocationAPIKey string
	IPGeolocationURL  string
	IPGeolocationKey  string
	Timeout           time.Duration
}

type RateLimitConfig struct {
	Requests         int
	Window           time.Duration
	RequestsByDevice int
	DeviceWindow     time.Duration
}

type SecurityConfig struct {
	CORSOrigins    []string
	TrustedProxies []string
}

type MonitoringConfig struct {
	EnableMetrics bool
	LogLevel      string
}

func Load() (*Config, error) {
	cfg := &Config{
		API: APIConfig{
			Port:        getEnv("API_PORT", "7042"),
			Host:        getEnv("API_HOST", "0.0.0.0"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			URL:          getEnv("DATABASE_URL", "postgresql://geogate:@localhost:5432/geogate?sslmode=disable"),
			MaxConns:     getEnvInt("DB_MAX_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Address:   getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvInt("REDIS_DB", 0),
			TargetTTL: getEnvDuration("REDIS_TARGET_TTL", 12*time.Hour),
		},
		Geofence: GeofenceConfig{
			MinRadiusMeters: getEnvFloat("GEOFENCE_MIN_RADIUS", 50),
			MaxRadiusMeters: getEnvFloat("GEOFENCE_MAX_RADIUS", 5000),
			EnabledMethods:  getEnvSlice("ENABLED_METHODS", []string{"gps", "wifi", "ip", "cell_tower"}),
			RegionNorth:     getEnvFloat("REGION_NORTH", 42.1),
			RegionSouth:     getEnvFloat("REGION_SOUTH", 29.0),
			RegionEast:      getEnvFloat("REGION_EAST", 34.9),
			RegionWest:      getEnvFloat("REGION_WEST", 24.7),
		},
		Detection: DetectionConfig{
			RelocationWindow:    getEnvDuration("DETECT_RELOCATION_WINDOW", 10*time.Minute),
			RelocationSamples:   getEnvInt("DETECT_RELOCATION_SAMPLES", 3),
			RapidSpeedMPS:       getEnvFloat("DETECT_RAPID_SPEED_MPS", 50),
			AccuracyWindow:      getEnvDuration("DETECT_ACCURACY_WINDOW", time.Hour),
			AccuracySamples:     getEnvInt("DETECT_ACCURACY_SAMPLES", 5),
			AccuracyMinVariance: getEnvFloat("DETECT_ACCURACY_MIN_VARIANCE", 1.0),
			ImpossibleSpeedMPS:  getEnvFloat("DETECT_IMPOSSIBLE_SPEED_MPS", 300),
			MaxClockSkew:        getEnvDuration("DETECT_MAX_CLOCK_SKEW", 5*time.Minute),
		},
		Providers: ProvidersConfig{
			GeolocationURL:    getEnv("GEOLOCATION_URL", "https://location.services.mozilla.com/v1/geolocate"),
			GeolocationAPIKey: getEnv("GEOLOCATION_API_KEY", ""),
			IPGeolocationURL:  getEnv("IP_GEOLOCATION_URL", "https://api.ipdata.co"),
			IPGeolocationKey:  getEnv("IP_GEOLOCATION_API_KEY", ""),
			Timeout:           getEnvDuration("PROVIDER_TIMEOUT", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			Requests:         getEnvInt("RATE_LIMIT_REQUESTS", 300),
			Window:           getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
			RequestsByDevice: getEnvInt("RATE_LIMIT_BY_DEVICE", 60),
			DeviceWindow:     getEnvDuration("RATE_LIMIT_DEVICE_WINDOW", 10*time.Minute),
		},
		Security: SecurityConfig{
			CORSOrigins:    getEnvSlice("CORS_ORIGINS", []string{"*"}),
			TrustedProxies: getEnvSlice("TRUSTED_PROXIES", []string{}),
		},
		Monitoring: MonitoringConfig{
			EnableMetrics: getEnvBool("ENABLE_METRICS", true),
			LogLevel:      getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Geofence.MinRadiusMeters <= 0 {
		return fmt.Errorf("GEOFENCE_MIN_RADIUS must be positive")
	}
	if c.Geofence.MaxRadiusMeters < c.Geofence.MinRadiusMeters {
		return fmt.Errorf("GEOFENCE_MAX_RADIUS must be >= GEOFENCE_MIN_RADIUS")
	}
	if len(c.Geofence.EnabledMethods) == 0 {
		return fmt.Errorf("ENABLED_METHODS must list at least one method")
	}
	if c.Detection.RelocationSamples < 2 {
		return fmt.Errorf("DETECT_RELOCATION_SAMPLES must be at least 2")
	}
	if c.Detection.AccuracySamples < 2 {
		return fmt.Errorf("DETECT_ACCURACY_SAMPLES must be at least 2")
	}
	if c.Providers.Timeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				result = append(result, item)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
