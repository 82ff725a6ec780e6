package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds every tunable of the analysis pipeline and its supporting
// services. Load it once at startup and pass it by value to component
// constructors; components never read the environment themselves.
type Config struct {
	// Swing point extraction
	SwingMinDistance      int     // minimum bars between swing points
	SwingProminenceFactor float64 // prominence threshold as a fraction of price stddev
	PivotProminenceFactor float64 // looser factor used for support/resistance pivots

	// ABCD pattern matching
	PatternMinLength     int     // minimum bars from A to D
	PatternMaxLength     int     // maximum bars from A to D
	PatternLookahead     int     // per-leg swing lookahead window
	FibTolerance         float64 // tolerance around ideal Fibonacci ratios
	RetracementMin       float64 // lower bound of valid BC retracement
	RetracementMax       float64 // upper bound of valid BC retracement
	PotentialLookahead   int     // per-leg lookahead for forming patterns
	PotentialStaleBars   int     // bars after C before a forming pattern is stale
	CompletionActionable float64 // completion ratio at which a forming pattern is actionable
	MaxPotentialPatterns int

	// Technical indicators
	MACDFastPeriod   int
	MACDSlowPeriod   int
	MACDSignalPeriod int
	RSIPeriod        int
	VolumeSMAPeriod  int
	VolumeBreakout   float64 // relative volume ratio treated as a breakout
	MinCandles       int     // bars required before indicators leave their defaults

	// Support / resistance
	SRWindow         int     // trailing bars scanned for pivots
	SRTouchPercent   float64 // proximity counted as a touch of a level
	SRMinTouches     int
	SRMaxLevels      int
	SRCurrentPercent float64 // proximity at which a level is "in play"

	// Volatility
	VolatilityWindow int // closes used for annualized volatility

	// Composite scoring component weights
	WeightFundamental float64
	WeightTechnical   float64
	WeightNews        float64
	WeightMomentum    float64

	// Ross Cameron pillar weights
	RossWeightVolume      float64
	RossWeightPriceChange float64
	RossWeightFloat       float64
	RossWeightCatalyst    float64
	RossWeightPriceRange  float64

	// Signal generation
	AccountRiskPercent    float64 // base fraction of account risked per trade
	MaxPositionPercent    float64 // cap on position value as a fraction of account
	RossMinOverallScore   float64 // overall pillar score bar for Ross setups
	RossMinPillarsPassing int     // pillar bars that must pass (out of 5)

	// Batch filter defaults
	FilterMinScore      float64
	FilterMaxRisk       string
	FilterMinConfidence float64

	// Market data client
	APIBaseURL        string
	APIKey            string
	APITimeoutSeconds int
	APIRateLimit      int // requests per second

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Telegram
	TelegramToken  string
	TelegramChatID int64

	// Screener
	ScreenerWorkers int
	ScreenerSymbols []string
}

// Load reads configuration from the environment, falling back to the
// documented defaults for anything unset.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, using environment variables")
	}

	return &Config{
		SwingMinDistance:      getEnvIntWithDefault("SWING_MIN_DISTANCE", 3),
		SwingProminenceFactor: getEnvFloatWithDefault("SWING_PROMINENCE_FACTOR", 0.5),
		PivotProminenceFactor: getEnvFloatWithDefault("PIVOT_PROMINENCE_FACTOR", 0.3),

		PatternMinLength:     getEnvIntWithDefault("PATTERN_MIN_LENGTH", 10),
		PatternMaxLength:     getEnvIntWithDefault("PATTERN_MAX_LENGTH", 50),
		PatternLookahead:     getEnvIntWithDefault("PATTERN_LOOKAHEAD", 8),
		FibTolerance:         getEnvFloatWithDefault("FIB_TOLERANCE", 0.1),
		RetracementMin:       getEnvFloatWithDefault("RETRACEMENT_MIN", 0.382),
		RetracementMax:       getEnvFloatWithDefault("RETRACEMENT_MAX", 0.786),
		PotentialLookahead:   getEnvIntWithDefault("POTENTIAL_LOOKAHEAD", 6),
		PotentialStaleBars:   getEnvIntWithDefault("POTENTIAL_STALE_BARS", 20),
		CompletionActionable: getEnvFloatWithDefault("COMPLETION_ACTIONABLE", 0.75),
		MaxPotentialPatterns: getEnvIntWithDefault("MAX_POTENTIAL_PATTERNS", 5),

		MACDFastPeriod:   getEnvIntWithDefault("MACD_FAST_PERIOD", 12),
		MACDSlowPeriod:   getEnvIntWithDefault("MACD_SLOW_PERIOD", 26),
		MACDSignalPeriod: getEnvIntWithDefault("MACD_SIGNAL_PERIOD", 9),
		RSIPeriod:        getEnvIntWithDefault("RSI_PERIOD", 14),
		VolumeSMAPeriod:  getEnvIntWithDefault("VOLUME_SMA_PERIOD", 20),
		VolumeBreakout:   getEnvFloatWithDefault("VOLUME_BREAKOUT_RATIO", 2.0),
		MinCandles:       getEnvIntWithDefault("MIN_CANDLES", 50),

		SRWindow:         getEnvIntWithDefault("SR_WINDOW", 50),
		SRTouchPercent:   getEnvFloatWithDefault("SR_TOUCH_PERCENT", 0.01),
		SRMinTouches:     getEnvIntWithDefault("SR_MIN_TOUCHES", 2),
		SRMaxLevels:      getEnvIntWithDefault("SR_MAX_LEVELS", 5),
		SRCurrentPercent: getEnvFloatWithDefault("SR_CURRENT_PERCENT", 0.02),

		VolatilityWindow: getEnvIntWithDefault("VOLATILITY_WINDOW", 20),

		WeightFundamental: getEnvFloatWithDefault("WEIGHT_FUNDAMENTAL", 0.25),
		WeightTechnical:   getEnvFloatWithDefault("WEIGHT_TECHNICAL", 0.30),
		WeightNews:        getEnvFloatWithDefault("WEIGHT_NEWS", 0.25),
		WeightMomentum:    getEnvFloatWithDefault("WEIGHT_MOMENTUM", 0.20),

		RossWeightVolume:      getEnvFloatWithDefault("ROSS_WEIGHT_VOLUME", 0.25),
		RossWeightPriceChange: getEnvFloatWithDefault("ROSS_WEIGHT_PRICE_CHANGE", 0.20),
		RossWeightFloat:       getEnvFloatWithDefault("ROSS_WEIGHT_FLOAT", 0.25),
		RossWeightCatalyst:    getEnvFloatWithDefault("ROSS_WEIGHT_CATALYST", 0.20),
		RossWeightPriceRange:  getEnvFloatWithDefault("ROSS_WEIGHT_PRICE_RANGE", 0.10),

		AccountRiskPercent:    getEnvFloatWithDefault("ACCOUNT_RISK_PERCENT", 0.02),
		MaxPositionPercent:    getEnvFloatWithDefault("MAX_POSITION_PERCENT", 0.10),
		RossMinOverallScore:   getEnvFloatWithDefault("ROSS_MIN_OVERALL_SCORE", 80),
		RossMinPillarsPassing: getEnvIntWithDefault("ROSS_MIN_PILLARS_PASSING", 4),

		FilterMinScore:      getEnvFloatWithDefault("FILTER_MIN_SCORE", 70),
		FilterMaxRisk:       getEnvWithDefault("FILTER_MAX_RISK", "medium"),
		FilterMinConfidence: getEnvFloatWithDefault("FILTER_MIN_CONFIDENCE", 0.7),

		APIBaseURL:        getEnvWithDefault("API_BASE_URL", "https://api.twelvedata.com"),
		APIKey:            getEnvWithDefault("API_KEY", ""),
		APITimeoutSeconds: getEnvIntWithDefault("API_TIMEOUT_SECONDS", 15),
		APIRateLimit:      getEnvIntWithDefault("API_RATE_LIMIT", 5),

		DBHost:     getEnvWithDefault("DB_HOST", "localhost"),
		DBPort:     getEnvWithDefault("DB_PORT", "5432"),
		DBUser:     getEnvWithDefault("DB_USER", "postgres"),
		DBPassword: getEnvWithDefault("DB_PASSWORD", ""),
		DBName:     getEnvWithDefault("DB_NAME", "momentum"),
		DBSSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),

		TelegramToken:  getEnvWithDefault("TELEGRAM_TOKEN", ""),
		TelegramChatID: getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0),

		ScreenerWorkers: getEnvIntWithDefault("SCREENER_WORKERS", 4),
		ScreenerSymbols: getEnvListWithDefault("SCREENER_SYMBOLS", []string{}),
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid int value, using default")
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid int value, using default")
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
		log.Warn().Str("key", key).Str("value", value).Msg("invalid float value, using default")
	}
	return defaultValue
}

func getEnvListWithDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
