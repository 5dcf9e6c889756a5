package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Triage    TriageConfig
	Emergency EmergencyConfig
	Booking   BookingConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// TriageConfig holds the severity scorer tuning parameters.
// ScoreCap normalizes the additive weight sum; the two thresholds split the
// normalized score into three ordered severity tiers.
type TriageConfig struct {
	ScoreCap          float64
	CriticalThreshold float64
	UrgentThreshold   float64
	LexiconPath       string
}

type EmergencyConfig struct {
	Channels        []string
	NotifyRetries   int
	NotifyBackoff   time.Duration
	NotifyTimeout   time.Duration
	LocationTimeout time.Duration
	StaffPhone      string
	StaffEmail      string
	WhatsAppNumber  string
	ProviderURL     string
}

type BookingConfig struct {
	LockTTL      time.Duration
	SlotMinutes  int
	RequireLock  bool
	LedgerDriver string // "memory" or "redis"
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.SetDefault("TRIAGE_SCORE_CAP", 2.0)
	viper.SetDefault("TRIAGE_CRITICAL_THRESHOLD", 0.7)
	viper.SetDefault("TRIAGE_URGENT_THRESHOLD", 0.4)
	viper.SetDefault("EMERGENCY_CHANNELS", "dashboard sms whatsapp email")
	viper.SetDefault("EMERGENCY_NOTIFY_RETRIES", 3)
	viper.SetDefault("BOOKING_SLOT_MINUTES", 30)
	viper.SetDefault("BOOKING_REQUIRE_LOCK", false)
	viper.SetDefault("BOOKING_LEDGER_DRIVER", "memory")

	notifyBackoff, err := time.ParseDuration(viper.GetString("EMERGENCY_NOTIFY_BACKOFF"))
	if err != nil {
		notifyBackoff = 500 * time.Millisecond
	}

	notifyTimeout, err := time.ParseDuration(viper.GetString("EMERGENCY_NOTIFY_TIMEOUT"))
	if err != nil {
		notifyTimeout = 10 * time.Second
	}

	locationTimeout, err := time.ParseDuration(viper.GetString("EMERGENCY_LOCATION_TIMEOUT"))
	if err != nil {
		locationTimeout = 2 * time.Minute
	}

	lockTTL, err := time.ParseDuration(viper.GetString("BOOKING_LOCK_TTL"))
	if err != nil {
		lockTTL = 2 * time.Minute
	}

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Triage: TriageConfig{
			ScoreCap:          viper.GetFloat64("TRIAGE_SCORE_CAP"),
			CriticalThreshold: viper.GetFloat64("TRIAGE_CRITICAL_THRESHOLD"),
			UrgentThreshold:   viper.GetFloat64("TRIAGE_URGENT_THRESHOLD"),
			LexiconPath:       viper.GetString("TRIAGE_LEXICON_PATH"),
		},
		Emergency: EmergencyConfig{
			Channels:        viper.GetStringSlice("EMERGENCY_CHANNELS"),
			NotifyRetries:   viper.GetInt("EMERGENCY_NOTIFY_RETRIES"),
			NotifyBackoff:   notifyBackoff,
			NotifyTimeout:   notifyTimeout,
			LocationTimeout: locationTimeout,
			StaffPhone:      viper.GetString("EMERGENCY_STAFF_PHONE"),
			StaffEmail:      viper.GetString("EMERGENCY_STAFF_EMAIL"),
			WhatsAppNumber:  viper.GetString("EMERGENCY_WHATSAPP_NUMBER"),
			ProviderURL:     viper.GetString("EMERGENCY_PROVIDER_URL"),
		},
		Booking: BookingConfig{
			LockTTL:      lockTTL,
			SlotMinutes:  viper.GetInt("BOOKING_SLOT_MINUTES"),
			RequireLock:  viper.GetBool("BOOKING_REQUIRE_LOCK"),
			LedgerDriver: viper.GetString("BOOKING_LEDGER_DRIVER"),
		},
	}

	return config, nil
}
