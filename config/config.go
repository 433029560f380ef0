package config

import (
	"time"

	"medical-appointment-service/internal/scheduling"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Scheduling   SchedulingConfig
	Reminder     ReminderConfig
	Notification NotificationConfig
	UserService  UserServiceConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type DBConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	MigrationsPath string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type SchedulingConfig struct {
	BusinessHoursStart string
	BusinessHoursEnd   string
	SlotStep           time.Duration
	AdvanceBookingDays int
	CancellationCutoff time.Duration
	DoctorLockTTL      time.Duration
	CacheTTL           time.Duration
}

// BusinessHours returns the configured daily booking window.
func (c SchedulingConfig) BusinessHours() scheduling.BusinessHours {
	return scheduling.BusinessHours{Start: c.BusinessHoursStart, End: c.BusinessHoursEnd}
}

type ReminderConfig struct {
	Window   time.Duration
	Interval time.Duration
}

type NotificationConfig struct {
	Channel   string
	QueueSize int
}

type UserServiceConfig struct {
	BaseURL string
	Timeout time.Duration
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}

func stringOrDefault(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func intOrDefault(key string, fallback int) int {
	if v := viper.GetInt(key); v != 0 {
		return v
	}
	return fallback
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		DB: DBConfig{
			Host:           viper.GetString("DB_HOST"),
			Port:           viper.GetString("DB_PORT"),
			User:           viper.GetString("DB_USER"),
			Password:       viper.GetString("DB_PASSWORD"),
			Name:           viper.GetString("DB_NAME"),
			MigrationsPath: stringOrDefault("DB_MIGRATIONS_PATH", "db/migrations"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		Scheduling: SchedulingConfig{
			BusinessHoursStart: stringOrDefault("BUSINESS_HOURS_START", "08:00"),
			BusinessHoursEnd:   stringOrDefault("BUSINESS_HOURS_END", "18:00"),
			SlotStep:           durationOrDefault("SLOT_STEP", 30*time.Minute),
			AdvanceBookingDays: intOrDefault("ADVANCE_BOOKING_DAYS", 30),
			CancellationCutoff: durationOrDefault("CANCELLATION_CUTOFF", 24*time.Hour),
			DoctorLockTTL:      durationOrDefault("DOCTOR_LOCK_TTL", 5*time.Second),
			CacheTTL:           durationOrDefault("APPOINTMENT_CACHE_TTL", 5*time.Minute),
		},
		Reminder: ReminderConfig{
			Window:   durationOrDefault("REMINDER_WINDOW", 24*time.Hour),
			Interval: durationOrDefault("REMINDER_INTERVAL", 5*time.Minute),
		},
		Notification: NotificationConfig{
			Channel:   stringOrDefault("NOTIFICATION_CHANNEL", "appointment-notifications"),
			QueueSize: intOrDefault("NOTIFICATION_QUEUE_SIZE", 256),
		},
		UserService: UserServiceConfig{
			BaseURL: viper.GetString("USER_SERVICE_URL"),
			Timeout: durationOrDefault("USER_SERVICE_TIMEOUT", 5*time.Second),
		},
	}

	return config, nil
}
