package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server       Server
	Database     Database
	GeminiApiKey string
	Sandbox      Sandbox
	Assessment   Assessment
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Sandbox points at the external code-execution service used to grade
// coding answers.
type Sandbox struct {
	URL     string
	Timeout time.Duration
}

// Assessment holds the tuning knobs for scoring, reporting and anti-cheat.
type Assessment struct {
	StrengthThreshold   float64 // skill percentage at or above which a skill counts as a strength
	WeaknessThreshold   float64 // skill percentage below which a skill counts as a weakness
	SimilarityThreshold float64 // plagiarism flag fires at or above this similarity
	MinSecondsPerAnswer float64 // answers recorded faster than this look automated
	SimilarityTimeout   time.Duration
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SANDBOX_TIMEOUT_SECONDS", 10)
	viper.SetDefault("SIMILARITY_TIMEOUT_SECONDS", 10)
	viper.SetDefault("STRENGTH_THRESHOLD", 75.0)
	viper.SetDefault("WEAKNESS_THRESHOLD", 50.0)
	viper.SetDefault("SIMILARITY_THRESHOLD", 0.8)
	viper.SetDefault("MIN_SECONDS_PER_ANSWER", 5.0)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.GeminiApiKey = viper.GetString("GEMINI_API_KEY")

	config.Sandbox.URL = viper.GetString("SANDBOX_URL")
	config.Sandbox.Timeout = time.Duration(viper.GetInt("SANDBOX_TIMEOUT_SECONDS")) * time.Second

	config.Assessment.StrengthThreshold = viper.GetFloat64("STRENGTH_THRESHOLD")
	config.Assessment.WeaknessThreshold = viper.GetFloat64("WEAKNESS_THRESHOLD")
	config.Assessment.SimilarityThreshold = viper.GetFloat64("SIMILARITY_THRESHOLD")
	config.Assessment.MinSecondsPerAnswer = viper.GetFloat64("MIN_SECONDS_PER_ANSWER")
	config.Assessment.SimilarityTimeout = time.Duration(viper.GetInt("SIMILARITY_TIMEOUT_SECONDS")) * time.Second

	log.Info().Str("port", config.Server.Port).Str("db_host", config.Database.Host).Msg("Config loaded")
	return &config, nil
}
