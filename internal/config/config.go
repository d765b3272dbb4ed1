package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Model    ModelConfig
	Trainer  TrainerConfig
	Scorer   ScorerConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type ModelConfig struct {
	ArtifactPath string
	Version      string
}

type TrainerConfig struct {
	DataPath     string
	TestFraction float64
	Seed         int64
	Estimators   int
	LearningRate float64
	MaxDepth     int
}

type ScorerConfig struct {
	BatchSize int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "5555"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "marketplace_db"),
		},
		Model: ModelConfig{
			ArtifactPath: getEnv("MODEL_PATH", "./lead_scoring_model.json"),
			Version:      getEnv("MODEL_VERSION", "v1.0"),
		},
		Trainer: TrainerConfig{
			DataPath:     getEnv("TRAINING_DATA_PATH", "./training_data.csv"),
			TestFraction: getEnvAsFloat("TRAIN_TEST_FRACTION", 0.2),
			Seed:         getEnvAsInt64("TRAIN_SEED", 42),
			Estimators:   getEnvAsInt("TRAIN_ESTIMATORS", 100),
			LearningRate: getEnvAsFloat("TRAIN_LEARNING_RATE", 0.1),
			MaxDepth:     getEnvAsInt("TRAIN_MAX_DEPTH", 3),
		},
		Scorer: ScorerConfig{
			BatchSize: getEnvAsInt("SCORER_BATCH_SIZE", 100),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
