package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Media  MediaConfig
	Queue  QueueConfig
}

type ServerConfig struct {
	Addr string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// MediaConfig 上傳圖片落地的公開目錄
type MediaConfig struct {
	Root string
}

// QueueConfig 評分重算隊列：memory 或 redis
type QueueConfig struct {
	Backend    string
	BufferSize int
}

var AppConfig *Config

func LoadConfig() *Config {
	AppConfig = &Config{
		Server: GetServerConfig(),
		Mongo:  GetMongoConfig(),
		Redis:  GetRedisConfig(),
		Media:  GetMediaConfig(),
		Queue:  GetQueueConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8081"},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27018", // 測試 Mongo 用 27018 port
			Database: "test_db",
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     "6380", // 測試 Redis 用 6380 port
			Password: "",
			DB:       1,
		},
		Media: MediaConfig{Root: os.TempDir()},
		Queue: QueueConfig{Backend: "memory", BufferSize: 16},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Addr: getEnv("SERVER_ADDR", ":8080"),
	}
}

func GetMongoConfig() MongoConfig {
	return MongoConfig{
		URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		Database: getEnv("MONGO_DB", "event_booking"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetMediaConfig() MediaConfig {
	return MediaConfig{
		Root: getEnv("MEDIA_ROOT", "public/img/events"),
	}
}

func GetQueueConfig() QueueConfig {
	size, err := strconv.Atoi(getEnv("QUEUE_BUFFER_SIZE", "64"))
	if err != nil {
		panic(err)
	}

	return QueueConfig{
		Backend:    getEnv("QUEUE_BACKEND", "memory"),
		BufferSize: size,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
