// Package config loads the searcher configuration from an optional YAML
// file overlaid with environment variables. Environment always wins, so
// deployments can run file-less with env only.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/newscope/searcher/internal/errors"
)

// Defaults mirroring the deployment manifests.
const (
	DefaultElasticHost   = "https://localhost:9200"
	DefaultElasticUser   = "elastic"
	DefaultRedisHost     = "localhost"
	DefaultRedisPort     = 6379
	DefaultStreamName    = "analyzer_articles"
	DefaultConsumerGroup = "searcher_api"
	DefaultMongoHost     = "localhost"
	DefaultMongoPort     = 27017
	DefaultMongoDB       = "analyzer"
	DefaultMongoColl     = "analyzed_articles"
	DefaultListenAddr    = ":8080"
	DefaultEmbedHost     = "http://localhost:11434"
	DefaultEmbedDims     = 384
)

// Config is the complete searcher configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Server     ServerConfig     `yaml:"server"`
	Elastic    ElasticConfig    `yaml:"elastic"`
	Redis      RedisConfig      `yaml:"redis"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	CORS       CORSConfig       `yaml:"cors"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// ElasticConfig configures the document-store connection.
type ElasticConfig struct {
	Host        string `yaml:"host"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	CAPath      string `yaml:"ca_path"`
	TLSInsecure bool   `yaml:"tls_insecure"`
}

// RedisConfig configures the notification stream.
type RedisConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	StreamName    string `yaml:"stream_name"`
	ConsumerGroup string `yaml:"consumer_group"`
}

// Addr returns the host:port dial address.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MongoConfig configures the intermediate analyzer batch store.
type MongoConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// URI returns the mongodb connection string.
func (c MongoConfig) URI() string {
	return fmt.Sprintf("mongodb://%s:%d", c.Host, c.Port)
}

// EmbeddingsConfig configures the embedding encoder.
type EmbeddingsConfig struct {
	// ModelPath identifies the embedding model served by the encoder.
	ModelPath string `yaml:"model_path"`
	// Host is the embedding server endpoint.
	Host string `yaml:"host"`
	// Dimensions is the fixed embedding dimension D.
	Dimensions int `yaml:"dimensions"`
	// CacheSize is the query-embedding LRU size.
	CacheSize int `yaml:"cache_size"`
}

// CORSConfig configures the HTTP CORS policy.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
}

// Default returns the configuration defaults before file and env overlays.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server:   ServerConfig{ListenAddr: DefaultListenAddr},
		Elastic: ElasticConfig{
			Host: DefaultElasticHost,
			User: DefaultElasticUser,
		},
		Redis: RedisConfig{
			Host:          DefaultRedisHost,
			Port:          DefaultRedisPort,
			StreamName:    DefaultStreamName,
			ConsumerGroup: DefaultConsumerGroup,
		},
		Mongo: MongoConfig{
			Host:       DefaultMongoHost,
			Port:       DefaultMongoPort,
			Database:   DefaultMongoDB,
			Collection: DefaultMongoColl,
		},
		Embeddings: EmbeddingsConfig{
			Host:       DefaultEmbedHost,
			Dimensions: DefaultEmbedDims,
		},
		CORS: CORSConfig{
			AllowedOrigins:   []string{"http://localhost"},
			AllowedMethods:   []string{"*"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (if non-empty), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Startup(fmt.Sprintf("reading config file %s", path), err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Startup(fmt.Sprintf("parsing config file %s", path), err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays recognized environment variables onto the config.
func (c *Config) applyEnv() {
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Server.ListenAddr, "LISTEN_ADDR")

	setString(&c.Elastic.Host, "ELASTIC_HOST")
	setString(&c.Elastic.User, "ELASTIC_USER")
	setString(&c.Elastic.Password, "ELASTIC_PASSWORD")
	setString(&c.Elastic.CAPath, "ELASTIC_CA_PATH")
	setBool(&c.Elastic.TLSInsecure, "ELASTIC_TLS_INSECURE")

	setString(&c.Redis.Host, "REDIS_HOST")
	setInt(&c.Redis.Port, "REDIS_PORT")
	setString(&c.Redis.StreamName, "REDIS_STREAM_NAME")
	setString(&c.Redis.ConsumerGroup, "REDIS_CONSUMER_GROUP")

	setString(&c.Mongo.Host, "MONGO_HOST")
	setInt(&c.Mongo.Port, "MONGO_PORT")
	setString(&c.Mongo.Database, "MONGO_DB_ANALYZER")
	setString(&c.Mongo.Collection, "MONGO_COLLECTION_ANALYZER")

	setString(&c.Embeddings.ModelPath, "EMBEDDINGS_MODEL_PATH")
	setString(&c.Embeddings.Host, "EMBEDDINGS_HOST")
	setInt(&c.Embeddings.Dimensions, "EMBEDDINGS_DIMENSIONS")
	setInt(&c.Embeddings.CacheSize, "EMBEDDINGS_CACHE_SIZE")

	// Space-separated lists, matching the front-end deployment format.
	setList(&c.CORS.AllowedOrigins, "CORS_ALLOWED_ORIGINS")
	setList(&c.CORS.AllowedMethods, "CORS_ALLOWED_METHODS")
	setList(&c.CORS.AllowedHeaders, "CORS_ALLOWED_HEADERS")
	setBool(&c.CORS.AllowCredentials, "CORS_ALLOW_CREDENTIALS")
}

// Validate checks invariants required to start either daemon.
func (c *Config) Validate() error {
	if c.Elastic.Password == "" {
		return errors.Startup("ELASTIC_PASSWORD is not set", nil)
	}
	if c.Embeddings.ModelPath == "" {
		return errors.Startup("EMBEDDINGS_MODEL_PATH is not set", nil)
	}
	if c.Embeddings.Dimensions <= 0 {
		return errors.Startup("embeddings dimensions must be positive", nil)
	}
	return nil
}

// ValidateIngest checks invariants required by the ingest worker only.
// The embedding model is not needed there.
func (c *Config) ValidateIngest() error {
	if c.Elastic.Password == "" {
		return errors.Startup("ELASTIC_PASSWORD is not set", nil)
	}
	if c.Redis.StreamName == "" || c.Redis.ConsumerGroup == "" {
		return errors.Startup("redis stream name and consumer group must be set", nil)
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = strings.EqualFold(v, "true")
	}
}

func setList(dst *[]string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = strings.Fields(v)
	}
}
