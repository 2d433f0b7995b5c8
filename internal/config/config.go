// Package config handles loading and validation of pipeline configuration.
//
// Configuration is sourced from the environment, optionally seeded from an
// etl.yaml file whose values may reference ${ENV_VARS}. The resulting Config
// is built once at startup and passed into each component's constructor.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults applied when neither file nor environment supplies a value.
const (
	DefaultAPIBaseURL = "https://www.predictit.org/api/marketdata/all/"
	DefaultRegion     = "us-east-1"
	DefaultBucket     = "predictit-etl-raw-landing"
	DefaultStageName  = "PREDICTIT_S3_STAGE"
	DefaultKeyPrefix  = "predictit/raw"
	DefaultOutputDir  = "/tmp/etl_data"
)

// APIConfig configures the market data source endpoint.
type APIConfig struct {
	BaseURL string `yaml:"baseURL"`
	Token   string `yaml:"token"`
}

// AWSConfig configures the object store landing zone.
type AWSConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	Bucket          string `yaml:"bucket"`
}

// SnowflakeConfig configures the warehouse connection.
type SnowflakeConfig struct {
	Account   string `yaml:"account"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Warehouse string `yaml:"warehouse"`
	Database  string `yaml:"database"`
	Schema    string `yaml:"schema"`
	Role      string `yaml:"role"`

	// AnalyticsSchema holds the summary and metrics tables; Schema holds
	// the staging and raw tables.
	AnalyticsSchema string `yaml:"analyticsSchema"`

	// PasswordSecretARN, when set, resolves the password from AWS Secrets
	// Manager instead of the environment.
	PasswordSecretARN string `yaml:"passwordSecretARN"`
}

// PipelineConfig configures the run itself.
type PipelineConfig struct {
	OutputDir string `yaml:"outputDir"`
	StageName string `yaml:"stageName"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// AlertConfig configures one alert sink.
type AlertConfig struct {
	Type     string `yaml:"type"` // console, webhook, sns
	URL      string `yaml:"url,omitempty"`
	TopicARN string `yaml:"topicARN,omitempty"`
}

// RunLogConfig configures the optional Postgres run-history store.
type RunLogConfig struct {
	DSN string `yaml:"dsn"`
}

// Config is the full pipeline configuration.
type Config struct {
	API       APIConfig       `yaml:"api"`
	AWS       AWSConfig       `yaml:"aws"`
	Snowflake SnowflakeConfig `yaml:"snowflake"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Alerts    []AlertConfig   `yaml:"alerts"`
	RunLog    RunLogConfig    `yaml:"runLog"`
}

// Load builds a Config: YAML file (if path is non-empty) with ${VAR}
// expansion, then environment overlay, then defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	cfg.overlayEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// FromEnv builds a Config from the environment alone.
func FromEnv() *Config {
	cfg, _ := Load("")
	return cfg
}

func (c *Config) overlayEnv() {
	setIfEnv(&c.API.BaseURL, "API_BASE_URL")
	setIfEnv(&c.API.Token, "API_TOKEN")

	setIfEnv(&c.AWS.Region, "AWS_REGION")
	setIfEnv(&c.AWS.AccessKeyID, "AWS_ACCESS_KEY_ID")
	setIfEnv(&c.AWS.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
	setIfEnv(&c.AWS.Bucket, "S3_BUCKET_NAME")

	setIfEnv(&c.Snowflake.Account, "SNOWFLAKE_ACCOUNT")
	setIfEnv(&c.Snowflake.User, "SNOWFLAKE_USER")
	setIfEnv(&c.Snowflake.Password, "SNOWFLAKE_PASSWORD")
	setIfEnv(&c.Snowflake.Warehouse, "SNOWFLAKE_WAREHOUSE")
	setIfEnv(&c.Snowflake.Database, "SNOWFLAKE_DATABASE")
	setIfEnv(&c.Snowflake.Schema, "SNOWFLAKE_SCHEMA")
	setIfEnv(&c.Snowflake.Role, "SNOWFLAKE_ROLE")
	setIfEnv(&c.Snowflake.AnalyticsSchema, "SNOWFLAKE_ANALYTICS_SCHEMA")
	setIfEnv(&c.Snowflake.PasswordSecretARN, "SNOWFLAKE_PASSWORD_SECRET_ARN")

	setIfEnv(&c.Pipeline.OutputDir, "ETL_OUTPUT_DIR")
	setIfEnv(&c.Pipeline.StageName, "ETL_STAGE_NAME")
	setIfEnv(&c.Pipeline.KeyPrefix, "ETL_KEY_PREFIX")

	setIfEnv(&c.RunLog.DSN, "RUN_LOG_DSN")
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultAPIBaseURL
	}
	if c.AWS.Region == "" {
		c.AWS.Region = DefaultRegion
	}
	if c.AWS.Bucket == "" {
		c.AWS.Bucket = DefaultBucket
	}
	if c.Snowflake.AnalyticsSchema == "" {
		c.Snowflake.AnalyticsSchema = "ANALYTICS"
	}
	if c.Pipeline.OutputDir == "" {
		c.Pipeline.OutputDir = DefaultOutputDir
	}
	if c.Pipeline.StageName == "" {
		c.Pipeline.StageName = DefaultStageName
	}
	if c.Pipeline.KeyPrefix == "" {
		c.Pipeline.KeyPrefix = DefaultKeyPrefix
	}
	if len(c.Alerts) == 0 {
		c.Alerts = []AlertConfig{{Type: "console"}}
	}
}

// Validate checks every field a full pipeline run needs.
func (c *Config) Validate() error {
	if err := c.ValidateAPI(); err != nil {
		return err
	}
	if err := c.ValidateAWS(); err != nil {
		return err
	}
	return c.ValidateSnowflake()
}

// ValidateAPI checks the fields the extract step needs.
func (c *Config) ValidateAPI() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.baseURL is required (API_BASE_URL)")
	}
	return nil
}

// ValidateAWS checks the fields the upload and stage steps need.
func (c *Config) ValidateAWS() error {
	if c.AWS.Bucket == "" {
		return fmt.Errorf("aws.bucket is required (S3_BUCKET_NAME)")
	}
	if c.AWS.AccessKeyID == "" {
		return fmt.Errorf("aws.accessKeyID is required (AWS_ACCESS_KEY_ID)")
	}
	if c.AWS.SecretAccessKey == "" {
		return fmt.Errorf("aws.secretAccessKey is required (AWS_SECRET_ACCESS_KEY)")
	}
	return nil
}

// ValidateSnowflake checks the fields the warehouse steps need.
func (c *Config) ValidateSnowflake() error {
	if c.Snowflake.Account == "" {
		return fmt.Errorf("snowflake.account is required (SNOWFLAKE_ACCOUNT)")
	}
	if c.Snowflake.User == "" {
		return fmt.Errorf("snowflake.user is required (SNOWFLAKE_USER)")
	}
	if c.Snowflake.Password == "" && c.Snowflake.PasswordSecretARN == "" {
		return fmt.Errorf("snowflake.password is required (SNOWFLAKE_PASSWORD or SNOWFLAKE_PASSWORD_SECRET_ARN)")
	}
	if c.Snowflake.Warehouse == "" {
		return fmt.Errorf("snowflake.warehouse is required (SNOWFLAKE_WAREHOUSE)")
	}
	if c.Snowflake.Database == "" {
		return fmt.Errorf("snowflake.database is required (SNOWFLAKE_DATABASE)")
	}
	if c.Snowflake.Schema == "" {
		return fmt.Errorf("snowflake.schema is required (SNOWFLAKE_SCHEMA)")
	}
	return nil
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
