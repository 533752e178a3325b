package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/stockkeeper/internal/flagx"
	"github.com/dmitrijs2005/stockkeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of the configuration, shared by the JSON
// and YAML loaders. Durations accept "15m" or integer nanoseconds.
//
// Only the fields present in the file override the current Config.
type fileConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	EndpointAddrHTTP             string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	PublicBaseURL                string         `json:"public_base_url" yaml:"public_base_url"`
	DatabaseDSN                  string         `json:"database_dsn" yaml:"database_dsn"`
	AccessSecret                 string         `json:"access_secret" yaml:"access_secret"`
	ResourceSecret               string         `json:"resource_secret" yaml:"resource_secret"`
	AdminUsername                string         `json:"admin_username" yaml:"admin_username"`
	AdminPassword                string         `json:"admin_password" yaml:"admin_password"`
	HashCost                     int            `json:"hash_cost" yaml:"hash_cost"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	AdminTokenValidityDuration   timex.Duration `json:"admin_token_validity_duration" yaml:"admin_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration" yaml:"refresh_token_validity_duration"`
	RefreshStore                 string         `json:"refresh_store" yaml:"refresh_store"`
	RedisAddr                    string         `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword                string         `json:"redis_password" yaml:"redis_password"`
	S3RootUser                   string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                     string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	LogLevel                     string         `json:"log_level" yaml:"log_level"`
	LogFormat                    string         `json:"log_format" yaml:"log_format"`
}

// parseFile loads the file named by -c/-config into config. The format is
// picked by extension: .yaml and .yml use YAML, anything else JSON.
// No flag means nothing to load.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fc := &fileConfig{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	fc.apply(config)
	return nil
}

func (fc *fileConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&config.PublicBaseURL, fc.PublicBaseURL)
	setString(&config.DatabaseDSN, fc.DatabaseDSN)
	setString(&config.AccessSecret, fc.AccessSecret)
	setString(&config.ResourceSecret, fc.ResourceSecret)
	setString(&config.AdminUsername, fc.AdminUsername)
	setString(&config.AdminPassword, fc.AdminPassword)
	setString(&config.RefreshStore, fc.RefreshStore)
	setString(&config.RedisAddr, fc.RedisAddr)
	setString(&config.RedisPassword, fc.RedisPassword)
	setString(&config.S3RootUser, fc.S3RootUser)
	setString(&config.S3RootPassword, fc.S3RootPassword)
	setString(&config.S3Bucket, fc.S3Bucket)
	setString(&config.S3Region, fc.S3Region)
	setString(&config.S3BaseEndpoint, fc.S3BaseEndpoint)
	setString(&config.LogLevel, fc.LogLevel)
	setString(&config.LogFormat, fc.LogFormat)

	if fc.HashCost != 0 {
		config.HashCost = fc.HashCost
	}
	if fc.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	if fc.AdminTokenValidityDuration.Duration != 0 {
		config.AdminTokenValidityDuration = fc.AdminTokenValidityDuration.Duration
	}
	if fc.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = fc.RefreshTokenValidityDuration.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
