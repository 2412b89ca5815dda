package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/identitystore/internal/flagx"
	"github.com/dmitrijs2005/identitystore/internal/timex"
	"gopkg.in/yaml.v3"
)

// JsonConfig mirrors Config for file decoding. Files ending in .yaml or .yml
// are read as YAML, anything else as JSON. Durations use timex.Duration so
// both "1h" and integer nanoseconds are accepted.
type JsonConfig struct {
	DatabaseDSN       string              `json:"database_dsn" yaml:"database_dsn"`
	SecretKey         string              `json:"secret_key" yaml:"secret_key"`
	Argon2MemoryKiB   uint32              `json:"argon2_memory_kib" yaml:"argon2_memory_kib"`
	Argon2Iterations  uint32              `json:"argon2_iterations" yaml:"argon2_iterations"`
	Argon2Parallelism uint8               `json:"argon2_parallelism" yaml:"argon2_parallelism"`
	S3RootUser        string              `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword    string              `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket          string              `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region          string              `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint    string              `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	AvatarURLValidity timex.Duration      `json:"avatar_url_validity" yaml:"avatar_url_validity"`
	LogLevel          string              `json:"log_level" yaml:"log_level"`
	LogFormat         string              `json:"log_format" yaml:"log_format"`
	AuthzMode         string              `json:"authz_mode" yaml:"authz_mode"`
	RolePermissions   map[string][]string `json:"role_permissions" yaml:"role_permissions"`
}

// parseJson overlays values from the config file named by -c or -config.
// Keys absent from the file leave the current value untouched. Without the
// flag nothing is loaded. An unreadable or undecodable file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	switch strings.ToLower(filepath.Ext(jsonConfigFile)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(file, c)
	default:
		err = json.Unmarshal(file, c)
	}
	if err != nil {
		panic(err)
	}

	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.Argon2MemoryKiB != 0 {
		config.Argon2MemoryKiB = c.Argon2MemoryKiB
	}
	if c.Argon2Iterations != 0 {
		config.Argon2Iterations = c.Argon2Iterations
	}
	if c.Argon2Parallelism != 0 {
		config.Argon2Parallelism = c.Argon2Parallelism
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.AvatarURLValidity.Duration != 0 {
		config.AvatarURLValidity = c.AvatarURLValidity.Duration
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.AuthzMode, c.AuthzMode)
	if c.RolePermissions != nil {
		config.RolePermissions = c.RolePermissions
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
