// Package config loads the runtime settings and the promotion process definitions.
package config

import (
	"github.com/spf13/viper"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EnvPrefix is the prefix of the environment variables that override the settings.
const EnvPrefix = "promoter"

// Settings are the runtime settings of the promoter.
type Settings struct {
	Debug                bool
	LogJSON              bool
	Definitions          string
	DBDSN                string
	HTTPPort             string
	HTTPSCrt             string
	HTTPSKey             string
	AccessKey            string
	JWTSecret            string
	KafkaBrokers         []string
	KafkaGroup           string
	KafkaBuildsTopic     string
	KafkaPromotionsTopic string
	HookAddr             string
	S3Bucket             string
	S3Prefix             string
	WorkspacesDir        string
	GitExe               string
	CheckoutTimeout      time.Duration
}

// NewViper creates the settings source: defaults overridden by the PROMOTER_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("debug", false)
	v.SetDefault("log.json", false)
	v.SetDefault("definitions", "promotions.yml")
	v.SetDefault("http.port", "8080")
	v.SetDefault("kafka.group", "promoter")
	v.SetDefault("kafka.builds_topic", "ci.builds")
	v.SetDefault("kafka.promotions_topic", "promoter.promotions")
	v.SetDefault("s3.prefix", "transcripts")
	v.SetDefault("workspaces.dir", filepath.Join(os.TempDir(), "promoter-workspaces"))
	v.SetDefault("git.exe", "git")
	v.SetDefault("checkout.timeout", time.Duration(0))

	v.SetEnvPrefix(EnvPrefix)
	// PROMOTER_KAFKA_BUILDS_TOPIC overrides kafka.builds_topic
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the settings.
func Load(v *viper.Viper) Settings {
	return Settings{
		Debug:                v.GetBool("debug"),
		LogJSON:              v.GetBool("log.json"),
		Definitions:          v.GetString("definitions"),
		DBDSN:                v.GetString("db.dsn"),
		HTTPPort:             v.GetString("http.port"),
		HTTPSCrt:             v.GetString("https.crt"),
		HTTPSKey:             v.GetString("https.key"),
		AccessKey:            v.GetString("access_key"),
		JWTSecret:            v.GetString("jwt_secret"),
		KafkaBrokers:         splitList(v.GetString("kafka.brokers")),
		KafkaGroup:           v.GetString("kafka.group"),
		KafkaBuildsTopic:     v.GetString("kafka.builds_topic"),
		KafkaPromotionsTopic: v.GetString("kafka.promotions_topic"),
		HookAddr:             v.GetString("hook.addr"),
		S3Bucket:             v.GetString("s3.bucket"),
		S3Prefix:             v.GetString("s3.prefix"),
		WorkspacesDir:        v.GetString("workspaces.dir"),
		GitExe:               v.GetString("git.exe"),
		CheckoutTimeout:      v.GetDuration("checkout.timeout"),
	}
}

func splitList(s string) []string {
	var res []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			res = append(res, item)
		}
	}
	return res
}
