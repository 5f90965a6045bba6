package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port      string `yaml:"port"`
		PublicURL string `yaml:"public_url"`
	} `yaml:"server"`
	Telegram struct {
		Token       string `yaml:"token"`
		WebhookURL  string `yaml:"webhook_url"`
		Listen      string `yaml:"listen"`
		PollTimeout string `yaml:"poll_timeout"`
	} `yaml:"telegram"`
	Images struct {
		BaseDir string `yaml:"base_dir"`
	} `yaml:"images"`
	AnswerKey struct {
		CSVPath       string `yaml:"csv_path"`
		TFThreshold   int    `yaml:"tf_threshold"`
		SyntheticSize int    `yaml:"synthetic_size"`
		TTL           string `yaml:"ttl"`
	} `yaml:"answerkey"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Stats struct {
		Path string `yaml:"path"`
	} `yaml:"stats"`
	Quiz struct {
		Pacing    string `yaml:"pacing"`
		DetailCap int    `yaml:"detail_cap"`
		TopN      int    `yaml:"top_n"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string or returns the fallback if empty or
// invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
