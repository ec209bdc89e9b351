package config

import (
	"os"
	"path"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	Server       Server `yaml:"server"`
	Pg           Pg     `yaml:"pg"`
	TableAPI     string `yaml:"table_api"`      // base URL of the hosted table API; empty => in-memory persistence
	ViewMarkPath string `yaml:"view_mark_path"` // sqlite file holding per-client viewed markers
	LogLevel     string `yaml:"log_level"`
	LogJSON      bool   `yaml:"log_json"`
	MaxPostLen   int    `yaml:"max_post_len"` // reply bodies longer than this are rejected
}

type Server struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Private struct {
	JwtKey      string `yaml:"jwt_key"`
	TableAPIKey string `yaml:"table_api_key"`
}

func (s *Config) JwtKey() string {
	return s.private.JwtKey
}

func (s *Config) TableAPIKey() string {
	return s.private.TableAPIKey
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	if public.MaxPostLen == 0 {
		public.MaxPostLen = 10000
	}

	return &Config{public, private}
}
