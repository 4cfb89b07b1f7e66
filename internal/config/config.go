package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/titanous/json5"
)

// Targets lists the practice sites each script visits
type Targets struct {
	Static     string `json:"static"`
	Articles   string `json:"articles"`
	Scroll     string `json:"scroll"`
	AJAX       string `json:"ajax"`
	Pagination string `json:"pagination"`
	Ecommerce  string `json:"ecommerce"`
}

// Configuration holds every tunable of the scrape binary
type Configuration struct {
	Database       string  `json:"database"`
	LogFile        string  `json:"logFile"`
	LogLevel       string  `json:"logLevel"`
	OutputDir      string  `json:"outputDir"`
	UserAgent      string  `json:"userAgent"`
	TimeoutSeconds int     `json:"timeoutSeconds"`
	RespectRobots  bool    `json:"respectRobots"`
	MaxPages       int     `json:"maxPages"`
	Schedule       string  `json:"schedule"`
	Targets        Targets `json:"targets"`
}

const (
	EnvDatabase = "SCRAPE_DB"
	EnvLogFile  = "SCRAPE_LOG_FILE"
	EnvLogLevel = "SCRAPE_LOG_LEVEL"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

func Default() Configuration {
	return Configuration{
		Database:       "scraping_data.db",
		LogFile:        "scraping.log",
		LogLevel:       "info",
		OutputDir:      ".",
		UserAgent:      DefaultUserAgent,
		TimeoutSeconds: 10,
		MaxPages:       3,
		Schedule:       "@every 6h",
		Targets: Targets{
			Static:     "https://www.passiton.com/inspirational-quotes",
			Articles:   "https://www.geeksforgeeks.org/python-programming-language/",
			Scroll:     "https://quotes.toscrape.com/scroll",
			AJAX:       "https://webscraper.io/test-sites/e-commerce/ajax",
			Pagination: "https://quotes.toscrape.com/",
			Ecommerce:  "https://webscraper.io/test-sites/e-commerce/allinone",
		},
	}
}

func (c Configuration) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Output resolves a file name against the output directory
func (c Configuration) Output(name string) string {
	if c.OutputDir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.OutputDir, name)
}

// Load starts from Default and layers the config file, its `.local` sibling
// and the environment (including a `.env` file) on top. Missing files are
// not an error.
func Load(name string) (Configuration, error) {
	cfg := Default()

	if name != "" {
		fromFile, err := readConfig[Configuration](name)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := mergo.Merge(&cfg, fromFile, mergo.WithOverride); err != nil {
				return cfg, fmt.Errorf("failed to merge config: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("failed to load .env: %w", err)
	}
	applyEnv(&cfg)

	return cfg, nil
}

func applyEnv(cfg *Configuration) {
	if v := os.Getenv(EnvDatabase); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}

func splitExt(f string) (string, string) {
	i := strings.LastIndexByte(f, '.')
	if i < 0 {
		return f, ""
	}
	return f[:i], f[i+1:]
}

// readConfig merges <name>.<ext> with <name>.local.<ext>, the local file
// taking priority. It returns fs.ErrNotExist when neither exists.
func readConfig[T any](name string) (T, error) {
	var out T
	found := false

	base, err := os.ReadFile(name)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return out, err
	}
	if len(base) > 0 {
		if err := json5.Unmarshal(base, &out); err != nil {
			return out, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		found = true
	}

	prefix, ext := splitExt(filepath.Base(name))
	localPath := filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.local.%s", prefix, ext))
	local, err := os.ReadFile(localPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return out, err
	}
	if len(local) > 0 {
		var override T
		if err := json5.Unmarshal(local, &override); err != nil {
			return out, fmt.Errorf("failed to parse %s: %w", localPath, err)
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, err
		}
		found = true
	}

	if !found {
		return out, fs.ErrNotExist
	}
	return out, nil
}
