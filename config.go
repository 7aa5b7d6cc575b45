package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const defaultConfigFile = "conf/config.json"

type Config struct {
	Pixabay struct {
		Key     string `json:"key"`
		BaseUrl string `json:"baseUrl"`
		Timeout int    `json:"timeout"`
	} `json:"pixabay.com"`
	Cache struct {
		Size int `json:"size"`
		TTL  int `json:"ttl"`
	} `json:"cache"`
	Server struct {
		Listen   string `json:"listen"`
		PageSize int    `json:"pageSize"`
	} `json:"server"`
	Browse struct {
		Placeholders bool   `json:"placeholders"`
		LogFile      string `json:"logFile"`
	} `json:"browse"`
	Debug struct {
		PrettyJson bool `json:"prettyJson"`
	}
}

// logOutput is where every component logger writes. Browse mode points it
// away from the terminal before anything is constructed.
var logOutput io.Writer = os.Stderr

func newLogger(prefix string) *log.Logger {
	return log.New(logOutput, prefix, log.LstdFlags)
}

func defaultConfig() Config {
	var cfg Config
	cfg.Cache.Size = defaultCacheSize
	cfg.Cache.TTL = defaultCacheTTL
	cfg.Pixabay.Timeout = defaultTimeout
	cfg.Server.Listen = ":8081"
	cfg.Server.PageSize = PageSize
	return cfg
}

// loadConfig reads the JSON config at path, then applies .env and
// environment overrides. A missing file is not an error; the key can come
// from the environment alone.
func loadConfig(path string, cfg *Config) error {
	f, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return err
	default:
		defer f.Close()
		decoder := json.NewDecoder(f)
		switch err := decoder.Decode(cfg).(type) {
		case nil:
		case *json.SyntaxError:
			f.Seek(0, io.SeekStart)
			pos := findPos(bufio.NewReader(f), int(err.Offset))
			return fmt.Errorf("unable to decode configuration file (Line: %d, Pos: %d); - %v", pos.line, pos.pos, err.Error())
		default:
			return fmt.Errorf("unable to decode configuration file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	cfg.Pixabay.Key = getEnv("PIXABAY_KEY", cfg.Pixabay.Key)
	cfg.Pixabay.BaseUrl = getEnv("PIXABAY_BASE_URL", cfg.Pixabay.BaseUrl)
	cfg.Server.Listen = getEnv("SERVER_LISTEN", cfg.Server.Listen)
	cfg.Cache.TTL = getEnvInt("CACHE_TTL", cfg.Cache.TTL)
	return nil
}

type FilePos struct {
	line int
	pos  int
}

func findPos(file *bufio.Reader, offset int) FilePos {
	p := FilePos{line: 1, pos: offset}
	var lineLen int
	for line, err := file.ReadBytes('\n'); len(line) > 0 && err == nil; line, err = file.ReadBytes('\n') {
		if p.pos < len(line) {
			return p
		}
		lineLen += len(line)
		if line[len(line)-1] == '\n' {
			p.line += 1
			p.pos -= lineLen
			lineLen = 0
		}
	}
	return p
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}
