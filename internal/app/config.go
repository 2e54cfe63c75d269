package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lumenlabs/creatorchat-backend/internal/guard"
	"github.com/lumenlabs/creatorchat-backend/internal/modules/chat"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/envutil"
	"github.com/lumenlabs/creatorchat-backend/internal/platform/logger"
)

type Config struct {
	Addr    string
	LogMode string
	Env     string
	Version string

	Chat chat.Config
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Addr:    envutil.Str("HTTP_ADDR", ":8080"),
		LogMode: envutil.Str("LOG_MODE", "development"),
		Env:     envutil.Str("APP_ENV", "development"),
		Version: envutil.Str("APP_VERSION", "dev"),
		Chat:    chat.DefaultConfig(),
	}

	if path := strings.TrimSpace(os.Getenv("RETRIEVAL_TUNING_PATH")); path != "" {
		if err := applyRetrievalTuning(&cfg.Chat, path); err != nil {
			log.Warn("Retrieval tuning file ignored", "path", path, "error", err)
		} else {
			log.Info("Retrieval tuning applied", "path", path)
		}
	}
	return cfg
}

// Tuning file shape. Every field is optional; anything absent keeps its
// default.
type retrievalTuning struct {
	Profiles map[string]struct {
		MatchCount         *int     `yaml:"matchCount"`
		MinThreshold       *float64 `yaml:"minThreshold"`
		PreferredThreshold *float64 `yaml:"preferredThreshold"`
		RequiresTimestamp  *bool    `yaml:"requiresTimestamp"`
	} `yaml:"profiles"`
	Floors struct {
		AnyAnswer *float64 `yaml:"minSimilarityForAnyAnswer"`
		Confident *float64 `yaml:"minSimilarityForConfidentAnswer"`
	} `yaml:"floors"`
	Limits struct {
		Authenticated *limitTuning `yaml:"authenticated"`
		Public        *limitTuning `yaml:"public"`
	} `yaml:"limits"`
}

type limitTuning struct {
	Limit         int `yaml:"limit"`
	WindowSeconds int `yaml:"windowSeconds"`
}

func applyRetrievalTuning(cfg *chat.Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var tuning retrievalTuning
	if err := yaml.Unmarshal(raw, &tuning); err != nil {
		return fmt.Errorf("tuning parse: %w", err)
	}

	for name, p := range tuning.Profiles {
		qt := chat.QuestionType(name)
		profile, ok := cfg.Profiles[qt]
		if !ok {
			return fmt.Errorf("unknown question type %q", name)
		}
		if p.MatchCount != nil {
			profile.MatchCount = *p.MatchCount
		}
		if p.MinThreshold != nil {
			profile.MinThreshold = *p.MinThreshold
		}
		if p.PreferredThreshold != nil {
			profile.PreferredThreshold = *p.PreferredThreshold
		}
		if p.RequiresTimestamp != nil {
			profile.RequiresTimestamp = *p.RequiresTimestamp
		}
		cfg.Profiles[qt] = profile
	}
	if tuning.Floors.AnyAnswer != nil {
		cfg.MinSimilarityForAnyAnswer = *tuning.Floors.AnyAnswer
	}
	if tuning.Floors.Confident != nil {
		cfg.MinSimilarityForConfidentAnswer = *tuning.Floors.Confident
	}
	if t := tuning.Limits.Authenticated; t != nil && t.Limit > 0 && t.WindowSeconds > 0 {
		cfg.AuthenticatedLimit = guard.LimitProfile{Limit: t.Limit, Window: time.Duration(t.WindowSeconds) * time.Second}
	}
	if t := tuning.Limits.Public; t != nil && t.Limit > 0 && t.WindowSeconds > 0 {
		cfg.PublicLimit = guard.LimitProfile{Limit: t.Limit, Window: time.Duration(t.WindowSeconds) * time.Second}
	}
	return nil
}
