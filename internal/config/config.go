// Package config loads the YAML configuration describing where the defensive
// event tables live and which columns each category uses.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pable/go-defense-metrics/internal/model"
)

// EnvDataDir overrides Config.DataDir when set.
const EnvDataDir = "DEFMETRICS_DATA_DIR"

// Config holds all defmetrics configuration.
type Config struct {
	// DataDir is the base directory for relative source paths.
	DataDir string `yaml:"data_dir"`

	// Key names the composite-key columns shared by every category.
	Key KeyColumns `yaml:"key"`

	// Normalize lists the columns the loader coerces.
	Normalize NormalizeConfig `yaml:"normalize"`

	// Master enumerates teams and games for the global selection.
	Master MasterConfig `yaml:"master"`

	// Categories in display order.
	Categories []CategoryConfig `yaml:"categories"`

	Logging LoggingConfig `yaml:"logging"`
}

// KeyColumns are the column names making up the composite key.
type KeyColumns struct {
	SeasonID  string `yaml:"season_id"`
	GameID    string `yaml:"game_id"`
	PlayerID  string `yaml:"player_id"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	GameDate  string `yaml:"game_date"`
	OffTeam   string `yaml:"off_team"`
	DefTeam   string `yaml:"def_team"`
}

// Names returns the key columns in canonical order.
func (k KeyColumns) Names() []string {
	return []string{k.SeasonID, k.GameID, k.PlayerID, k.FirstName, k.LastName, k.GameDate, k.OffTeam, k.DefTeam}
}

// NormalizeConfig names the identifier and string columns the loader normalizes.
// The same lists apply to every source so composite keys stay comparable.
type NormalizeConfig struct {
	IDColumns     []string `yaml:"id_columns"`
	StringColumns []string `yaml:"string_columns"`
}

// MasterConfig configures the source that enumerates teams and games.
type MasterConfig struct {
	Source         string `yaml:"source"`
	TeamColumn     string `yaml:"team_column"`
	GameIDColumn   string `yaml:"game_id_column"`
	GameDateColumn string `yaml:"game_date_column"`
	OpponentColumn string `yaml:"opponent_column"`
}

// CategoryConfig is the per-category schema.
type CategoryConfig struct {
	Name   model.Category `yaml:"name"`
	Title  string         `yaml:"title"`
	Source string         `yaml:"source"`

	OutcomeColumn string `yaml:"outcome_column"`
	EventIDColumn string `yaml:"event_id_column"`
	ChanceColumn  string `yaml:"chance_column"`

	// Optional columns; empty means the category has none.
	SubtypeColumn     string `yaml:"subtype_column,omitempty"`
	SubtypeLabel      string `yaml:"subtype_label,omitempty"`
	NavTypeColumn     string `yaml:"navtype_column,omitempty"`
	NavTypeLabel      string `yaml:"navtype_label,omitempty"`
	PlayerKeyFallback string `yaml:"player_key_fallback,omitempty"`

	DefenderNameColumns []string `yaml:"defender_name_columns"`
	CountLabel          string   `yaml:"count_label"`
	SummarySuffix       string   `yaml:"summary_suffix"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the configuration matching the standard four-table layout.
func DefaultConfig() *Config {
	return &Config{
		DataDir: ".",
		Key: KeyColumns{
			SeasonID:  "SeasonKey",
			GameID:    "GameKey",
			PlayerID:  "PlayerKey",
			FirstName: "firstName",
			LastName:  "lastName",
			GameDate:  "game_date",
			OffTeam:   "OTeamAbbrev",
			DefTeam:   "DTeamAbbrev",
		},
		Normalize: NormalizeConfig{
			IDColumns:     []string{"SeasonKey", "GameKey", "PlayerKey", "DPlayerKey"},
			StringColumns: []string{"firstName", "lastName", "OTeamAbbrev", "DTeamAbbrev", "game_date"},
		},
		Master: MasterConfig{
			Source:         "picks_defended_test.csv",
			TeamColumn:     "DTeamAbbrev",
			GameIDColumn:   "GameKey",
			GameDateColumn: "game_date",
			OpponentColumn: "OTeamAbbrev",
		},
		Categories: []CategoryConfig{
			{
				Name:                model.CategoryPicks,
				Title:               "Picks Defended",
				Source:              "picks_defended_test.csv",
				OutcomeColumn:       "pick_defense_outcome",
				EventIDColumn:       "PickKey",
				ChanceColumn:        "chance_id",
				SubtypeColumn:       "scr_def_type",
				SubtypeLabel:        "Def Type",
				PlayerKeyFallback:   "DPlayerKey",
				DefenderNameColumns: []string{"BallHandlerDefenderName"},
				CountLabel:          "picks",
				SummarySuffix:       "bhr_def",
			},
			{
				Name:                model.CategoryScreens,
				Title:               "Screener Defender Defended",
				Source:              "scr_defended_test.csv",
				OutcomeColumn:       "drive_label",
				EventIDColumn:       "DriveKey",
				ChanceColumn:        "chance_id",
				DefenderNameColumns: []string{"firstName", "lastName"},
				CountLabel:          "drives",
				SummarySuffix:       "scr_def",
			},
			{
				Name:                model.CategoryIso,
				Title:               "Isos Defended",
				Source:              "iso_defended_test.csv",
				OutcomeColumn:       "drive_label",
				EventIDColumn:       "DriveKey",
				ChanceColumn:        "chance_id",
				DefenderNameColumns: []string{"firstName", "lastName"},
				CountLabel:          "drives",
				SummarySuffix:       "iso",
			},
			{
				Name:                model.CategoryCloseouts,
				Title:               "Closeouts Defended",
				Source:              "closeouts_defended_test.csv",
				OutcomeColumn:       "drive_label",
				EventIDColumn:       "DriveKey",
				ChanceColumn:        "chance_id",
				DefenderNameColumns: []string{"firstName", "lastName"},
				CountLabel:          "drives",
				SummarySuffix:       "closeout",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		c.DataDir = dir
	}
}

// Validate checks that every category is usable.
func (c *Config) Validate() error {
	if c.Master.Source == "" {
		return fmt.Errorf("config: master.source is required")
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("config: at least one category is required")
	}
	seen := make(map[model.Category]bool, len(c.Categories))
	for i, cat := range c.Categories {
		switch {
		case cat.Name == "":
			return fmt.Errorf("config: categories[%d]: name is required", i)
		case cat.Source == "":
			return fmt.Errorf("config: category %q: source is required", cat.Name)
		case cat.OutcomeColumn == "":
			return fmt.Errorf("config: category %q: outcome_column is required", cat.Name)
		case cat.EventIDColumn == "":
			return fmt.Errorf("config: category %q: event_id_column is required", cat.Name)
		}
		if seen[cat.Name] {
			return fmt.Errorf("config: duplicate category %q", cat.Name)
		}
		seen[cat.Name] = true
	}
	return nil
}

// Category returns the named category.
func (c *Config) Category(name model.Category) (CategoryConfig, bool) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return CategoryConfig{}, false
}

// CategoryNames returns the configured categories in order.
func (c *Config) CategoryNames() []model.Category {
	out := make([]model.Category, len(c.Categories))
	for i, cat := range c.Categories {
		out[i] = cat.Name
	}
	return out
}

// ResolvePath joins a relative source with DataDir.
func (c *Config) ResolvePath(source string) string {
	if filepath.IsAbs(source) || c.DataDir == "" {
		return source
	}
	return filepath.Join(c.DataDir, source)
}
