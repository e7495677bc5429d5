package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/viper"
)

// Keys of the persisted settings
const (
	KeyVersion             = "version"
	KeyPluginTemplateRepo  = "plugin_template_repo"
	KeyThemeTemplateRepo   = "theme_template_repo"
	KeyProjectTemplateRepo = "project_template_repo"
	KeyGitHubOrganization  = "github_organization"
	KeySkipIntros          = "skip_intros"
	KeyReadyTimeout        = "ready_timeout"
	KeyMergeDelay          = "merge_delay"
	KeyLastInput           = "last_input"
)

// EnvConfigPath overrides the location of the config file
const EnvConfigPath = "WP_SCAFFOLD_CONFIG"

// Defaults holds the value of every setting that is not stored
var Defaults = map[string]interface{}{
	KeyPluginTemplateRepo:  "wearerequired/wordpress-plugin-boilerplate",
	KeyThemeTemplateRepo:   "wearerequired/wordpress-theme-boilerplate",
	KeyProjectTemplateRepo: "wearerequired/wordpress-project-boilerplate",
	KeyGitHubOrganization:  "wearerequired",
	KeySkipIntros:          false,
	KeyReadyTimeout:        "5m",
	KeyMergeDelay:          "5s",
}

//go:embed config.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
)

// getSchema compiles the embedded JSON schema once and returns it
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("config.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("config.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Validate checks settings against the config schema
func Validate(settings map[string]interface{}) error {
	schema, err := getSchema()
	if err != nil {
		return err
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("preparing settings for validation: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DefaultPath returns the config file location
func DefaultPath() (string, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate the user config directory: %w", err)
	}
	return filepath.Join(dir, "wp-scaffold", "config.json"), nil
}

// Store is the persisted configuration. It is loaded once per process and
// passed explicitly to the code that needs it.
type Store struct {
	v    *viper.Viper
	path string
}

// Load reads the config at path, migrating and validating it. A missing file
// yields the defaults. A migrated file is written back.
func Load(path string) (*Store, error) {
	raw := map[string]interface{}{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if len(bytes.TrimSpace(data)) > 0 {
			if err := json.Unmarshal(data, &raw); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	existed := err == nil
	migrated, err := Migrate(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", path, err)
	}
	if err := Validate(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	s := &Store{v: newViper(path), path: path}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding settings: %w", err)
	}
	if err := s.v.ReadConfig(bytes.NewReader(encoded)); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if existed && migrated {
		if err := s.Save(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}
	return v
}

// Path returns the file backing the store
func (s *Store) Path() string {
	return s.path
}

// Save writes every setting, including defaults, to the config file
func (s *Store) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// PluginTemplateRepo is the "owner/name" of the plugin boilerplate
func (s *Store) PluginTemplateRepo() string { return s.v.GetString(KeyPluginTemplateRepo) }

// ThemeTemplateRepo is the "owner/name" of the theme boilerplate
func (s *Store) ThemeTemplateRepo() string { return s.v.GetString(KeyThemeTemplateRepo) }

// ProjectTemplateRepo is the "owner/name" of the project boilerplate
func (s *Store) ProjectTemplateRepo() string { return s.v.GetString(KeyProjectTemplateRepo) }

// GitHubOrganization owns every created repository
func (s *Store) GitHubOrganization() string { return s.v.GetString(KeyGitHubOrganization) }

// SkipIntros hides the welcome banner of every tool
func (s *Store) SkipIntros() bool { return s.v.GetBool(KeySkipIntros) }

// ReadyTimeout bounds the wait for a new repository; zero means no limit
func (s *Store) ReadyTimeout() time.Duration { return s.v.GetDuration(KeyReadyTimeout) }

// MergeDelay is the pause between pushing to a pull request and merging it
func (s *Store) MergeDelay() time.Duration { return s.v.GetDuration(KeyMergeDelay) }

// LastInput returns the cached answers of tool, or nil
func (s *Store) LastInput(tool string) map[string]interface{} {
	key := KeyLastInput + "." + tool
	if !s.v.IsSet(key) {
		return nil
	}
	m := s.v.GetStringMap(key)
	if len(m) == 0 {
		return nil
	}
	return m
}

// SetLastInput caches the answers of tool and saves the store
func (s *Store) SetLastInput(tool string, answers map[string]interface{}) error {
	s.v.Set(KeyLastInput+"."+tool, answers)
	return s.Save()
}

// Get returns a setting by key
func (s *Store) Get(key string) interface{} {
	return s.v.Get(key)
}

// Keys returns the known top-level settings, sorted
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(Defaults))
	for key := range Defaults {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Set parses value for key, validates the result and saves the store
func (s *Store) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if _, known := Defaults[key]; !known {
		return fmt.Errorf("unknown setting %q", key)
	}

	var typed interface{} = value
	if _, isBool := Defaults[key].(bool); isBool {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s expects true or false: %w", key, err)
		}
		typed = b
	}

	candidate := s.v.AllSettings()
	candidate[key] = typed
	if err := Validate(candidate); err != nil {
		return err
	}

	s.v.Set(key, typed)
	return s.Save()
}
