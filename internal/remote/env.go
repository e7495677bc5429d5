package remote

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"

	"wpscaffold.dev/wpscaffold/internal/replace"
)

// LocalServerDir holds the environment files of a project checkout
const LocalServerDir = ".local-server"

// LocalEnv is the subset of .local-server/.env the provisioner reads
type LocalEnv struct {
	HTTPHost      string
	URLStaging    string
	URLProduction string
}

// LoadDotenv parses dir/.local-server/.env
func LoadDotenv(dir string) (*LocalEnv, error) {
	values, err := godotenv.Read(filepath.Join(dir, LocalServerDir, ".env"))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/.env: %w", LocalServerDir, err)
	}
	return &LocalEnv{
		HTTPHost:      values["_HTTP_HOST"],
		URLStaging:    values["URL_STAGING"],
		URLProduction: values["URL_PRODUCTION"],
	}, nil
}

// URL returns the public URL of stage
func (e *LocalEnv) URL(stage string) string {
	if stage == StageProduction {
		return e.URLProduction
	}
	return e.URLStaging
}

// Database holds the credentials of the remote database
type Database struct {
	Host     string
	Name     string
	User     string
	Password string
}

// EnvRules rewrite the local development .env for stage
func EnvRules(local *LocalEnv, stage string, db Database) []replace.Rule {
	host := strings.TrimPrefix(strings.TrimPrefix(local.URL(stage), "https://"), "http://")

	rules := []replace.Rule{
		replace.Literal(`WP_ENV=development`, "WP_ENV="+stage),
		replace.Literal(`_HTTP_HOST="`+regexp.QuoteMeta(local.HTTPHost)+`"`, `_HTTP_HOST="`+host+`"`),
		replace.Literal(`DB_HOST=\$\{MYSQL_HOST\}`, "DB_HOST="+db.Host),
		replace.Literal(`DB_NAME=\$\{MYSQL_DATABASE\}`, "DB_NAME="+db.Name),
		replace.Literal(`DB_USER=\$\{MYSQL_USER\}`, "DB_USER="+db.User),
		replace.Literal(`DB_PASSWORD=\$\{MYSQL_PASSWORD\}`, "DB_PASSWORD="+db.Password),
		replace.Literal(`WP_DEBUG_DISPLAY=true`, "WP_DEBUG_DISPLAY=false"),
		replace.Literal(`SCRIPT_DEBUG=true`, "SCRIPT_DEBUG=false"),
	}

	switch stage {
	case StageStaging:
		rules = append(rules, replace.Literal(`JETPACK_DEV_DEBUG=true`, "JETPACK_STAGING_MODE=true"))
	case StageProduction:
		rules = append(rules,
			replace.Literal(`WP_DEBUG=true`, "WP_DEBUG=false"),
			replace.Literal(`WP_DEBUG_LOG=true`, "WP_DEBUG_LOG=false"),
			replace.Literal(`SAVEQUERIES=true`, "SAVEQUERIES=false"),
			replace.Literal(`QM_DISABLED=false`, "QM_DISABLED=true"),
			replace.Literal(`JETPACK_DEV_DEBUG=true`, ""),
		)
	}
	return rules
}
