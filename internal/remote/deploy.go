package remote

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
	"wpscaffold.dev/wpscaffold/internal/github"
)

// DeployFile is the Deployer descriptor at the project root
const DeployFile = "deploy.yml"

// WorkflowFile is the GitHub Actions workflow that deploys the project
const WorkflowFile = "deploy.yml"

// Stage names used by the generated projects
const (
	StageStaging    = "staging"
	StageProduction = "production"
)

// DeployBase is the ".base" host entry every stage inherits from
type DeployBase struct {
	Hostname    string `yaml:"hostname"`
	User        string `yaml:"user"`
	Application string `yaml:"application"`
	DeployPath  string `yaml:"deploy_path"`
	Repository  string `yaml:"repository"`
}

// DeployHost is one stage entry of deploy.yml
type DeployHost struct {
	Stage string `yaml:"stage"`
	URL   string `yaml:"url"`
}

// DeployConfig is the parsed deploy.yml
type DeployConfig struct {
	Base  DeployBase
	Hosts map[string]DeployHost
}

// Environment is a remote environment the operator can pick
type Environment struct {
	// Label is shown in the prompt.
	Label string
	// Keys are the deploy.yml host keys tried in order.
	Keys []string
}

// Environments are offered in this order
var Environments = []Environment{
	{Label: "Staging", Keys: []string{"stage", StageStaging}},
	{Label: "Production", Keys: []string{"prod", StageProduction}},
}

// EnvironmentLabels returns the prompt options for Environments
func EnvironmentLabels() []string {
	labels := make([]string, len(Environments))
	for i, env := range Environments {
		labels[i] = env.Label
	}
	return labels
}

// LoadDeployConfig reads and parses dir/deploy.yml
func LoadDeployConfig(dir string) (*DeployConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, DeployFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("this project does not seem to be setup for Deployer: %w", scaffolderrors.ErrNotAProject)
		}
		return nil, fmt.Errorf("failed to read %s: %w", DeployFile, err)
	}
	return ParseDeployConfig(data)
}

// ParseDeployConfig parses the content of deploy.yml. The ".base" entry is required.
func ParseDeployConfig(data []byte) (*DeployConfig, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s failed: %w", DeployFile, err)
	}

	baseNode, ok := raw[".base"]
	if !ok {
		return nil, fmt.Errorf("parsing %s failed: missing .base", DeployFile)
	}

	cfg := &DeployConfig{Hosts: make(map[string]DeployHost)}
	if err := baseNode.Decode(&cfg.Base); err != nil {
		return nil, fmt.Errorf("parsing %s failed: .base: %w", DeployFile, err)
	}
	for key, node := range raw {
		if strings.HasPrefix(key, ".") || node.Kind != yaml.MappingNode {
			continue
		}
		var host DeployHost
		if err := node.Decode(&host); err != nil {
			return nil, fmt.Errorf("parsing %s failed: %s: %w", DeployFile, key, err)
		}
		cfg.Hosts[key] = host
	}
	return cfg, nil
}

// Host returns the stage entry for env
func (c *DeployConfig) Host(env Environment) (DeployHost, error) {
	for _, key := range env.Keys {
		if host, ok := c.Hosts[key]; ok && host.Stage != "" {
			return host, nil
		}
	}
	return DeployHost{}, fmt.Errorf("the remote environment %s does not exist in %s", strings.ToLower(env.Label), DeployFile)
}

// RemotePath is the default site directory of stage for the SSH user
func (c *DeployConfig) RemotePath(user, stage string) string {
	path := c.Base.DeployPath
	if strings.HasPrefix(path, "~/") {
		path = "/home/" + user + "/" + strings.TrimPrefix(path, "~/")
	}
	path = strings.ReplaceAll(path, "{{application}}", c.Base.Application)
	return strings.ReplaceAll(path, "{{stage}}", stage)
}

// Repository returns the GitHub owner and name of .base.repository
func (c *DeployConfig) Repository() (*github.RepoInfo, error) {
	return github.ParseRemoteURL(c.Base.Repository)
}

// WorkflowURL links to the deploy workflow of the project repository
func (c *DeployConfig) WorkflowURL() (string, error) {
	repo, err := c.Repository()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s/%s/%s/actions/workflows/%s", repo.Hostname, repo.Owner, repo.Repo, WorkflowFile), nil
}
