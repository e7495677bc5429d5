package remote

import (
	"context"
	"fmt"
	"net"
	"os"
	"path"
	"path/filepath"
	"strings"

	"wpscaffold.dev/wpscaffold/internal/credentials"
	scaffolderrors "wpscaffold.dev/wpscaffold/internal/errors"
	"wpscaffold.dev/wpscaffold/internal/pipeline"
	"wpscaffold.dev/wpscaffold/internal/prompt"
	"wpscaffold.dev/wpscaffold/internal/replace"
	"wpscaffold.dev/wpscaffold/internal/runtime"
	"wpscaffold.dev/wpscaffold/internal/tui"
	"wpscaffold.dev/wpscaffold/internal/utils"
	"wpscaffold.dev/wpscaffold/internal/validate"
)

// Answer keys of the provisioner
const (
	KeyEnvironment       = "environment"
	KeyHostname          = "hostname"
	KeyUser              = "user"
	KeyPrivateKey        = "private_key"
	KeyPassphrase        = "passphrase"
	KeyRemotePath        = "remote_path"
	KeyDBHost            = "db_host"
	KeyDBName            = "db_name"
	KeyDBUser            = "db_user"
	KeyDBPassword        = "db_password"
	KeyBasicAuthUser     = "basic_auth_user"
	KeyBasicAuthPassword = "basic_auth_password"
	KeyToken             = "github_token"
)

// DefaultPrivateKey is offered as the SSH key path
const DefaultPrivateKey = "~/.ssh/id_rsa"

// Options are the command line switches of the provisioner
type Options struct {
	// TriggerDeploy dispatches the deploy workflow once the files are uploaded.
	TriggerDeploy bool
	// OpenWorkflow opens the deploy workflow page in the browser.
	OpenWorkflow bool
}

// Provisioner sets up one stage of a project on its hosting server
type Provisioner struct {
	rt     *runtime.Context
	opts   Options
	Dial   DialFunc
	Lookup LookupFunc
	// KnownHosts is the known_hosts file used to verify the server.
	KnownHosts string
	// OpenURL opens the workflow page.
	OpenURL func(url string) error
}

// NewProvisioner creates a provisioner that connects over real SSH and DNS
func NewProvisioner(rt *runtime.Context, opts Options) *Provisioner {
	return &Provisioner{
		rt:         rt,
		opts:       opts,
		Dial:       Dial,
		Lookup:     net.DefaultResolver.LookupIP,
		KnownHosts: DefaultKnownHostsPath(),
		OpenURL:    utils.OpenBrowser,
	}
}

// stageFiles are the local files written for one stage
type stageFiles struct {
	env      string
	htaccess string
	htpasswd string
}

func newStageFiles(dir, stage string) stageFiles {
	local := filepath.Join(dir, LocalServerDir)
	return stageFiles{
		env:      filepath.Join(local, ".env."+stage),
		htaccess: filepath.Join(local, ".htaccess."+stage),
		htpasswd: filepath.Join(local, ".htpasswd"),
	}
}

// remove deletes the temporary stage files, ignoring ones never written
func (f stageFiles) remove() error {
	for _, file := range []string{f.env, f.htaccess, f.htpasswd} {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Run asks for the stage and its credentials, writes the stage files and
// uploads them to the shared directory on the server.
func (p *Provisioner) Run(ctx context.Context) error {
	rt := p.rt
	s := rt.Splog
	dir := rt.WorkDir

	if err := p.intro(); err != nil {
		return err
	}

	if info, err := os.Stat(filepath.Join(dir, LocalServerDir)); err != nil || !info.IsDir() {
		return fmt.Errorf("this directory does not seem to be a project, please run the command within a project directory: %w", scaffolderrors.ErrNotAProject)
	}
	deploy, err := LoadDeployConfig(dir)
	if err != nil {
		return err
	}
	local, err := LoadDotenv(dir)
	if err != nil {
		return err
	}

	answers, err := rt.Collector.Collect(p.hostQuestions(deploy))
	if err != nil {
		return err
	}
	env := environmentByLabel(answers.String(KeyEnvironment))
	host, err := deploy.Host(env)
	if err != nil {
		return err
	}
	stage := host.Stage

	var passphrase string
	if NeedsPassphrase(answers.String(KeyPrivateKey)) {
		if err := rt.Collector.CollectInto(answers, []prompt.Question{{
			Key:     KeyPassphrase,
			Message: "Enter the passphrase of the private key:",
			Kind:    prompt.Password,
		}}); err != nil {
			return err
		}
		passphrase = answers.String(KeyPassphrase)
	}

	var session Session
	runner := rt.Runner
	err = runner.Run(ctx, "Connecting to remote server", "Could not connect to the remote server.", func(ctx context.Context) error {
		var err error
		session, err = p.Dial(ctx, SSHConfig{
			Host:           answers.String(KeyHostname),
			User:           answers.String(KeyUser),
			PrivateKeyPath: answers.String(KeyPrivateKey),
			KnownHostsPath: p.KnownHosts,
			Passphrase:     passphrase,
			Warn:           s.Warn,
		})
		return err
	})
	if err != nil {
		return err
	}
	defer session.Close()
	s.Success("Successful connection to remote server!")

	s.Warn("Point the domain to directory on hosting provider.")
	if err := rt.Collector.ConfirmUntil("Have you set up the domain?"); err != nil {
		return err
	}
	if err := rt.Collector.CollectInto(answers, []prompt.Question{{
		Key:      KeyRemotePath,
		Message:  "Enter the path for the site directory:",
		Default:  deploy.RemotePath(answers.String(KeyUser), stage),
		Validate: validate.UnixPath,
	}}); err != nil {
		return err
	}

	s.Warn("Create a new database on the hosting provider.")
	if err := rt.Collector.ConfirmUntil("Have you created the database?"); err != nil {
		return err
	}
	if err := rt.Collector.CollectInto(answers, DatabaseQuestions()); err != nil {
		return err
	}
	protected := stage != StageProduction
	if protected {
		if err := rt.Collector.CollectInto(answers, BasicAuthQuestions()); err != nil {
			return err
		}
	}

	files := newStageFiles(dir, stage)
	defer func() {
		if err := files.remove(); err != nil {
			s.Warn("Could not remove temporary files: %v", err)
		}
	}()

	remotePath := strings.TrimSuffix(answers.String(KeyRemotePath), "/")
	shared := path.Join(remotePath, "shared")

	steps := pipeline.New(runner)
	steps.Add("Writing environment file", "Could not write the environment file.", func(context.Context) error {
		return WriteEnv(dir, files.env, EnvRules(local, stage, Database{
			Host:     answers.String(KeyDBHost),
			Name:     answers.String(KeyDBName),
			User:     answers.String(KeyDBUser),
			Password: answers.String(KeyDBPassword),
		}))
	})
	steps.Add("Writing access files", "Could not write the access files.", func(ctx context.Context) error {
		h := Htaccess{
			Application: deploy.Base.Application,
			Stage:       stage,
			RemotePath:  remotePath,
			Protected:   protected,
			MediaURL:    local.URLProduction,
		}
		if protected {
			line, err := HTPasswd(answers.String(KeyBasicAuthUser), answers.String(KeyBasicAuthPassword))
			if err != nil {
				return err
			}
			if err := os.WriteFile(files.htpasswd, []byte(line+"\n"), 0600); err != nil {
				return err
			}
			h.IPv4, h.IPv6 = AllowFrom(ctx, p.Lookup, answers.String(KeyHostname), s.Warn)
		}
		content, err := RenderHtaccess(h)
		if err != nil {
			return err
		}
		return os.WriteFile(files.htaccess, []byte(content), 0600)
	})
	steps.Add("Creating remote directories", "Could not create the remote directories.", func(ctx context.Context) error {
		_, err := session.Run(ctx, "mkdir -p "+ShellQuote(path.Join(shared, "wordpress", "content", "uploads")))
		return err
	})
	steps.Add("Uploading .env", "Could not upload .env.", func(ctx context.Context) error {
		return session.PutFile(ctx, files.env, path.Join(shared, "wordpress", ".env"))
	})
	steps.Add("Uploading .htaccess", "Could not upload .htaccess.", func(ctx context.Context) error {
		return session.PutFile(ctx, files.htaccess, path.Join(shared, "wordpress", ".htaccess"))
	})
	steps.AddStep(pipeline.Step{
		Name:         "Uploading .htpasswd",
		AbortMessage: "Could not upload .htpasswd.",
		Action: func(ctx context.Context) error {
			return session.PutFile(ctx, files.htpasswd, path.Join(shared, ".htpasswd"))
		},
		Skip: func() bool { return !protected },
	})
	if _, err := steps.Run(ctx); err != nil {
		return err
	}

	s.Newline()
	s.Success("✅  Done!")
	s.Info("%s %s is now installed under %s", deploy.Base.Application, stage, remotePath)

	workflowURL, err := deploy.WorkflowURL()
	if err != nil {
		s.Warn("Could not derive the deploy workflow: %v", err)
		return nil
	}
	if p.opts.TriggerDeploy {
		return p.triggerDeploy(ctx, deploy, workflowURL)
	}
	s.Info("Push a commit to GitHub or manually trigger a deployment: %s", tui.Hyperlink(workflowURL, workflowURL))
	p.open(workflowURL)
	return nil
}

func (p *Provisioner) intro() error {
	if !p.rt.ShowIntro() {
		return nil
	}
	s := p.rt.Splog
	s.Info("%s", tui.FormatTitle("👋  Welcome to "+p.rt.Tool))
	s.Newline()
	s.Info("This tool will guide you through the setup process of a new %s.", tui.FormatComment("remote server"))
	s.Newline()
	if err := p.rt.Collector.Ready("Has the server and project repo been setup for Deployer?"); err != nil {
		return err
	}
	s.Newline()
	return nil
}

func (p *Provisioner) hostQuestions(deploy *DeployConfig) []prompt.Question {
	return []prompt.Question{
		{
			Key:     KeyEnvironment,
			Message: "Choose the remote environment",
			Kind:    prompt.Select,
			Options: EnvironmentLabels(),
			Default: Environments[0].Label,
		},
		{
			Key:      KeyHostname,
			Message:  "Enter the hostname for the remote server:",
			Default:  deploy.Base.Hostname,
			Validate: validate.Hostname,
		},
		{
			Key:      KeyUser,
			Message:  "Enter the SSH username for the remote server:",
			Default:  deploy.Base.User,
			Validate: validate.Slug,
		},
		{
			Key:     KeyPrivateKey,
			Message: "Enter the local path to your private SSH key:",
			Default: DefaultPrivateKey,
			Filter: func(v string) string {
				if expanded, err := utils.ExpandHome(v); err == nil {
					return expanded
				}
				return v
			},
			Validate: validate.File,
		},
	}
}

// DatabaseQuestions ask for the credentials of the remote database
func DatabaseQuestions() []prompt.Question {
	return []prompt.Question{
		{Key: KeyDBHost, Message: "Enter the database host:", Default: "localhost", Validate: validate.NotEmpty},
		{Key: KeyDBName, Message: "Enter the database name:", Validate: validate.NotEmpty},
		{Key: KeyDBUser, Message: "Enter the database username:", Validate: validate.NotEmpty},
		{Key: KeyDBPassword, Message: "Enter the database password:", Kind: prompt.Password, Validate: validate.NotEmpty},
	}
}

// BasicAuthQuestions ask for the credentials protecting a non-production stage
func BasicAuthQuestions() []prompt.Question {
	return []prompt.Question{
		{Key: KeyBasicAuthUser, Message: "Enter the BasicAuth username:", Validate: validate.NotEmpty},
		{Key: KeyBasicAuthPassword, Message: "Enter the BasicAuth password:", Kind: prompt.Password, Validate: validate.NotEmpty},
	}
}

func environmentByLabel(label string) Environment {
	for _, env := range Environments {
		if env.Label == label {
			return env
		}
	}
	return Environments[0]
}

// WriteEnv copies .local-server/.env to target and applies rules to the copy
func WriteEnv(dir, target string, rules []replace.Rule) error {
	data, err := os.ReadFile(filepath.Join(dir, LocalServerDir, ".env"))
	if err != nil {
		return err
	}
	return os.WriteFile(target, []byte(replace.String(string(data), rules)), 0600)
}

// triggerDeploy dispatches the deploy workflow on the default branch of the project repository
func (p *Provisioner) triggerDeploy(ctx context.Context, deploy *DeployConfig, workflowURL string) error {
	rt := p.rt
	repo, err := deploy.Repository()
	if err != nil {
		return err
	}

	stored, err := rt.Credentials.Get()
	if err != nil {
		return err
	}
	token := stored
	if token == "" {
		answers, err := rt.Collector.Collect([]prompt.Question{{
			Key:      KeyToken,
			Message:  "GitHub API token:",
			Kind:     prompt.Password,
			Validate: validate.NotEmpty,
		}})
		if err != nil {
			return err
		}
		token = answers.String(KeyToken)
		if err := credentials.StoreIfChanged(rt.Credentials, stored, token); err != nil {
			return err
		}
	}

	gh := rt.NewGitHub(ctx, token)
	err = rt.Runner.Run(ctx, "Triggering deployment", "Could not trigger the deployment.", func(ctx context.Context) error {
		info, err := gh.GetRepository(ctx, repo.Owner, repo.Repo)
		if err != nil {
			return err
		}
		return gh.DispatchWorkflow(ctx, repo.Owner, repo.Repo, WorkflowFile, info.DefaultBranch)
	})
	if err != nil {
		return err
	}
	rt.Splog.Info("Deployment started: %s", tui.Hyperlink(workflowURL, workflowURL))
	p.open(workflowURL)
	return nil
}

func (p *Provisioner) open(url string) {
	if !p.opts.OpenWorkflow || p.OpenURL == nil {
		return
	}
	if err := p.OpenURL(url); err != nil {
		p.rt.Splog.Warn("Could not open the browser: %v", err)
	}
}
