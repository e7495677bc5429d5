package testhelpers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v62/github"
)

// MockRepo is a repository held by the mock GitHub server
type MockRepo struct {
	Owner       string
	Name        string
	Description string
	Private     bool
	Topics      []string
	// CloneURL is returned as clone_url and ssh_url; point it at a local bare repo.
	CloneURL string
	// Commits is the number of commits listed once the repository is ready.
	Commits int
	// PendingPolls answers that many commit listings with 409 before listing commits.
	PendingPolls int
	// Files maps branch -> path -> content.
	Files map[string]map[string][]byte
	// Dispatches records workflow files dispatched on this repository.
	Dispatches []string
}

// FullName returns "owner/name"
func (r *MockRepo) FullName() string {
	return r.Owner + "/" + r.Name
}

// MockPullRequest is a pull request held by the mock GitHub server
type MockPullRequest struct {
	Owner  string
	Repo   string
	Number int
	Title  string
	Head   string
	Base   string
	State  string
	Merged bool
	// MergeMethod records the method used by the merge call.
	MergeMethod string
}

// MockGitHubServerConfig configures the behavior of a mock GitHub server.
// The server mutates it, so tests can inspect it after the run.
type MockGitHubServerConfig struct {
	mu sync.Mutex

	Repos        map[string]*MockRepo
	PullRequests []*MockPullRequest
	// CommitPolls counts commit listings per "owner/name".
	CommitPolls map[string]int
	// DeletedRefs records "owner/name:ref" for every deleted ref.
	DeletedRefs []string
	// FileWrites records "owner/name:branch:path" for every committed file.
	FileWrites []string
	// ErrorResponses maps "METHOD /path" to a status code returned instead of the normal answer.
	ErrorResponses map[string]int
	// OnGenerate runs under the config lock for every repository created
	// from a template, e.g. to give it a CloneURL.
	OnGenerate func(template, created *MockRepo)
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		Repos:          make(map[string]*MockRepo),
		CommitPolls:    make(map[string]int),
		ErrorResponses: make(map[string]int),
	}
}

// AddRepo registers a repository and returns it
func (c *MockGitHubServerConfig) AddRepo(repo *MockRepo) *MockRepo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if repo.Files == nil {
		repo.Files = make(map[string]map[string][]byte)
	}
	c.Repos[repo.FullName()] = repo
	return repo
}

// AddPullRequest registers an open pull request and returns it
func (c *MockGitHubServerConfig) AddPullRequest(pr *MockPullRequest) *MockPullRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	if pr.State == "" {
		pr.State = "open"
	}
	if pr.Base == "" {
		pr.Base = "main"
	}
	c.PullRequests = append(c.PullRequests, pr)
	return pr
}

// Repo returns a registered repository under the lock
func (c *MockGitHubServerConfig) Repo(fullName string) *MockRepo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Repos[fullName]
}

// Snapshot runs fn while holding the config lock
func (c *MockGitHubServerConfig) Snapshot(fn func(c *MockGitHubServerConfig)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c)
}

func (c *MockGitHubServerConfig) findPR(owner, repo string, number int) *MockPullRequest {
	for _, pr := range c.PullRequests {
		if pr.Owner == owner && pr.Repo == repo && pr.Number == number {
			return pr
		}
	}
	return nil
}

// NewMockGitHubServer creates an httptest server that mocks GitHub API endpoints
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	if config == nil {
		config = NewMockGitHubServerConfig()
	}

	mux := http.NewServeMux()
	handle := func(pattern string, h func(w http.ResponseWriter, r *http.Request)) {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			config.mu.Lock()
			defer config.mu.Unlock()
			if status, ok := config.ErrorResponses[r.Method+" "+r.URL.Path]; ok {
				writeError(w, status, http.StatusText(status))
				return
			}
			h(w, r)
		})
	}

	repoOr404 := func(w http.ResponseWriter, r *http.Request) *MockRepo {
		repo, ok := config.Repos[r.PathValue("owner")+"/"+r.PathValue("repo")]
		if !ok {
			writeError(w, http.StatusNotFound, "Not Found")
			return nil
		}
		return repo
	}

	handle("GET /repos/{owner}/{repo}", func(w http.ResponseWriter, r *http.Request) {
		if repo := repoOr404(w, r); repo != nil {
			writeJSON(w, http.StatusOK, toGitHubRepo(repo))
		}
	})

	handle("POST /repos/{owner}/{repo}/generate", func(w http.ResponseWriter, r *http.Request) {
		template := repoOr404(w, r)
		if template == nil {
			return
		}
		var req github.TemplateRepoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		fullName := req.GetOwner() + "/" + req.GetName()
		if _, exists := config.Repos[fullName]; exists {
			writeError(w, http.StatusUnprocessableEntity, "Name already exists on this account")
			return
		}
		created := &MockRepo{
			Owner:       req.GetOwner(),
			Name:        req.GetName(),
			Description: req.GetDescription(),
			Private:     req.GetPrivate(),
			Commits:     1,
			Files:       make(map[string]map[string][]byte),
		}
		if config.OnGenerate != nil {
			config.OnGenerate(template, created)
		}
		config.Repos[fullName] = created
		writeJSON(w, http.StatusCreated, toGitHubRepo(created))
	})

	handle("GET /repos/{owner}/{repo}/commits", func(w http.ResponseWriter, r *http.Request) {
		repo := repoOr404(w, r)
		if repo == nil {
			return
		}
		config.CommitPolls[repo.FullName()]++
		if repo.PendingPolls > 0 {
			repo.PendingPolls--
			writeError(w, http.StatusConflict, "Git Repository is empty.")
			return
		}
		commits := make([]*github.RepositoryCommit, 0, repo.Commits)
		for i := 0; i < repo.Commits; i++ {
			commits = append(commits, &github.RepositoryCommit{SHA: github.String(fmt.Sprintf("%040d", i+1))})
		}
		writeJSON(w, http.StatusOK, commits)
	})

	handle("PUT /repos/{owner}/{repo}/topics", func(w http.ResponseWriter, r *http.Request) {
		repo := repoOr404(w, r)
		if repo == nil {
			return
		}
		var body struct {
			Names []string `json:"names"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		repo.Topics = body.Names
		writeJSON(w, http.StatusOK, body)
	})

	handle("GET /repos/{owner}/{repo}/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		repo := repoOr404(w, r)
		if repo == nil {
			return
		}
		path := r.PathValue("path")
		content, ok := repo.Files[r.URL.Query().Get("ref")][path]
		if !ok {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		writeJSON(w, http.StatusOK, &github.RepositoryContent{
			Type:     github.String("file"),
			Path:     github.String(path),
			SHA:      github.String(contentSHA(content)),
			Encoding: github.String("base64"),
			Content:  github.String(wrapBase64(content)),
		})
	})

	handle("PUT /repos/{owner}/{repo}/contents/{path...}", func(w http.ResponseWriter, r *http.Request) {
		repo := repoOr404(w, r)
		if repo == nil {
			return
		}
		var opts github.RepositoryContentFileOptions
		if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		branch := opts.GetBranch()
		path := r.PathValue("path")
		existing, exists := repo.Files[branch][path]
		if exists && opts.GetSHA() != contentSHA(existing) {
			writeError(w, http.StatusConflict, "sha does not match")
			return
		}
		if !exists && opts.GetSHA() != "" {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		if repo.Files[branch] == nil {
			repo.Files[branch] = make(map[string][]byte)
		}
		repo.Files[branch][path] = opts.Content
		config.FileWrites = append(config.FileWrites, repo.FullName()+":"+branch+":"+path)

		writeJSON(w, http.StatusOK, &github.RepositoryContentResponse{
			Commit: github.Commit{
				Message: opts.Message,
				HTMLURL: github.String(fmt.Sprintf("https://github.com/%s/commit/%s", repo.FullName(), contentSHA(opts.Content))),
			},
		})
	})

	handle("GET /repos/{owner}/{repo}/pulls/{number}", func(w http.ResponseWriter, r *http.Request) {
		repo := repoOr404(w, r)
		if repo == nil {
			return
		}
		pr := config.findPR(repo.Owner, repo.Name, atoi(r.PathValue("number")))
		if pr == nil {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		writeJSON(w, http.StatusOK, toGitHubPR(repo, pr))
	})

	handle("PATCH /repos/{owner}/{repo}/pulls/{number}", func(w http.ResponseWriter, r *http.Request) {
		repo := repoOr404(w, r)
		if repo == nil {
			return
		}
		pr := config.findPR(repo.Owner, repo.Name, atoi(r.PathValue("number")))
		if pr == nil {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		var update struct {
			State *string `json:"state,omitempty"`
			Title *string `json:"title,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if update.State != nil {
			pr.State = *update.State
		}
		if update.Title != nil {
			pr.Title = *update.Title
		}
		writeJSON(w, http.StatusOK, toGitHubPR(repo, pr))
	})

	handle("PUT /repos/{owner}/{repo}/pulls/{number}/merge", func(w http.ResponseWriter, r *http.Request) {
		repo := repoOr404(w, r)
		if repo == nil {
			return
		}
		pr := config.findPR(repo.Owner, repo.Name, atoi(r.PathValue("number")))
		if pr == nil {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		if pr.State != "open" {
			writeError(w, http.StatusMethodNotAllowed, "Pull Request is not mergeable")
			return
		}
		var body struct {
			MergeMethod string `json:"merge_method"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		pr.State = "closed"
		pr.Merged = true
		pr.MergeMethod = body.MergeMethod
		writeJSON(w, http.StatusOK, &github.PullRequestMergeResult{
			Merged:  github.Bool(true),
			Message: github.String("Pull Request successfully merged"),
			SHA:     github.String(fmt.Sprintf("%040d", pr.Number)),
		})
	})

	handle("DELETE /repos/{owner}/{repo}/git/refs/{ref...}", func(w http.ResponseWriter, r *http.Request) {
		repo := repoOr404(w, r)
		if repo == nil {
			return
		}
		config.DeletedRefs = append(config.DeletedRefs, repo.FullName()+":"+r.PathValue("ref"))
		w.WriteHeader(http.StatusNoContent)
	})

	handle("POST /repos/{owner}/{repo}/actions/workflows/{workflow}/dispatches", func(w http.ResponseWriter, r *http.Request) {
		repo := repoOr404(w, r)
		if repo == nil {
			return
		}
		var event github.CreateWorkflowDispatchEventRequest
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil || event.Ref == "" {
			writeError(w, http.StatusUnprocessableEntity, "ref is required")
			return
		}
		repo.Dispatches = append(repo.Dispatches, r.PathValue("workflow")+"@"+event.Ref)
		w.WriteHeader(http.StatusNoContent)
	})

	handle("GET /search/repositories", func(w http.ResponseWriter, r *http.Request) {
		owner := queryQualifier(r.URL.Query().Get("q"), "user", "org")
		var repos []*github.Repository
		for _, repo := range sortedRepos(config.Repos) {
			if owner == "" || strings.EqualFold(repo.Owner, owner) {
				repos = append(repos, toGitHubRepo(repo))
			}
		}
		writeJSON(w, http.StatusOK, &github.RepositoriesSearchResult{
			Total:        github.Int(len(repos)),
			Repositories: repos,
		})
	})

	handle("GET /search/issues", func(w http.ResponseWriter, r *http.Request) {
		owner := queryQualifier(r.URL.Query().Get("q"), "user", "org")
		var issues []*github.Issue
		for _, pr := range config.PullRequests {
			if pr.State != "open" || (owner != "" && !strings.EqualFold(pr.Owner, owner)) {
				continue
			}
			issues = append(issues, &github.Issue{
				Number:        github.Int(pr.Number),
				Title:         github.String(pr.Title),
				State:         github.String(pr.State),
				HTMLURL:       github.String(fmt.Sprintf("https://github.com/%s/%s/pull/%d", pr.Owner, pr.Repo, pr.Number)),
				RepositoryURL: github.String(fmt.Sprintf("https://api.github.com/repos/%s/%s", pr.Owner, pr.Repo)),
			})
		}
		writeJSON(w, http.StatusOK, &github.IssuesSearchResult{
			Total:  github.Int(len(issues)),
			Issues: issues,
		})
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unhandled path: %s (method: %s)", r.URL.Path, r.Method))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(func() { server.Close() })
	return server
}

// NewMockGitHubClient creates a GitHub client configured to use a mock server
func NewMockGitHubClient(t *testing.T, config *MockGitHubServerConfig) *github.Client {
	server := NewMockGitHubServer(t, config)
	client := github.NewClient(nil)
	baseURL, _ := url.Parse(server.URL + "/")
	client.BaseURL = baseURL
	client.UploadURL = baseURL
	return client
}

func toGitHubRepo(repo *MockRepo) *github.Repository {
	cloneURL := repo.CloneURL
	if cloneURL == "" {
		cloneURL = "https://github.com/" + repo.FullName() + ".git"
	}
	return &github.Repository{
		Name:          github.String(repo.Name),
		FullName:      github.String(repo.FullName()),
		Owner:         &github.User{Login: github.String(repo.Owner)},
		Description:   github.String(repo.Description),
		Private:       github.Bool(repo.Private),
		CloneURL:      github.String(cloneURL),
		SSHURL:        github.String(cloneURL),
		HTMLURL:       github.String("https://github.com/" + repo.FullName()),
		DefaultBranch: github.String("main"),
		Topics:        repo.Topics,
	}
}

func toGitHubPR(repo *MockRepo, pr *MockPullRequest) *github.PullRequest {
	ghRepo := toGitHubRepo(repo)
	return &github.PullRequest{
		Number:  github.Int(pr.Number),
		Title:   github.String(pr.Title),
		State:   github.String(pr.State),
		Merged:  github.Bool(pr.Merged),
		HTMLURL: github.String(fmt.Sprintf("https://github.com/%s/pull/%d", repo.FullName(), pr.Number)),
		Head:    &github.PullRequestBranch{Ref: github.String(pr.Head), Repo: ghRepo},
		Base:    &github.PullRequestBranch{Ref: github.String(pr.Base), Repo: ghRepo},
	}
}

func sortedRepos(repos map[string]*MockRepo) []*MockRepo {
	list := make([]*MockRepo, 0, len(repos))
	for _, repo := range repos {
		list = append(list, repo)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].FullName() < list[j].FullName() })
	return list
}

// queryQualifier returns the value of the first matching "key:value" term in a search query
func queryQualifier(query string, keys ...string) string {
	for _, term := range strings.Fields(query) {
		key, value, ok := strings.Cut(term, ":")
		if !ok {
			continue
		}
		for _, k := range keys {
			if key == k {
				return value
			}
		}
	}
	return ""
}

// contentSHA is a stable stand-in for a git blob SHA
func contentSHA(content []byte) string {
	var sum uint64 = 14695981039346656037
	for _, b := range content {
		sum ^= uint64(b)
		sum *= 1099511628211
	}
	return fmt.Sprintf("%040x", sum)
}

// wrapBase64 encodes content the way the contents API does, with line breaks every 60 characters
func wrapBase64(content []byte) string {
	encoded := base64.StdEncoding.EncodeToString(content)
	var b strings.Builder
	for len(encoded) > 60 {
		b.WriteString(encoded[:60])
		b.WriteString("\n")
		encoded = encoded[60:]
	}
	b.WriteString(encoded)
	return b.String()
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
