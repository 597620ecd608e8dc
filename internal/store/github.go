package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	githubAPI = "https://api.github.com"

	// githubAccept asks the API to include repository topics in listings.
	githubAccept = "application/vnd.github.mercy-preview+json"

	githubPageSize = 100
)

// GitHub is a Store backed by a GitHub account, reached over the REST API
// with a personal access token. Listings cover every repository the token
// has admin permission on, user- and organization-owned alike.
type GitHub struct {
	name  string
	user  string
	token string
	api   string
	http  *http.Client
}

// NewGitHub returns a GitHub store for the given account.
func NewGitHub(name, user, token string) *GitHub {
	return NewGitHubWithAPI(name, user, token, githubAPI)
}

// NewGitHubWithAPI is NewGitHub with an explicit API base URL. Useful for
// testing against a stub server.
func NewGitHubWithAPI(name, user, token, api string) *GitHub {
	return &GitHub{
		name:  name,
		user:  user,
		token: token,
		api:   strings.TrimRight(api, "/"),
		http:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Name returns the store's configured name.
func (g *GitHub) Name() string { return g.name }

// DefaultOwner returns the authenticated user: a locator without an owner
// refers to one of the user's own repositories.
func (g *GitHub) DefaultOwner() string { return g.user }

// githubRepo is the subset of the API's repository object the tool reads.
// Description and Topics stay loosely typed so malformed values degrade to
// nil instead of failing the whole decode.
type githubRepo struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	Description any `json:"description"`
	Topics      any `json:"topics"`
	Permissions struct {
		Admin bool `json:"admin"`
	} `json:"permissions"`
}

func (r githubRepo) normalize(storeName string) Repository {
	return Repository{
		Store:       storeName,
		Owner:       r.Owner.Login,
		Name:        r.Name,
		Description: normalizeDescription(r.Description),
		Topics:      normalizeTopics(r.Topics),
	}
}

// List pages through /user/repos until an empty page, keeping repositories
// the token has admin permission on.
func (g *GitHub) List(ctx context.Context) ([]Repository, error) {
	var repos []Repository
	for page := 1; ; page++ {
		batch, err := g.listPage(ctx, page)
		if err != nil {
			return nil, &FetchError{Store: g.name, Err: err}
		}
		if len(batch) == 0 {
			break
		}
		for _, r := range batch {
			if !r.Permissions.Admin {
				continue
			}
			repos = append(repos, r.normalize(g.name))
		}
	}
	return repos, nil
}

func (g *GitHub) listPage(ctx context.Context, page int) ([]githubRepo, error) {
	u := fmt.Sprintf("%s/user/repos?per_page=%d&page=%d", g.api, githubPageSize, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	g.addHeaders(req)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.Status, data)
	}

	var batch []githubRepo
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("decoding repository listing: %w", err)
	}
	return batch, nil
}

// Create makes a new repository, private unless opts say otherwise. The
// endpoint depends on the owner: the authenticated user's own repositories
// go through /user/repos, anything else through /orgs/{owner}/repos.
func (g *GitHub) Create(ctx context.Context, owner, name string, opts CreateOptions) (Repository, error) {
	if owner == "" {
		owner = g.user
	}
	full := owner + "/" + name

	endpoint := g.api + "/user/repos"
	if owner != g.user {
		endpoint = g.api + "/orgs/" + url.PathEscape(owner) + "/repos"
	}

	payload, err := json.Marshal(struct {
		Name    string `json:"name"`
		Private bool   `json:"private"`
	}{Name: name, Private: !opts.Public})
	if err != nil {
		return Repository{}, &CreateError{Store: g.name, Name: full, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Repository{}, &CreateError{Store: g.name, Name: full, Err: err}
	}
	g.addHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return Repository{}, &CreateError{Store: g.name, Name: full, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Repository{}, &CreateError{Store: g.name, Name: full, Err: err}
	}
	if resp.StatusCode != http.StatusCreated {
		apiErr := apiError(resp.Status, data)
		// 422 with a "name already exists" detail is the API's way of
		// reporting a collision.
		if resp.StatusCode == http.StatusUnprocessableEntity && strings.Contains(apiErr.Error(), "already exists") {
			apiErr = fmt.Errorf("%w: %v", ErrAlreadyExists, apiErr)
		}
		return Repository{}, &CreateError{Store: g.name, Name: full, Err: apiErr}
	}

	var raw githubRepo
	if err := json.Unmarshal(data, &raw); err != nil {
		return Repository{}, &CreateError{Store: g.name, Name: full, Err: fmt.Errorf("decoding create response: %w", err)}
	}
	return raw.normalize(g.name), nil
}

// CloneSource returns the SSH clone URL. Existence is not checked here; a
// missing repository surfaces when git runs.
func (g *GitHub) CloneSource(_ context.Context, owner, name string) (string, error) {
	if owner == "" {
		owner = g.user
	}
	return "ssh://git@github.com/" + owner + "/" + name, nil
}

func (g *GitHub) addHeaders(req *http.Request) {
	req.Header.Set("Accept", githubAccept)
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("User-Agent", "pensieve")
}

// githubError is the API's error envelope.
type githubError struct {
	Message string `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// apiError turns a non-2xx response into an error carrying the API's own
// message when the body has one.
func apiError(status string, body []byte) error {
	var ge githubError
	if err := json.Unmarshal(body, &ge); err != nil || ge.Message == "" {
		return fmt.Errorf("github api: %s", status)
	}
	msg := ge.Message
	if len(ge.Errors) > 0 && ge.Errors[0].Message != "" {
		msg += " " + ge.Errors[0].Message
	}
	return fmt.Errorf("github api: %s", msg)
}
