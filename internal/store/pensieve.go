package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"strconv"
	"strings"
	"time"
)

// defaultConnectTimeout is how long to wait until the SSH connection is
// considered dead. PENSIEVE_TIMEOUT overrides it, in seconds.
const defaultConnectTimeout = 5 * time.Second

// Pensieve is a Store backed by a remote pensieve directory managed by
// pensieve-agent. The agent reads a JSON request from stdin and answers with
// JSON on stdout; we reach it over SSH, one connection per operation.
type Pensieve struct {
	name  string
	host  string // ssh://<user>@<hostname_or_ip>:<port>
	path  string // store directory on the remote machine
	agent string // agent binary on the remote machine
}

// NewPensieve returns an agent-backed store. The PENSIEVE_AGENT_COMMAND
// environment variable, when set, overrides the configured agent path.
func NewPensieve(name, host, storePath, agent string) *Pensieve {
	if cmd := os.Getenv("PENSIEVE_AGENT_COMMAND"); cmd != "" {
		agent = cmd
	}
	return &Pensieve{name: name, host: host, path: storePath, agent: agent}
}

// Name returns the store's configured name.
func (p *Pensieve) Name() string { return p.name }

// DefaultOwner returns ""; agent stores have no notion of ownership.
func (p *Pensieve) DefaultOwner() string { return "" }

// List asks the agent for every repository in the store. Entries with
// unparseable metadata degrade to a bare name rather than failing the
// listing.
func (p *Pensieve) List(ctx context.Context) ([]Repository, error) {
	data, err := p.invoke(ctx, "list", nil)
	if err != nil {
		return nil, &FetchError{Store: p.name, Err: err}
	}

	var listing map[string]json.RawMessage
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, &FetchError{Store: p.name, Err: fmt.Errorf("decoding listing: %w", err)}
	}

	repos := make([]Repository, 0, len(listing))
	for name, rawMeta := range listing {
		var meta map[string]any
		_ = json.Unmarshal(rawMeta, &meta)
		repos = append(repos, NewRepository(p.name, "", name, meta))
	}
	return repos, nil
}

// Create asks the agent to make a new repository. Options are ignored;
// everything in an agent store is private by construction.
func (p *Pensieve) Create(ctx context.Context, owner, name string, _ CreateOptions) (Repository, error) {
	if owner != "" {
		return Repository{}, &CreateError{Store: p.name, Name: name, Err: errNoOwners}
	}
	if _, err := p.invoke(ctx, "new", map[string]any{"name": name}); err != nil {
		var ae *agentError
		if errors.As(err, &ae) && strings.Contains(strings.ToLower(ae.Msg), "exists") {
			err = fmt.Errorf("%w: %v", ErrAlreadyExists, ae.Msg)
		}
		return Repository{}, &CreateError{Store: p.name, Name: name, Err: err}
	}
	return Repository{Store: p.name, Name: name}, nil
}

// CloneSource asks the agent where the repository lives and builds a git URL
// from the answer. Agents predating the clone-target operation reject it, in
// which case the conventional <store>/<name>/repo.git layout is assumed.
func (p *Pensieve) CloneSource(ctx context.Context, owner, name string) (string, error) {
	if owner != "" {
		return "", errNoOwners
	}

	data, err := p.invoke(ctx, "clone-target", map[string]any{"name": name})
	if err != nil {
		var ae *agentError
		if errors.As(err, &ae) {
			msg := strings.ToLower(ae.Msg)
			switch {
			case strings.Contains(msg, "no such"), strings.Contains(msg, "not found"):
				return "", &NotFoundError{Store: p.name, Name: name}
			case strings.Contains(msg, "unknown command"), strings.Contains(msg, "invalid command"):
				return p.conventionalCloneURL(name), nil
			}
		}
		return "", err
	}

	var target struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(data, &target); err != nil || target.Path == "" {
		return p.conventionalCloneURL(name), nil
	}
	if strings.HasPrefix(target.Path, "/") {
		return p.host + target.Path, nil
	}
	return p.host + path.Join(p.path, target.Path), nil
}

// conventionalCloneURL builds the clone URL for the layout every agent uses:
// a bare repo.git under a directory named after the repository.
func (p *Pensieve) conventionalCloneURL(name string) string {
	return p.host + path.Join(p.path, name, "repo.git")
}

var errNoOwners = errors.New("store does not use owners")

// agentRequest is the JSON message sent to the agent's stdin.
type agentRequest struct {
	Command string         `json:"command"`
	Data    map[string]any `json:"data"`
}

// agentResponse is the agent's answer. A nonzero error code means the agent
// understood the request but could not serve it.
type agentResponse struct {
	Error struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"error"`
	Data json.RawMessage `json:"data"`
}

// agentError is a failure reported by the agent itself, as opposed to a
// transport failure.
type agentError struct {
	Code int
	Msg  string
}

func (e *agentError) Error() string { return e.Msg }

// invoke runs one agent operation and returns its data payload.
func (p *Pensieve) invoke(ctx context.Context, command string, data map[string]any) (json.RawMessage, error) {
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(agentRequest{Command: command, Data: data})
	if err != nil {
		return nil, err
	}

	out, err := p.exchange(ctx, payload)
	if err != nil {
		return nil, err
	}

	var resp agentResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return nil, fmt.Errorf("problem decoding JSON over SSH (sent %s, received %q)", payload, out)
	}
	if resp.Error.Code != 0 {
		return nil, &agentError{Code: resp.Error.Code, Msg: resp.Error.Msg}
	}
	return resp.Data, nil
}

// exchange sends payload to the agent over SSH and returns the raw reply.
func (p *Pensieve) exchange(ctx context.Context, payload []byte) ([]byte, error) {
	server, port := splitHostPort(p.host)

	args := []string{"-o", fmt.Sprintf("ConnectTimeout=%d", int(connectTimeout().Seconds()))}
	args = append(args, sshOptions()...)
	if port != "" {
		args = append(args, "-p", port)
	}
	remote := fmt.Sprintf("cd %s && %s", p.path, p.agent)
	args = append(args, server, `bash -c "`+remote+`"`)

	cmd := exec.CommandContext(ctx, "ssh", args...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	out := strings.TrimSpace(stdout.String())
	errOut := strings.TrimSpace(stderr.String())
	if runErr != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("agent did not answer: %w", ctx.Err())
		}
		// A missing store directory makes the remote cd fail before the
		// agent ever runs.
		if strings.Contains(out+errOut, "No such file") {
			return nil, fmt.Errorf("the server has no pensieve %q", p.path)
		}
		return nil, fmt.Errorf("connection failed with error: %s", strings.TrimSpace(out+" "+errOut))
	}
	return []byte(out), nil
}

// splitHostPort splits a trailing numeric port off a host string. The host
// keeps whatever scheme or user prefix it was configured with.
func splitHostPort(host string) (string, string) {
	i := strings.LastIndex(host, ":")
	if i < 0 || i == len(host)-1 {
		return host, ""
	}
	port := host[i+1:]
	for _, r := range port {
		if r < '0' || r > '9' {
			return host, ""
		}
	}
	return host[:i], port
}

func connectTimeout() time.Duration {
	if v := os.Getenv("PENSIEVE_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return defaultConnectTimeout
}

// sshOptions returns extra ssh arguments from PENSIEVE_SSH_OPTIONS, split on
// whitespace.
func sshOptions() []string {
	return strings.Fields(os.Getenv("PENSIEVE_SSH_OPTIONS"))
}
