package backend

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DockerConfig configures the Docker-CLI-backed Runtime. The reference
// implementation shells out to the docker binary rather than linking the
// Docker SDK, matching how the production backend this was adapted from
// talks to the daemon.
type DockerConfig struct {
	ImagePrefix    string
	Network        string
	AgentPort      int
	DefaultTimeout time.Duration
}

// DefaultDockerConfig returns sane defaults for local development.
func DefaultDockerConfig() DockerConfig {
	return DockerConfig{
		ImagePrefix:    "warmsched-function",
		Network:        "bridge",
		AgentPort:      9000,
		DefaultTimeout: 30 * time.Second,
	}
}

// Docker is a Runtime that launches one container per function instance via
// the docker CLI, publishing the agent port to a random host port.
type Docker struct {
	cfg DockerConfig
}

// NewDocker verifies the docker CLI is reachable and returns a Runtime.
func NewDocker(cfg DockerConfig) (*Docker, error) {
	if err := exec.Command("docker", "version").Run(); err != nil {
		return nil, fmt.Errorf("docker CLI not available: %w", err)
	}
	return &Docker{cfg: cfg}, nil
}

// Launch runs `docker run -d -P <image>` for the function and resolves the
// host port Docker assigned to the agent port.
func (d *Docker) Launch(ctx context.Context, functionID, image string) (string, string, error) {
	if image == "" {
		image = d.cfg.ImagePrefix + ":" + functionID
	}
	args := []string{"run", "-d", "-P", "--network", d.cfg.Network, image}
	out, err := exec.CommandContext(ctx, "docker", args...).Output()
	if err != nil {
		return "", "", fmt.Errorf("docker run: %w", err)
	}
	containerID := strings.TrimSpace(string(out))
	if containerID == "" {
		return "", "", fmt.Errorf("docker run returned no container id")
	}

	port, err := d.hostPort(ctx, containerID)
	if err != nil {
		_ = d.Stop(ctx, containerID)
		return "", "", err
	}
	return containerID, net.JoinHostPort("127.0.0.1", strconv.Itoa(port)), nil
}

func (d *Docker) hostPort(ctx context.Context, containerID string) (int, error) {
	format := fmt.Sprintf("{{(index (index .NetworkSettings.Ports \"%d/tcp\") 0).HostPort}}", d.cfg.AgentPort)
	out, err := exec.CommandContext(ctx, "docker", "inspect", "--format", format, containerID).Output()
	if err != nil {
		return 0, fmt.Errorf("docker inspect: %w", err)
	}
	port, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, fmt.Errorf("parse host port: %w", err)
	}
	return port, nil
}

// Invoke POSTs the payload to the container's agent and returns its response.
func (d *Docker) Invoke(ctx context.Context, endpoint string, payload []byte) (Response, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+endpoint+"/invoke", bytes.NewReader(payload))
	if err != nil {
		return Response{}, err
	}
	client := &http.Client{Timeout: d.cfg.DefaultTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("invoke %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Response{}, fmt.Errorf("invoke %s: status %d", endpoint, resp.StatusCode)
	}
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	return Response{Output: buf.Bytes(), DurationMs: time.Since(start).Milliseconds()}, nil
}

// Stop force-removes the container with `docker rm -f` and returns any
// error the CLI reports.
func (d *Docker) Stop(ctx context.Context, id string) error {
	if err := exec.CommandContext(ctx, "docker", "rm", "-f", id).Run(); err != nil {
		return fmt.Errorf("docker rm %s: %w", id, err)
	}
	return nil
}

// Probe issues a lightweight health GET against the agent.
func (d *Docker) Probe(ctx context.Context, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+endpoint+"/healthz", nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("probe %s: status %d", endpoint, resp.StatusCode)
	}
	return nil
}
