package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/functionland/blox-wizard/internal/shell"
)

// DockerExecTransport reaches the backend from inside its own container with
// `docker exec <container> curl`. It is used when the backend port is not
// published to the host.
type DockerExecTransport struct {
	runner     shell.Runner
	docker     string
	container  string
	backendURL string
}

func NewDockerExecTransport(runner shell.Runner, docker, container, backendURL string) *DockerExecTransport {
	if runner == nil {
		runner = shell.ExecRunner{}
	}
	return &DockerExecTransport{
		runner:     runner,
		docker:     docker,
		container:  container,
		backendURL: strings.TrimRight(backendURL, "/"),
	}
}

const statusMarker = "\n__status:"

func (t *DockerExecTransport) Do(ctx context.Context, req Request) (Response, error) {
	args := []string{"exec", t.container, "curl", "-s", "-X", req.Method}
	if req.ContentType != "" {
		args = append(args, "-H", "Content-Type: "+req.ContentType)
	}
	if req.Body != nil {
		args = append(args, "--data-raw", string(req.Body))
	}
	args = append(args, "-w", statusMarker+"%{http_code}", t.backendURL+req.Path)

	stdout, stderr, err := t.runner.Run(ctx, t.docker, args...)
	if err != nil {
		if len(stderr) > 0 {
			return Response{}, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(stderr)))
		}
		return Response{}, err
	}
	if len(bytes.TrimSpace(stderr)) > 0 {
		return Response{}, errors.New(strings.TrimSpace(string(stderr)))
	}
	return parseCurlOutput(stdout)
}

// parseCurlOutput splits the body from the status written by -w.
func parseCurlOutput(out []byte) (Response, error) {
	i := bytes.LastIndex(out, []byte(statusMarker))
	if i < 0 {
		return Response{}, errors.New("curl output has no status trailer")
	}
	code, err := strconv.Atoi(strings.TrimSpace(string(out[i+len(statusMarker):])))
	if err != nil {
		return Response{}, fmt.Errorf("curl status: %w", err)
	}
	if code == 0 {
		// curl could not connect; the backend inside the container is down
		return Response{}, errors.New("backend unreachable inside container")
	}
	return Response{Status: code, Body: out[:i]}, nil
}
