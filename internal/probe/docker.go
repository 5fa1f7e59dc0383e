package probe

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"

	"github.com/hamed0406/uptimecore/internal/domain"
)

// DockerAPI is the subset of the Engine client the docker checker uses.
type DockerAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
}

// NewDockerClient connects to host, or to the environment default
// (DOCKER_HOST, else the local socket) when host is empty.
func NewDockerClient(host string) (*client.Client, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	return client.NewClientWithOpts(opts...)
}

var errContainerNotFound = errors.New("container not found")

// DockerChecker reports a container as up when its state is "running".
// The monitor URL holds the container id (or prefix) or name.
type DockerChecker struct {
	Client DockerAPI
}

func (d *DockerChecker) Check(ctx context.Context, m *domain.Monitor) domain.ProbeResult {
	ref := strings.TrimSpace(m.URL)
	out := timeRequest(func() (types.ContainerJSON, error) {
		list, err := d.Client.ContainerList(ctx, container.ListOptions{All: true})
		if err != nil {
			return types.ContainerJSON{}, err
		}
		if !containerExists(list, ref) {
			return types.ContainerJSON{}, errContainerNotFound
		}
		return d.Client.ContainerInspect(ctx, ref)
	})

	res := baseResult(m)
	res.ResponseTime = out.ResponseTime
	if out.Err != nil {
		switch {
		case errors.Is(out.Err, errContainerNotFound):
			res.Code = 404
			res.Message = msgDockerNotFound
		case errdefs.IsNotFound(out.Err):
			res.Code = 404
			res.Message = msgDockerFail
		default:
			res.Code = domain.NetworkError
			res.Message = msgDockerFail
		}
		return res
	}

	info := out.Response
	if info.ContainerJSONBase != nil && info.State != nil {
		res.Status = info.State.Status == "running"
		res.Payload, _ = json.Marshal(info.State)
	}
	res.Code = 200
	res.Message = msgDockerSuccess
	return res
}

func containerExists(list []types.Container, ref string) bool {
	if ref == "" {
		return false
	}
	for _, c := range list {
		if strings.HasPrefix(c.ID, ref) {
			return true
		}
		for _, n := range c.Names {
			if strings.TrimPrefix(n, "/") == strings.TrimPrefix(ref, "/") {
				return true
			}
		}
	}
	return false
}
