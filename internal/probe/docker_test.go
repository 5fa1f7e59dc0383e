package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/errdefs"

	"github.com/hamed0406/uptimecore/internal/domain"
)

type fakeDocker struct {
	list       []types.Container
	listErr    error
	inspect    types.ContainerJSON
	inspectErr error
	inspected  string
}

func (f *fakeDocker) ContainerList(context.Context, container.ListOptions) ([]types.Container, error) {
	return f.list, f.listErr
}

func (f *fakeDocker) ContainerInspect(_ context.Context, id string) (types.ContainerJSON, error) {
	f.inspected = id
	return f.inspect, f.inspectErr
}

func inspectWithState(status string) types.ContainerJSON {
	return types.ContainerJSON{ContainerJSONBase: &types.ContainerJSONBase{
		State: &types.ContainerState{Status: status, Running: status == "running"},
	}}
}

func TestDockerChecker(t *testing.T) {
	list := []types.Container{{ID: "3f9ab2c41d00", Names: []string{"/redis"}}}
	tests := []struct {
		name    string
		ref     string
		fake    *fakeDocker
		status  bool
		code    int
		message string
	}{
		{"running by name", "redis", &fakeDocker{list: list, inspect: inspectWithState("running")}, true, 200, msgDockerSuccess},
		{"exited by id prefix", "3f9ab2", &fakeDocker{list: list, inspect: inspectWithState("exited")}, false, 200, msgDockerSuccess},
		{"absent", "postgres", &fakeDocker{list: list}, false, 404, msgDockerNotFound},
		{"list failure", "redis", &fakeDocker{listErr: errors.New("dial unix: no such file")}, false, domain.NetworkError, msgDockerFail},
		{"inspect not found", "redis", &fakeDocker{list: list, inspectErr: errdefs.NotFound(errors.New("gone"))}, false, 404, msgDockerFail},
		{"inspect failure", "redis", &fakeDocker{list: list, inspectErr: errors.New("eof")}, false, domain.NetworkError, msgDockerFail},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := (&DockerChecker{Client: tc.fake}).Check(context.Background(), &domain.Monitor{Type: domain.TypeDocker, URL: tc.ref})
			if out.Status != tc.status || out.Code != tc.code || out.Message != tc.message {
				t.Fatalf("got %+v", out)
			}
		})
	}
}
