package engine

import (
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guker/stack-deployment/internal/stack"
)

func experimentStack() *stack.Stack {
	return &stack.Stack{
		Name: "experiment",
		Services: map[string]*stack.Service{
			"showoff": {
				Name:          "showoff",
				Image:         "anibali/showoff:latest",
				ContainerName: "experiment_showoff",
			},
			"trainer": {
				Name:          "trainer",
				ContainerName: "experiment_trainer",
				Env:           []string{"DATA_DIR=/data/mpii", "SHOWOFF_URL=http://showoff:3000"},
				Links:         []stack.Link{{Service: "showoff", Alias: "showoff"}},
			},
		},
	}
}

func TestServiceEnvInjectsIdentityFirst(t *testing.T) {
	s := experimentStack()

	env := serviceEnv(s, s.Services["trainer"], "experiment_trainer-abc123")

	require.Len(t, env, 5)
	assert.Equal(t, "STACK_ID=experiment", env[0])
	assert.Equal(t, "SERVICE_ID=trainer", env[1])
	assert.Equal(t, "INSTANCE_ID=experiment_trainer-abc123", env[2])
	assert.Equal(t, "DATA_DIR=/data/mpii", env[3])
}

func TestServiceLinksUseContainerNames(t *testing.T) {
	s := experimentStack()

	links := serviceLinks(s, s.Services["trainer"])

	assert.Equal(t, []string{"experiment_showoff:showoff"}, links)
}

func TestServiceLinksSkipUnknownTargets(t *testing.T) {
	s := experimentStack()
	s.Services["trainer"].Links = append(s.Services["trainer"].Links, stack.Link{Service: "ghost", Alias: "ghost"})

	links := serviceLinks(s, s.Services["trainer"])

	assert.Equal(t, []string{"experiment_showoff:showoff"}, links)
}

func TestExposedPorts(t *testing.T) {
	portMap := nat.PortMap{
		nat.Port("3000/tcp"): []nat.PortBinding{{HostPort: "16676"}},
		nat.Port("5432/tcp"): nil,
	}

	portSet := exposedPorts(portMap)

	require.Len(t, portSet, 2)
	assert.Contains(t, portSet, nat.Port("3000/tcp"))
	assert.Contains(t, portSet, nat.Port("5432/tcp"))
}

func TestStackFilter(t *testing.T) {
	args := stackFilter("experiment")

	assert.True(t, args.Match("label", stackLabel+"=experiment"))
}

func TestContainerName(t *testing.T) {
	named := types.Container{ID: "abc", Names: []string{"/experiment_showoff"}}
	assert.Equal(t, "experiment_showoff", containerName(named))

	unnamed := types.Container{ID: "abc"}
	assert.Equal(t, "abc", containerName(unnamed))
}
