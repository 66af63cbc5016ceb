package engine

import (
	"context"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/go-connections/nat"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/guker/stack-deployment/internal/stack"
	"github.com/guker/stack-deployment/internal/utils"
)

// Instance describes one running container backing a stack service.
type Instance struct {
	InstanceId  string
	StackName   string
	ServiceName string
	ContainerId string
	Image       string
	State       string
}

func (e *Engine) startService(ctx context.Context, s *stack.Stack, service *stack.Service,
	imageRef, networkId string) error {
	instanceId := s.Name + "_" + service.Name + "-" + utils.RandomString(10)

	log.Debugf("instance %s has following portBindings: %+v", instanceId, service.Ports)

	containerConfig := container.Config{
		Image:        imageRef,
		Cmd:          service.Command,
		Entrypoint:   service.Entrypoint,
		Env:          serviceEnv(s, service, instanceId),
		ExposedPorts: exposedPorts(service.Ports),
		Labels: map[string]string{
			stackLabel:   s.Name,
			serviceLabel: service.Name,
		},
	}

	hostConfig := container.HostConfig{
		Binds:        service.Binds,
		Links:        serviceLinks(s, service),
		NetworkMode:  "bridge",
		PortBindings: service.Ports,
		Runtime:      service.Runtime,
	}

	if service.Restart != "" {
		hostConfig.RestartPolicy = container.RestartPolicy{Name: service.Restart}
	}

	networkConfig := network.NetworkingConfig{
		EndpointsConfig: map[string]*network.EndpointSettings{
			"bridge": {
				Aliases:   []string{service.Name, instanceId},
				NetworkID: networkId,
			},
		},
	}

	cont, err := e.dockerClient.ContainerCreate(ctx, &containerConfig, &hostConfig, &networkConfig,
		service.ContainerName)
	if err != nil {
		return errors.Wrapf(err, "creating container %s", service.ContainerName)
	}

	err = e.dockerClient.ContainerStart(ctx, cont.ID, types.ContainerStartOptions{})
	if err != nil {
		return errors.Wrapf(err, "starting container %s", service.ContainerName)
	}

	log.Debugf("container %s started for instance %s", cont.ID, instanceId)

	return nil
}

func (e *Engine) stopService(ctx context.Context, stackName, serviceName string) error {
	instances, err := e.serviceContainers(ctx, stackName, serviceName)
	if err != nil {
		return err
	}

	for _, containerListed := range instances {
		err = e.dockerClient.ContainerStop(ctx, containerListed.ID, &stopContainerTimeoutVar)
		if err != nil {
			return errors.Wrapf(err, "stopping container %s", containerListed.ID)
		}

		err = e.dockerClient.ContainerRemove(ctx, containerListed.ID, types.ContainerRemoveOptions{})
		if err != nil {
			return errors.Wrapf(err, "removing container %s", containerListed.ID)
		}

		log.Debugf("removed container %s for service %s", containerListed.ID, serviceName)
	}

	return nil
}

// StackInstances lists the containers carrying the stack's label.
func (e *Engine) StackInstances(ctx context.Context, stackName string) ([]Instance, error) {
	containers, err := e.dockerClient.ContainerList(ctx, types.ContainerListOptions{
		All:     true,
		Filters: stackFilter(stackName),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing containers of stack %s", stackName)
	}

	instances := make([]Instance, 0, len(containers))
	for _, containerListed := range containers {
		instances = append(instances, Instance{
			InstanceId:  containerName(containerListed),
			StackName:   stackName,
			ServiceName: containerListed.Labels[serviceLabel],
			ContainerId: containerListed.ID,
			Image:       containerListed.Image,
			State:       containerListed.State,
		})
	}

	return instances, nil
}

func (e *Engine) serviceContainers(ctx context.Context, stackName, serviceName string) ([]types.Container, error) {
	args := stackFilter(stackName)
	args.Add("label", serviceLabel+"="+serviceName)

	containers, err := e.dockerClient.ContainerList(ctx, types.ContainerListOptions{
		All:     true,
		Filters: args,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing containers of service %s", serviceName)
	}

	return containers, nil
}

// serviceEnv is the merged descriptor environment plus the variables every
// instance gets injected.
func serviceEnv(s *stack.Stack, service *stack.Service, instanceId string) []string {
	stackEnvVar := utils.StackEnvVarName + "=" + s.Name
	serviceEnvVar := utils.ServiceEnvVarName + "=" + service.Name
	instanceEnvVar := utils.InstanceEnvVarName + "=" + instanceId

	envVars := []string{stackEnvVar, serviceEnvVar, instanceEnvVar}

	return append(envVars, service.Env...)
}

// serviceLinks maps link declarations to container name based links, the
// shape the docker API expects.
func serviceLinks(s *stack.Stack, service *stack.Service) []string {
	links := make([]string, 0, len(service.Links))

	for _, link := range service.Links {
		target, known := s.Services[link.Service]
		if !known {
			continue
		}

		links = append(links, target.ContainerName+":"+link.Alias)
	}

	return links
}

func exposedPorts(portMap nat.PortMap) nat.PortSet {
	portSet := nat.PortSet{}

	for port := range portMap {
		portSet[port] = struct{}{}
	}

	return portSet
}

func containerName(containerListed types.Container) string {
	for _, name := range containerListed.Names {
		return strings.TrimPrefix(name, "/")
	}

	return containerListed.ID
}
