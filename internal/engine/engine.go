package engine

import (
	"context"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/filters"
	volumetypes "github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/guker/stack-deployment/internal/stack"
)

const (
	stopContainerTimeout = 10

	stackLabel   = "deployment.stack"
	serviceLabel = "deployment.service"
	volumeLabel  = "deployment.volume"
)

var stopContainerTimeoutVar = stopContainerTimeout * time.Second

// Engine realizes normalized stacks through the docker daemon.
type Engine struct {
	dockerClient *client.Client
}

func New() (*Engine, error) {
	dockerClient, err := client.NewEnvClient()
	if err != nil {
		return nil, errors.Wrap(err, "creating docker client")
	}

	return &Engine{dockerClient: dockerClient}, nil
}

// DeployStack brings a whole stack up: network, declared volumes, images and
// finally the containers, started in dependency order.
func (e *Engine) DeployStack(ctx context.Context, s *stack.Stack) error {
	startOrder, err := s.StartOrder()
	if err != nil {
		return err
	}

	networkId, err := e.ensureNetwork(ctx, s)
	if err != nil {
		return err
	}

	err = e.ensureVolumes(ctx, s)
	if err != nil {
		return err
	}

	for _, serviceName := range startOrder {
		service := s.Services[serviceName]

		imageRef, err := e.ensureImage(ctx, s, service)
		if err != nil {
			return errors.Wrapf(err, "service %s", serviceName)
		}

		err = e.startService(ctx, s, service, imageRef, networkId)
		if err != nil {
			return errors.Wrapf(err, "service %s", serviceName)
		}
	}

	log.Infof("stack %s deployed (%d services)", s.Name, len(startOrder))

	return nil
}

// DeleteStack stops and removes the stack's containers in reverse start
// order, then removes its network. Named volumes are left in place so the
// data survives redeployments.
func (e *Engine) DeleteStack(ctx context.Context, s *stack.Stack) error {
	stopOrder, err := s.StopOrder()
	if err != nil {
		return err
	}

	for _, serviceName := range stopOrder {
		err = e.stopService(ctx, s.Name, serviceName)
		if err != nil {
			log.Warnf("stopping service %s of stack %s: %s", serviceName, s.Name, err)
		}
	}

	err = e.removeNetwork(ctx, s.Name)
	if err != nil {
		return err
	}

	log.Infof("stack %s deleted", s.Name)

	return nil
}

func (e *Engine) ensureNetwork(ctx context.Context, s *stack.Stack) (networkId string, err error) {
	networkName := s.Name + "-network"

	networks, err := e.dockerClient.NetworkList(ctx, types.NetworkListOptions{})
	if err != nil {
		return "", errors.Wrap(err, "listing networks")
	}

	for _, netVal := range networks {
		if netVal.Name == networkName {
			log.Debugf("network %s already exists", networkName)

			return netVal.ID, nil
		}
	}

	resp, err := e.dockerClient.NetworkCreate(ctx, networkName, types.NetworkCreate{
		CheckDuplicate: false,
		Attachable:     false,
		Labels:         map[string]string{stackLabel: s.Name},
	})
	if err != nil {
		return "", errors.Wrapf(err, "creating network %s", networkName)
	}

	log.Debug("created network with id ", resp.ID)

	return resp.ID, nil
}

func (e *Engine) removeNetwork(ctx context.Context, stackName string) error {
	networkName := stackName + "-network"

	networks, err := e.dockerClient.NetworkList(ctx, types.NetworkListOptions{})
	if err != nil {
		return errors.Wrap(err, "listing networks")
	}

	for _, netVal := range networks {
		if netVal.Name == networkName {
			err = e.dockerClient.NetworkRemove(ctx, netVal.ID)
			if err != nil {
				return errors.Wrapf(err, "removing network %s", networkName)
			}

			return nil
		}
	}

	return nil
}

func (e *Engine) ensureVolumes(ctx context.Context, s *stack.Stack) error {
	for volumeName, volumeYAML := range s.Volumes {
		if volumeYAML.External {
			continue
		}

		_, err := e.dockerClient.VolumeCreate(ctx, volumetypes.VolumesCreateBody{
			Name:       s.Name + "_" + volumeName,
			Driver:     volumeYAML.Driver,
			DriverOpts: volumeYAML.DriverOpts,
			Labels: map[string]string{
				stackLabel:  s.Name,
				volumeLabel: volumeName,
			},
		})
		if err != nil {
			return errors.Wrapf(err, "creating volume %s", volumeName)
		}

		log.Debugf("ensured volume %s for stack %s", volumeName, s.Name)
	}

	return nil
}

func stackFilter(stackName string) filters.Args {
	args := filters.NewArgs()
	args.Add("label", stackLabel+"="+stackName)

	return args
}
