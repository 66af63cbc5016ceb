package engine

import (
	"context"
	"io/ioutil"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/pkg/archive"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/guker/stack-deployment/internal/stack"
)

// ensureImage makes the service's image available locally, either by pulling
// it or by building the declared context, and returns the reference to run.
func (e *Engine) ensureImage(ctx context.Context, s *stack.Stack, service *stack.Service) (imageRef string, err error) {
	if service.Build != nil {
		return e.buildImage(ctx, s, service)
	}

	return service.Image, e.pullImage(ctx, service.Image)
}

func (e *Engine) pullImage(ctx context.Context, imageRef string) error {
	log.Debugf("pulling image %s", imageRef)

	reader, err := e.dockerClient.ImagePull(ctx, imageRef, types.ImagePullOptions{})
	if err != nil {
		return errors.Wrapf(err, "pulling image %s", imageRef)
	}

	// The pull only completes once the progress stream is drained.
	_, err = ioutil.ReadAll(reader)
	if err != nil {
		return errors.Wrapf(err, "pulling image %s", imageRef)
	}

	return reader.Close()
}

func (e *Engine) buildImage(ctx context.Context, s *stack.Stack, service *stack.Service) (imageRef string, err error) {
	imageRef = s.Name + "_" + service.Name

	if service.Image != "" {
		imageRef = service.Image
	}

	log.Debugf("building image %s from %s", imageRef, service.Build.Context)

	buildContext, err := archive.TarWithOptions(service.Build.Context, &archive.TarOptions{})
	if err != nil {
		return "", errors.Wrapf(err, "archiving build context %s", service.Build.Context)
	}

	defer func() {
		closeErr := buildContext.Close()
		if err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	buildOptions := types.ImageBuildOptions{
		Tags:   []string{imageRef},
		Remove: true,
	}

	if service.Build.Dockerfile != "" {
		buildOptions.Dockerfile = service.Build.Dockerfile
	}

	resp, err := e.dockerClient.ImageBuild(ctx, buildContext, buildOptions)
	if err != nil {
		return "", errors.Wrapf(err, "building image %s", imageRef)
	}

	_, err = ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(err, "building image %s", imageRef)
	}

	return imageRef, resp.Body.Close()
}
