package stack

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docker/go-connections/nat"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	api "github.com/guker/stack-deployment/api/stack"
)

type (
	// Stack is a normalized descriptor, ready to be handed to the engine.
	Stack struct {
		Name     string
		Dir      string
		Volumes  map[string]api.VolumeYAML
		Services map[string]*Service
	}

	Service struct {
		Name          string
		Image         string
		Build         *Build
		Command       []string
		Entrypoint    []string
		ContainerName string
		Env           []string
		Ports         nat.PortMap
		Binds         []string
		VolumeNames   []string
		Links         []Link
		DependsOn     []string
		Restart       string
		Runtime       string
	}

	Build struct {
		Context    string
		Dockerfile string
	}

	Link struct {
		Service string
		Alias   string
	}
)

// FromYAML normalizes a raw descriptor. The descriptor is expected to have
// passed Validate; syntactic problems still surface as errors here.
func FromYAML(stackName, dir string, stackYAML *api.StackYAML) (*Stack, error) {
	s := &Stack{
		Name:     stackName,
		Dir:      dir,
		Volumes:  stackYAML.Volumes,
		Services: map[string]*Service{},
	}

	if s.Volumes == nil {
		s.Volumes = map[string]api.VolumeYAML{}
	}

	for serviceName, serviceYAML := range stackYAML.Services {
		service, err := serviceFromYAML(s, serviceName, &serviceYAML)
		if err != nil {
			return nil, errors.Wrapf(err, "service %s", serviceName)
		}

		s.Services[serviceName] = service
	}

	return s, nil
}

func serviceFromYAML(s *Stack, serviceName string, serviceYAML *api.ServiceYAML) (*Service, error) {
	service := &Service{
		Name:          serviceName,
		Image:         serviceYAML.Image,
		Command:       serviceYAML.Command,
		Entrypoint:    serviceYAML.Entrypoint,
		ContainerName: serviceYAML.ContainerName,
		Restart:       serviceYAML.Restart,
		Runtime:       serviceYAML.Runtime,
	}

	if service.ContainerName == "" {
		service.ContainerName = s.Name + "_" + serviceName
	}

	if serviceYAML.Build != nil {
		service.Build = &Build{
			Context:    resolvePath(s.Dir, serviceYAML.Build.Context),
			Dockerfile: serviceYAML.Build.Dockerfile,
		}
	}

	env, err := mergeEnv(s.Dir, serviceYAML.EnvFile, serviceYAML.Environment)
	if err != nil {
		return nil, err
	}

	service.Env = env

	service.Ports, err = parsePorts(serviceYAML.Ports)
	if err != nil {
		return nil, err
	}

	for _, volumeSpec := range serviceYAML.Volumes {
		bind, volumeName, err := parseVolumeSpec(s.Name, s.Dir, volumeSpec)
		if err != nil {
			return nil, err
		}

		if volumeName != "" {
			if volumeYAML, declared := s.Volumes[volumeName]; declared && volumeYAML.External {
				bind = externalVolumeBind(s.Name, bind, volumeName)
			}

			service.VolumeNames = append(service.VolumeNames, volumeName)
		}

		service.Binds = append(service.Binds, bind)
	}

	for _, linkSpec := range serviceYAML.Links {
		service.Links = append(service.Links, parseLink(linkSpec))
	}

	service.DependsOn = dependencies(serviceYAML)

	return service, nil
}

// mergeEnv resolves env files in the declared order and applies the inline
// environment on top. Entries are emitted sorted by key so the result is
// deterministic regardless of source ordering.
func mergeEnv(dir string, envFiles []string, environment []string) ([]string, error) {
	merged := map[string]string{}

	for _, envFile := range envFiles {
		fileEnv, err := godotenv.Read(resolvePath(dir, envFile))
		if err != nil {
			return nil, errors.Wrapf(err, "reading env file %s", envFile)
		}

		for key, value := range fileEnv {
			merged[key] = value
		}
	}

	for _, entry := range environment {
		key, value := splitEnvEntry(entry)

		// a bare KEY entry passes the deployer's own environment through
		if !strings.Contains(entry, "=") {
			value = os.Getenv(key)
		}

		merged[key] = value
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, key := range keys {
		env = append(env, key+"="+merged[key])
	}

	return env, nil
}

func splitEnvEntry(entry string) (key, value string) {
	idx := strings.Index(entry, "=")
	if idx == -1 {
		return entry, ""
	}

	return entry[:idx], entry[idx+1:]
}

func parsePorts(portSpecs []string) (nat.PortMap, error) {
	portMap := nat.PortMap{}

	for _, portSpec := range portSpecs {
		mappings, err := nat.ParsePortSpec(portSpec)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing port %s", portSpec)
		}

		for _, mapping := range mappings {
			portMap[mapping.Port] = append(portMap[mapping.Port], mapping.Binding)
		}
	}

	return portMap, nil
}

// parseVolumeSpec splits a SRC:DST[:MODE] mount into a docker bind string,
// also reporting the volume name when SRC refers to a named volume rather
// than a host path. Named volumes are prefixed with the stack name in the
// bind, matching how the engine creates them.
func parseVolumeSpec(stackName, dir, volumeSpec string) (bind, volumeName string, err error) {
	parts := strings.Split(volumeSpec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", "", errors.Errorf("invalid volume spec %s", volumeSpec)
	}

	src := parts[0]

	if isHostPath(src) {
		parts[0] = resolvePath(dir, src)
	} else {
		volumeName = src
		parts[0] = stackName + "_" + src
	}

	return strings.Join(parts, ":"), volumeName, nil
}

// externalVolumeBind rewrites a bind to use the raw volume name. External
// volumes exist outside the stack and keep their declared name.
func externalVolumeBind(stackName, bind, volumeName string) string {
	return strings.Replace(bind, stackName+"_"+volumeName+":", volumeName+":", 1)
}

func isHostPath(src string) bool {
	return strings.HasPrefix(src, "/") || strings.HasPrefix(src, ".") || strings.HasPrefix(src, "~")
}

func parseLink(linkSpec string) Link {
	parts := strings.SplitN(linkSpec, ":", 2)
	if len(parts) == 1 {
		return Link{Service: parts[0], Alias: parts[0]}
	}

	return Link{Service: parts[0], Alias: parts[1]}
}

// dependencies merges depends_on with link targets, deduplicated and sorted.
func dependencies(serviceYAML *api.ServiceYAML) []string {
	seen := map[string]struct{}{}

	for _, dependency := range serviceYAML.DependsOn {
		seen[dependency] = struct{}{}
	}

	for _, linkSpec := range serviceYAML.Links {
		seen[parseLink(linkSpec).Service] = struct{}{}
	}

	if len(seen) == 0 {
		return nil
	}

	deps := make([]string, 0, len(seen))
	for dependency := range seen {
		deps = append(deps, dependency)
	}

	sort.Strings(deps)

	return deps
}

func resolvePath(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dir, path)
}
