package stack

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/docker/go-connections/nat"

	api "github.com/guker/stack-deployment/api/stack"
)

// Validate runs every static check on a raw descriptor and reports all
// problems found, instead of stopping at the first one. An empty slice means
// the descriptor is deployable.
func Validate(dir string, stackYAML *api.StackYAML) []string {
	var problems []string

	serviceNames := sortedServiceNames(stackYAML)

	hostPortUsers := map[string]string{}
	containerNameUsers := map[string]string{}

	for _, serviceName := range serviceNames {
		serviceYAML := stackYAML.Services[serviceName]

		problems = append(problems, validateImage(serviceName, &serviceYAML)...)
		problems = append(problems, validatePorts(serviceName, &serviceYAML, hostPortUsers)...)
		problems = append(problems, validateVolumes(serviceName, &serviceYAML, stackYAML)...)
		problems = append(problems, validateEnvFiles(dir, serviceName, &serviceYAML)...)
		problems = append(problems, validateTargets(serviceName, &serviceYAML, stackYAML)...)

		containerName := serviceYAML.ContainerName
		if containerName != "" {
			if other, used := containerNameUsers[containerName]; used {
				problems = append(problems,
					fmt.Sprintf("services %s and %s both use container_name %s", other, serviceName, containerName))
			} else {
				containerNameUsers[containerName] = serviceName
			}
		}
	}

	if cycle := findCycle(stackYAML); len(cycle) > 0 {
		problems = append(problems, fmt.Sprintf("dependency cycle: %s", strings.Join(cycle, " -> ")))
	}

	return problems
}

func validateImage(serviceName string, serviceYAML *api.ServiceYAML) (problems []string) {
	if serviceYAML.Image == "" && serviceYAML.Build == nil {
		problems = append(problems, fmt.Sprintf("service %s has neither an image nor a build context", serviceName))
	}

	return
}

func validatePorts(serviceName string, serviceYAML *api.ServiceYAML, hostPortUsers map[string]string) (problems []string) {
	for _, portSpec := range serviceYAML.Ports {
		mappings, err := nat.ParsePortSpec(portSpec)
		if err != nil {
			problems = append(problems, fmt.Sprintf("service %s has invalid port %s: %s", serviceName, portSpec, err))

			continue
		}

		for _, mapping := range mappings {
			if mapping.Binding.HostPort == "" {
				continue
			}

			// an empty host IP binds the wildcard address, same socket as an
			// explicit 0.0.0.0
			hostIP := mapping.Binding.HostIP
			if hostIP == "" {
				hostIP = "0.0.0.0"
			}

			hostPort := hostIP + ":" + mapping.Binding.HostPort + "/" + mapping.Port.Proto()
			if other, used := hostPortUsers[hostPort]; used && other != serviceName {
				problems = append(problems,
					fmt.Sprintf("services %s and %s both bind host port %s", other, serviceName, hostPort))
			} else {
				hostPortUsers[hostPort] = serviceName
			}
		}
	}

	return
}

func validateVolumes(serviceName string, serviceYAML *api.ServiceYAML, stackYAML *api.StackYAML) (problems []string) {
	for _, volumeSpec := range serviceYAML.Volumes {
		parts := strings.Split(volumeSpec, ":")
		if len(parts) < 2 || len(parts) > 3 {
			problems = append(problems, fmt.Sprintf("service %s has invalid volume spec %s", serviceName, volumeSpec))

			continue
		}

		src := parts[0]
		if isHostPath(src) {
			continue
		}

		if _, declared := stackYAML.Volumes[src]; !declared {
			problems = append(problems,
				fmt.Sprintf("service %s mounts undeclared volume %s", serviceName, src))
		}
	}

	return
}

func validateEnvFiles(dir, serviceName string, serviceYAML *api.ServiceYAML) (problems []string) {
	for _, envFile := range serviceYAML.EnvFile {
		if _, err := os.Stat(resolvePath(dir, envFile)); err != nil {
			problems = append(problems, fmt.Sprintf("service %s env file %s: %s", serviceName, envFile, err))
		}
	}

	return
}

func validateTargets(serviceName string, serviceYAML *api.ServiceYAML, stackYAML *api.StackYAML) (problems []string) {
	check := func(kind, target string) {
		if target == serviceName {
			problems = append(problems, fmt.Sprintf("service %s %s itself", serviceName, kind))

			return
		}

		if _, declared := stackYAML.Services[target]; !declared {
			problems = append(problems, fmt.Sprintf("service %s %s unknown service %s", serviceName, kind, target))
		}
	}

	for _, linkSpec := range serviceYAML.Links {
		check("links", parseLink(linkSpec).Service)
	}

	for _, dependency := range serviceYAML.DependsOn {
		check("depends_on", dependency)
	}

	return
}

// findCycle returns one dependency cycle as a service name path, or nil.
func findCycle(stackYAML *api.StackYAML) []string {
	const (
		unvisited = iota
		visiting
		done
	)

	states := map[string]int{}

	var cycle []string

	var visit func(serviceName string, path []string) bool
	visit = func(serviceName string, path []string) bool {
		switch states[serviceName] {
		case visiting:
			start := 0
			for i, onPath := range path {
				if onPath == serviceName {
					start = i

					break
				}
			}

			cycle = append(append([]string{}, path[start:]...), serviceName)

			return true
		case done:
			return false
		}

		states[serviceName] = visiting

		serviceYAML := stackYAML.Services[serviceName]
		for _, dependency := range dependencies(&serviceYAML) {
			if _, declared := stackYAML.Services[dependency]; !declared {
				continue
			}

			if visit(dependency, append(path, serviceName)) {
				return true
			}
		}

		states[serviceName] = done

		return false
	}

	for _, serviceName := range sortedServiceNames(stackYAML) {
		if visit(serviceName, nil) {
			return cycle
		}
	}

	return nil
}

func sortedServiceNames(stackYAML *api.StackYAML) []string {
	serviceNames := make([]string, 0, len(stackYAML.Services))
	for serviceName := range stackYAML.Services {
		serviceNames = append(serviceNames, serviceName)
	}

	sort.Strings(serviceNames)

	return serviceNames
}
