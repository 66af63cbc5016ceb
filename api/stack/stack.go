package stack

import (
	"sort"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type (
	// StackYAML is the on-disk shape of a stack descriptor.
	StackYAML struct {
		Version  string                 `yaml:"version,omitempty"`
		Services map[string]ServiceYAML `yaml:"services"`
		Volumes  map[string]VolumeYAML  `yaml:"volumes,omitempty"`
	}

	ServiceYAML struct {
		Image         string      `yaml:"image,omitempty"`
		Build         *BuildYAML  `yaml:"build,omitempty"`
		Command       []string    `yaml:"command,omitempty"`
		Entrypoint    []string    `yaml:"entrypoint,omitempty"`
		ContainerName string      `yaml:"container_name,omitempty"`
		Ports         []string    `yaml:"ports,omitempty"`
		Environment   Environment `yaml:"environment,omitempty"`
		EnvFile       StringList  `yaml:"env_file,omitempty"`
		Volumes       []string    `yaml:"volumes,omitempty"`
		Links         []string    `yaml:"links,omitempty"`
		DependsOn     []string    `yaml:"depends_on,omitempty"`
		Restart       string      `yaml:"restart,omitempty"`
		Runtime       string      `yaml:"runtime,omitempty"`
	}

	VolumeYAML struct {
		Driver     string            `yaml:"driver,omitempty"`
		DriverOpts map[string]string `yaml:"driver_opts,omitempty"`
		External   bool              `yaml:"external,omitempty"`
	}
)

// BuildYAML accepts both the scalar form (the context directory) and the
// mapping form with an explicit dockerfile.
type BuildYAML struct {
	Context    string `yaml:"context"`
	Dockerfile string `yaml:"dockerfile,omitempty"`
}

func (b *BuildYAML) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		b.Context = value.Value

		return nil
	}

	type plain BuildYAML

	return value.Decode((*plain)(b))
}

// Environment accepts both the sequence form (KEY=VALUE entries) and the
// mapping form. The mapping form is normalized into sorted KEY=VALUE entries.
type Environment []string

func (e *Environment) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var entries []string
		if err := value.Decode(&entries); err != nil {
			return err
		}

		*e = entries
	case yaml.MappingNode:
		var raw map[string]interface{}
		if err := value.Decode(&raw); err != nil {
			return err
		}

		env := make(map[string]string, len(raw))

		for key, rawValue := range raw {
			// mapstructure weak-decodes bools to "1"/"0"; keep the YAML form
			if boolValue, isBool := rawValue.(bool); isBool {
				env[key] = strconv.FormatBool(boolValue)

				continue
			}

			var stringValue string
			if err := mapstructure.WeakDecode(rawValue, &stringValue); err != nil {
				return errors.Wrapf(err, "decoding environment value %s", key)
			}

			env[key] = stringValue
		}

		keys := make([]string, 0, len(env))
		for key := range env {
			keys = append(keys, key)
		}

		sort.Strings(keys)

		entries := make([]string, 0, len(keys))
		for _, key := range keys {
			entries = append(entries, key+"="+env[key])
		}

		*e = entries
	default:
		return errors.Errorf("environment must be a mapping or a sequence (line %d)", value.Line)
	}

	return nil
}

// StringList accepts both a single scalar and a sequence of scalars.
type StringList []string

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*l = []string{value.Value}

		return nil
	}

	var entries []string
	if err := value.Decode(&entries); err != nil {
		return err
	}

	*l = entries

	return nil
}
