package stack

import (
	"io/ioutil"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	api "github.com/guker/stack-deployment/api/stack"
)

// Load reads, validates and normalizes the descriptor at path.
func Load(stackName, path string) (*Stack, error) {
	fileBytes, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading descriptor %s", path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving descriptor path %s", path)
	}

	return LoadBytes(stackName, filepath.Dir(absPath), fileBytes)
}

// LoadBytes parses a descriptor whose relative paths (env files, bind mounts,
// build contexts) resolve against dir.
func LoadBytes(stackName, dir string, fileBytes []byte) (*Stack, error) {
	stackYAML, err := Parse(fileBytes)
	if err != nil {
		return nil, err
	}

	if problems := Validate(dir, stackYAML); len(problems) > 0 {
		return nil, &InvalidStackError{StackName: stackName, Problems: problems}
	}

	return FromYAML(stackName, dir, stackYAML)
}

// Parse unmarshals a raw descriptor without validating it.
func Parse(fileBytes []byte) (*api.StackYAML, error) {
	var stackYAML api.StackYAML

	err := yaml.Unmarshal(fileBytes, &stackYAML)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshaling descriptor")
	}

	if len(stackYAML.Services) == 0 {
		return nil, errors.New("descriptor declares no services")
	}

	return &stackYAML, nil
}

type InvalidStackError struct {
	StackName string
	Problems  []string
}

func (e *InvalidStackError) Error() string {
	msg := "invalid stack " + e.StackName + ":"
	for _, problem := range e.Problems {
		msg += "\n  " + problem
	}

	return msg
}
