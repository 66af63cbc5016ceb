package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestBuildYAMLScalarForm(t *testing.T) {
	var serviceYAML ServiceYAML

	err := yaml.Unmarshal([]byte("build: ./trainer\n"), &serviceYAML)
	require.NoError(t, err)
	require.NotNil(t, serviceYAML.Build)

	assert.Equal(t, "./trainer", serviceYAML.Build.Context)
	assert.Equal(t, "", serviceYAML.Build.Dockerfile)
}

func TestBuildYAMLMappingForm(t *testing.T) {
	var serviceYAML ServiceYAML

	err := yaml.Unmarshal([]byte("build:\n  context: .\n  dockerfile: Dockerfile.gpu\n"), &serviceYAML)
	require.NoError(t, err)
	require.NotNil(t, serviceYAML.Build)

	assert.Equal(t, ".", serviceYAML.Build.Context)
	assert.Equal(t, "Dockerfile.gpu", serviceYAML.Build.Dockerfile)
}

func TestEnvironmentSequenceForm(t *testing.T) {
	var serviceYAML ServiceYAML

	err := yaml.Unmarshal([]byte("environment:\n  - B=2\n  - A=1\n"), &serviceYAML)
	require.NoError(t, err)

	assert.Equal(t, Environment{"B=2", "A=1"}, serviceYAML.Environment)
}

func TestEnvironmentMappingFormIsSorted(t *testing.T) {
	var serviceYAML ServiceYAML

	err := yaml.Unmarshal([]byte("environment:\n  B: 2\n  A: one\n"), &serviceYAML)
	require.NoError(t, err)

	assert.Equal(t, Environment{"A=one", "B=2"}, serviceYAML.Environment)
}

func TestEnvironmentMappingFormKeepsBooleanText(t *testing.T) {
	var serviceYAML ServiceYAML

	err := yaml.Unmarshal([]byte("environment:\n  SSL: false\n  DEBUG: true\n  PORT: 5432\n"), &serviceYAML)
	require.NoError(t, err)

	assert.Equal(t, Environment{"DEBUG=true", "PORT=5432", "SSL=false"}, serviceYAML.Environment)
}

func TestEnvironmentScalarFormRejected(t *testing.T) {
	var serviceYAML ServiceYAML

	err := yaml.Unmarshal([]byte("environment: nope\n"), &serviceYAML)
	require.Error(t, err)
}

func TestStringListForms(t *testing.T) {
	var scalar ServiceYAML

	err := yaml.Unmarshal([]byte("env_file: one.env\n"), &scalar)
	require.NoError(t, err)
	assert.Equal(t, StringList{"one.env"}, scalar.EnvFile)

	var sequence ServiceYAML

	err = yaml.Unmarshal([]byte("env_file:\n  - one.env\n  - two.env\n"), &sequence)
	require.NoError(t, err)
	assert.Equal(t, StringList{"one.env", "two.env"}, sequence.EnvFile)
}
