package stack

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validateDescriptor(t *testing.T, dir, descriptor string) []string {
	t.Helper()

	stackYAML, err := Parse([]byte(descriptor))
	require.NoError(t, err)

	return Validate(dir, stackYAML)
}

func assertProblem(t *testing.T, problems []string, fragment string) {
	t.Helper()

	for _, problem := range problems {
		if strings.Contains(problem, fragment) {
			return
		}
	}

	t.Errorf("no problem mentions %q, got %v", fragment, problems)
}

func TestValidateCleanDescriptor(t *testing.T) {
	problems := validateDescriptor(t, t.TempDir(), `
services:
  app:
    image: busybox
    ports:
      - "8080:80"
    volumes:
      - data:/var/lib/data
    links:
      - db
  db:
    image: postgres:9.6
volumes:
  data: {}
`)

	assert.Empty(t, problems)
}

func TestValidateUndeclaredVolume(t *testing.T) {
	problems := validateDescriptor(t, t.TempDir(), `
services:
  db:
    image: postgres:9.6
    volumes:
      - pgdata:/var/lib/postgresql/data
`)

	assertProblem(t, problems, "undeclared volume pgdata")
}

func TestValidateUnknownLinkTarget(t *testing.T) {
	problems := validateDescriptor(t, t.TempDir(), `
services:
  app:
    image: busybox
    links:
      - ghost:db
`)

	assertProblem(t, problems, "links unknown service ghost")
}

func TestValidateSelfLink(t *testing.T) {
	problems := validateDescriptor(t, t.TempDir(), `
services:
  app:
    image: busybox
    links:
      - app
`)

	assertProblem(t, problems, "links itself")
}

func TestValidateUnknownDependsOn(t *testing.T) {
	problems := validateDescriptor(t, t.TempDir(), `
services:
  app:
    image: busybox
    depends_on:
      - ghost
`)

	assertProblem(t, problems, "depends_on unknown service ghost")
}

func TestValidateDependencyCycle(t *testing.T) {
	problems := validateDescriptor(t, t.TempDir(), `
services:
  a:
    image: busybox
    depends_on: [b]
  b:
    image: busybox
    depends_on: [a]
`)

	assertProblem(t, problems, "dependency cycle")
}

func TestValidateHostPortClash(t *testing.T) {
	problems := validateDescriptor(t, t.TempDir(), `
services:
  a:
    image: busybox
    ports:
      - "8080:80"
  b:
    image: busybox
    ports:
      - "8080:81"
`)

	assertProblem(t, problems, "both bind host port")
}

func TestValidateHostPortClashAcrossWildcardForms(t *testing.T) {
	problems := validateDescriptor(t, t.TempDir(), `
services:
  a:
    image: busybox
    ports:
      - "8080:80"
  b:
    image: busybox
    ports:
      - "0.0.0.0:8080:81"
`)

	assertProblem(t, problems, "both bind host port")
}

func TestValidateContainerOnlyPortsNeverClash(t *testing.T) {
	problems := validateDescriptor(t, t.TempDir(), `
services:
  a:
    image: busybox
    ports:
      - "80"
  b:
    image: busybox
    ports:
      - "80"
`)

	assert.Empty(t, problems)
}

func TestValidateMissingImageAndBuild(t *testing.T) {
	problems := validateDescriptor(t, t.TempDir(), `
services:
  app:
    restart: always
`)

	assertProblem(t, problems, "neither an image nor a build context")
}

func TestValidateMissingEnvFile(t *testing.T) {
	problems := validateDescriptor(t, t.TempDir(), `
services:
  app:
    image: busybox
    env_file: missing.env
`)

	assertProblem(t, problems, "env file missing.env")
}

func TestValidateEnvFilePresent(t *testing.T) {
	dir := t.TempDir()

	err := ioutil.WriteFile(filepath.Join(dir, "present.env"), []byte("A=1\n"), 0o600)
	require.NoError(t, err)

	problems := validateDescriptor(t, dir, `
services:
  app:
    image: busybox
    env_file: present.env
`)

	assert.Empty(t, problems)
}

func TestValidateDuplicateContainerName(t *testing.T) {
	problems := validateDescriptor(t, t.TempDir(), `
services:
  a:
    image: busybox
    container_name: shared
  b:
    image: busybox
    container_name: shared
`)

	assertProblem(t, problems, "both use container_name shared")
}

func TestValidateCollectsAllProblems(t *testing.T) {
	problems := validateDescriptor(t, t.TempDir(), `
services:
  app:
    links:
      - ghost
    ports:
      - "nope:xyz"
    volumes:
      - data:/data
`)

	assert.GreaterOrEqual(t, len(problems), 3)
}
