package deployer

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/guker/stack-deployment/api/deployer"
	"github.com/guker/stack-deployment/internal/stack"
	"github.com/guker/stack-deployment/internal/utils"
)

const validDescriptor = `
services:
  app:
    image: busybox
`

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	stacks = newStacksTable()

	return utils.NewRouter(api.PrefixPath, Routes)
}

func seedStack(t *testing.T, stackName string) {
	t.Helper()

	s, err := stack.LoadBytes(stackName, t.TempDir(), []byte(validDescriptor))
	require.NoError(t, err)

	stacks.addStack(s)
}

func doDeployRequest(t *testing.T, router http.Handler, requestBody api.DeployStackRequestBody) *httptest.ResponseRecorder {
	t.Helper()

	bodyBytes, err := json.Marshal(requestBody)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, api.GetStacksPath(), bytes.NewReader(bodyBytes))
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	return recorder
}

func TestDeployStackHandlerRejectsMissingFields(t *testing.T) {
	router := newTestRouter(t)

	recorder := doDeployRequest(t, router, api.DeployStackRequestBody{})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestDeployStackHandlerRepliesWithProblems(t *testing.T) {
	router := newTestRouter(t)

	recorder := doDeployRequest(t, router, api.DeployStackRequestBody{
		StackName: "broken",
		WorkDir:   t.TempDir(),
		StackYAMLBytes: []byte(`
services:
  app:
    image: busybox
    links:
      - ghost
`),
	})

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var problems []string

	err := json.NewDecoder(recorder.Body).Decode(&problems)
	require.NoError(t, err)

	require.NotEmpty(t, problems)
	assert.Contains(t, problems[0], "unknown service ghost")
	assert.False(t, stacks.hasStack("broken"))
}

func TestDeployStackHandlerDuplicateStackConflicts(t *testing.T) {
	router := newTestRouter(t)
	seedStack(t, "experiment")

	recorder := doDeployRequest(t, router, api.DeployStackRequestBody{
		StackName:      "experiment",
		WorkDir:        t.TempDir(),
		StackYAMLBytes: []byte(validDescriptor),
	})

	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestDeleteStackHandlerUnknownStack(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, api.GetStackPath("ghost"), nil)
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetStackHandlerUnknownStack(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, api.GetStackPath("ghost"), nil)
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetStacksHandlerListsSeededStacks(t *testing.T) {
	router := newTestRouter(t)
	seedStack(t, "beta")
	seedStack(t, "alpha")

	req := httptest.NewRequest(http.MethodGet, api.GetStacksPath(), nil)
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var stackDTOs []api.StackDTO

	err := json.NewDecoder(recorder.Body).Decode(&stackDTOs)
	require.NoError(t, err)

	require.Len(t, stackDTOs, 2)
	assert.Equal(t, "alpha", stackDTOs[0].Name)
	assert.Equal(t, "beta", stackDTOs[1].Name)
	assert.Equal(t, []string{"app"}, stackDTOs[0].Services)
}
