package deployer

import (
	"net/http"

	api "github.com/guker/stack-deployment/api/deployer"
	"github.com/guker/stack-deployment/internal/utils"
)

type Client struct {
	*utils.GenericClient
}

func NewDeployerClient(hostPort string) *Client {
	return &Client{
		GenericClient: utils.NewGenericClient(hostPort),
	}
}

func (c *Client) DeployStack(stackName, workDir string, stackYAMLBytes []byte) (status int) {
	reqBody := api.DeployStackRequestBody{
		StackName:      stackName,
		WorkDir:        workDir,
		StackYAMLBytes: stackYAMLBytes,
	}

	req := utils.BuildRequest(http.MethodPost, c.GetHostPort(), api.GetStacksPath(), reqBody)

	status, _ = utils.DoRequest(c.Client, req, nil)

	return
}

func (c *Client) DeleteStack(stackName string) (status int) {
	req := utils.BuildRequest(http.MethodDelete, c.GetHostPort(), api.GetStackPath(stackName), nil)

	status, _ = utils.DoRequest(c.Client, req, nil)

	return
}

func (c *Client) GetStacks() (stacks []api.StackDTO, status int) {
	req := utils.BuildRequest(http.MethodGet, c.GetHostPort(), api.GetStacksPath(), nil)

	status, _ = utils.DoRequest(c.Client, req, &stacks)

	return
}

func (c *Client) GetStack(stackName string) (instances []api.InstanceDTO, status int) {
	req := utils.BuildRequest(http.MethodGet, c.GetHostPort(), api.GetStackPath(stackName), nil)

	status, _ = utils.DoRequest(c.Client, req, &instances)

	return
}
