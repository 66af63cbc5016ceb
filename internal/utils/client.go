package utils

import (
	"net/http"
	"time"
)

type GenericClient struct {
	HostPort string
	Client   *http.Client
}

const (
	defaultTimeout = 10 * time.Second
)

func NewGenericClient(hostPort string) *GenericClient {
	return &GenericClient{
		HostPort: hostPort,
		Client:   &http.Client{Timeout: defaultTimeout},
	}
}

func (c *GenericClient) GetHostPort() string {
	return c.HostPort
}

func (c *GenericClient) SetHostPort(hostPort string) {
	c.HostPort = hostPort
}
