package main

import (
	api "github.com/guker/stack-deployment/api/deployer"
	internal "github.com/guker/stack-deployment/internal/deployer"
	"github.com/guker/stack-deployment/internal/utils"
	"github.com/guker/stack-deployment/pkg/deployer"
)

const (
	serviceName = "DEPLOYER"
)

func main() {
	internal.InitHandlers()

	utils.StartServer(serviceName, deployer.Port, api.PrefixPath, internal.Routes)
}
