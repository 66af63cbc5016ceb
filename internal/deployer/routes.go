package deployer

import (
	"fmt"
	"net/http"

	api "github.com/guker/stack-deployment/api/deployer"
	"github.com/guker/stack-deployment/internal/utils"
)

// Route names
const (
	deployStackName = "DEPLOY_STACK"
	deleteStackName = "DELETE_STACK"
	getStacksName   = "GET_STACKS"
	getStackName    = "GET_STACK"
)

const (
	stackNamePathVar = "stackName"
)

var (
	_stackNamePathVarFormatted = fmt.Sprintf(utils.PathVarFormat, stackNamePathVar)

	stacksRoute = api.StacksPath
	stackRoute  = fmt.Sprintf(api.StackPath, _stackNamePathVarFormatted)
)

var Routes = []utils.Route{
	{
		Name:        deployStackName,
		Method:      http.MethodPost,
		Pattern:     stacksRoute,
		HandlerFunc: deployStackHandler,
	},

	{
		Name:        getStacksName,
		Method:      http.MethodGet,
		Pattern:     stacksRoute,
		HandlerFunc: getStacksHandler,
	},

	{
		Name:        getStackName,
		Method:      http.MethodGet,
		Pattern:     stackRoute,
		HandlerFunc: getStackHandler,
	},

	{
		Name:        deleteStackName,
		Method:      http.MethodDelete,
		Pattern:     stackRoute,
		HandlerFunc: deleteStackHandler,
	},
}
