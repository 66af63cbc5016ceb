package deployer

import (
	"fmt"
)

const (
	PrefixPath = "/deployer"

	StacksPath = "/stacks"
	StackPath  = "/stacks/%s"
)

func GetStacksPath() string {
	return PrefixPath + StacksPath
}

func GetStackPath(stackName string) string {
	return PrefixPath + fmt.Sprintf(StackPath, stackName)
}
