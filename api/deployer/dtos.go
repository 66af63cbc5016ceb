package deployer

type (
	DeployStackRequestBody struct {
		StackName      string
		WorkDir        string
		StackYAMLBytes []byte
	}

	StackDTO struct {
		Name     string
		Services []string
	}

	InstanceDTO struct {
		InstanceId  string
		StackName   string
		ServiceName string
		ContainerId string
		Image       string
		State       string
	}
)
