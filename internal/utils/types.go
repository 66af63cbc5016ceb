package utils

const (
	StackEnvVarName    = "STACK_ID"
	ServiceEnvVarName  = "SERVICE_ID"
	InstanceEnvVarName = "INSTANCE_ID"
)

const (
	TCP string = "tcp"
	UDP string = "udp"
)

const (
	// LocalhostAddr contains the default interface address
	LocalhostAddr = "0.0.0.0"
)
