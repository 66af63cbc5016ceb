package deployer

import (
	"strconv"
)

const (
	Port = 50000

	ServiceName = "deployer"
)

var (
	DefaultHostPort = ServiceName + ":" + strconv.Itoa(Port)
	LocalHostPort   = "localhost:" + strconv.Itoa(Port)
)
