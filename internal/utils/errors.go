package utils

const (
	errorHTTPClientNil = "httpclient is nil"
)
