package probe

import "net/http"

const (
	msgNetworkError  = "Network error"
	msgNotJSON       = "Response data is not json"
	msgJSONPathError = "Failed to parse json data"
	msgEmptyResult   = "Result is empty"
	msgMatchSuccess  = "Response data match successfully"
	msgMatchFail     = "Failed to match response data"

	msgPingSuccess = "Success"
	msgPingFail    = "No response"

	msgDockerFail     = "Failed to fetch Docker container information"
	msgDockerNotFound = "container not found"
	msgDockerSuccess  = "Docker container status fetched successfully"

	msgPortFail    = "Failed to connect to port"
	msgPortSuccess = "Port connected successfully"
)

func statusMessage(code int) string {
	if t := http.StatusText(code); t != "" {
		return t
	}
	return msgNetworkError
}
