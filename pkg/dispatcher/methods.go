package dispatcher

import (
	"strings"

	"grafik/pkg/logger"
)

// supportedMethods lists the `HTTP` verbs a route can accept.
var supportedMethods = map[string]bool{
	"GET":     true,
	"HEAD":    true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"CONNECT": true,
	"OPTIONS": true,
	"TRACE":   true,
	"PATCH":   true,
}

// filterMethods :
// Converts the input verbs to upper case and removes the ones
// which are not valid `HTTP` methods.
func filterMethods(methods []string, log logger.Logger) map[string]bool {
	filtered := make(map[string]bool)

	for _, method := range methods {
		consolidated := strings.ToUpper(method)

		if !supportedMethods[consolidated] {
			log.Error("[dispatcher] Filtering invalid HTTP method \"%s\"", method)
			continue
		}

		filtered[consolidated] = true
	}

	return filtered
}
