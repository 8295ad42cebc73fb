package audit

import "strings"

// ActionResource holds action and resource derived from an HTTP method and chi route pattern.
type ActionResource struct {
	Action   string
	Resource string
}

// Route overrides: auth endpoints and the completion toggle are audited under a specific verb.
var routeOverrides = map[string]ActionResource{
	"POST /auth/login":             {Action: "login", Resource: "session"},
	"POST /auth/register":          {Action: ActionRegister, Resource: "account"},
	"POST /auth/logout":            {Action: ActionLogout, Resource: "session"},
	"POST /auth/refresh":           {Action: "refresh", Resource: "session"},
	"PUT /todo/item/complete/{id}": {Action: "complete", Resource: "todo_item"},
}

// ParseRoute returns action and resource for a method and route pattern
// (e.g. PUT /todo/list/{id} -> update, todo_list).
// Action is get, list, create, update or delete. Resource is the last static path segment,
// singularized, prefixed with "todo_" under /todo.
func ParseRoute(method, pattern string) ActionResource {
	method = strings.ToUpper(method)
	if ar, ok := routeOverrides[method+" "+pattern]; ok {
		return ar
	}
	var static []string
	for _, seg := range strings.Split(strings.Trim(pattern, "/"), "/") {
		if seg == "" || strings.HasPrefix(seg, "{") || seg == "*" {
			continue
		}
		static = append(static, seg)
	}
	if len(static) == 0 {
		return ActionResource{Action: methodToAction(method, pattern), Resource: "unknown"}
	}
	resource := singular(static[len(static)-1])
	if static[0] == "todo" && len(static) > 1 {
		resource = "todo_" + resource
	}
	return ActionResource{Action: methodToAction(method, pattern), Resource: resource}
}

func methodToAction(method, pattern string) string {
	switch method {
	case "GET", "HEAD":
		if strings.HasSuffix(pattern, "}") {
			return "get"
		}
		return "list"
	case "POST":
		return "create"
	case "PUT", "PATCH":
		return "update"
	case "DELETE":
		return "delete"
	default:
		return strings.ToLower(method)
	}
}

func singular(s string) string {
	if len(s) > 1 && strings.HasSuffix(s, "s") {
		return s[:len(s)-1]
	}
	return s
}
