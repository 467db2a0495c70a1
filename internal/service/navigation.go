package service

// Route targets the managers can steer the view layer towards.
const (
	RouteAuth    = "/auth"
	RouteProfile = "/profile"
	RouteAdmin   = "/admin"
	RouteChat    = "/chat"
)

// Navigator is the injected side-effect sink for navigation. Managers signal
// a route; the view layer decides what showing it means.
type Navigator interface {
	NavigateTo(route string)
}

// NavigatorFunc adapts a plain function to the Navigator interface.
type NavigatorFunc func(route string)

func (f NavigatorFunc) NavigateTo(route string) {
	f(route)
}
