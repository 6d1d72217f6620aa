package project

// Root-level services of the runtime tree. An absolute load address must be
// rooted at one of these; anything else is not reachable at runtime.
var services = map[string]bool{
	"Workspace":           true,
	"Players":             true,
	"Lighting":            true,
	"ReplicatedFirst":     true,
	"ReplicatedStorage":   true,
	"ServerScriptService": true,
	"ServerStorage":       true,
	"StarterGui":          true,
	"StarterPack":         true,
	"StarterPlayer":       true,
	"SoundService":        true,
	"Chat":                true,
	"TestService":         true,
}

// IsService reports whether name is a recognized root-level service.
func IsService(name string) bool {
	return services[name]
}
