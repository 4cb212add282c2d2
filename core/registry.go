package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

type ServiceRegistry struct {
	mu       sync.RWMutex
	services map[string]Service
}

func NewServiceRegistry(services ...Service) (*ServiceRegistry, error) {
	registry := &ServiceRegistry{services: make(map[string]Service)}
	for _, service := range services {
		if err := registry.Register(service); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register adds a service under its path, which must have the form
// "/<name>/<version>/".
func (r *ServiceRegistry) Register(service Service) error {
	if service == nil {
		return fmt.Errorf("core: service is nil")
	}
	path := strings.TrimSpace(service.Path())
	if err := validateServicePath(path); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.services == nil {
		r.services = make(map[string]Service)
	}
	if _, exists := r.services[path]; exists {
		return fmt.Errorf("core: service already registered: %s", path)
	}
	r.services[path] = service
	return nil
}

// Lookup matches servicePath by exact equality.
func (r *ServiceRegistry) Lookup(servicePath string) (Service, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	service, ok := r.services[servicePath]
	r.mu.RUnlock()
	return service, ok
}

func (r *ServiceRegistry) Paths() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	paths := make([]string, 0, len(r.services))
	for path := range r.services {
		paths = append(paths, path)
	}
	r.mu.RUnlock()
	sort.Strings(paths)
	return paths
}

func validateServicePath(path string) error {
	if path == "" {
		return fmt.Errorf("core: service path is required")
	}
	if !strings.HasPrefix(path, "/") || !strings.HasSuffix(path, "/") {
		return fmt.Errorf("core: service path %q must start and end with /", path)
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
		return fmt.Errorf("core: service path %q must have exactly two segments", path)
	}
	return nil
}

// SplitServicePath forms the service prefix from the first two segments of
// path and returns the remainder as the sub-path.
func SplitServicePath(path string) (servicePath string, subPath string) {
	parts := strings.Split(path, "/")
	end := 3
	if len(parts) < end {
		end = len(parts)
	}
	var segments []string
	if end > 1 {
		segments = parts[1:end]
	}
	servicePath = "/" + strings.Join(segments, "/") + "/"
	if len(path) > len(servicePath) {
		subPath = path[len(servicePath):]
	}
	return servicePath, subPath
}
