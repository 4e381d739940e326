package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Bootstrap.Store != nil && s.deps.Bootstrap.Endpoint != nil
}

func (s Service) Bootstrap(ctx context.Context) BootstrapResult {
	return RunBootstrap(ctx, s.deps.Bootstrap)
}

func (s Service) Logout(ctx context.Context) LogoutResult {
	return RunLogout(ctx, s.deps.Logout)
}
