// Package loader registers the HTTP features of the application.
//
// Each feature (mods, collections, resolver) implements Feature and mounts
// its own routes. The Manager loads enabled features in registration order.
//
// # Feature Interface
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// # Usage
//
//	mgr := loader.NewManager(logg)
//	mgr.Register(mods.NewFeature(svc, logg))
//	if err := mgr.LoadAll(app); err != nil {
//	    logg.Fatal("Failed to load features", zap.Error(err))
//	}
package loader
