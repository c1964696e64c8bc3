// Package handlers contains the health checker and the middleware shared by
// the HTTP API.
//
// # Health Checks
//
// Named checks run in parallel, each with its own timeout:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("database", handlers.NewPingCheck(db))
//	checker.AddCheck("relation_breaker", handlers.NewBreakerCheck(relations.Breaker()))
//
// # Identity
//
// ActorMiddleware reads the X-Actor-ID header set by the upstream gateway and
// stores it in the request context. Handlers read it with CurrentActor.
// Credentials are never verified here.
package handlers
