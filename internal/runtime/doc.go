// Package runtime wires config, the shared elastic subsystem, and the
// per-route queue registry into a single Spillway instance. It exposes
// Open/Close, a basic health check, and get-or-create access to queues the
// way the surrounding messaging platform holds one buffer per registered
// route.
//
// Example:
//
//	cfg := config.Default()
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
//	q := rt.Queue("orders.intake")
//	_ = q.Write([]byte("hello"))
package runtime
