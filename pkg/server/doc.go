// Package server provides the HTTP server for Ganymede: the Spring
// Cloud Config compatible endpoints, env map endpoints, asset
// endpoints, health checks, the Prometheus endpoint, and the HTML UI,
// all behind the authorization gate and the middleware chain.
package server
